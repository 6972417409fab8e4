package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a single text message between two users. Immutable after
// insert except for the one-way is_read flip.
type Message struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ChatID      primitive.ObjectID `bson:"chat_id" json:"chatId"`
	SenderID    primitive.ObjectID `bson:"sender_id" json:"senderId"`
	ReceiverID  primitive.ObjectID `bson:"receiver_id" json:"receiverId"`
	TextContent string             `bson:"text_content" json:"textContent"`
	DateSent    time.Time          `bson:"date_sent" json:"dateSent"`
	IsRead      bool               `bson:"is_read" json:"isRead"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}
