package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dantegr/pickndeal-backend/internal/apperrors"
)

const NotificationTypeChat = "chat"

// ChatNotificationData is the payload of a chat-type notification.
type ChatNotificationData struct {
	SenderID   primitive.ObjectID `bson:"sender_id" json:"senderId"`
	SenderName string             `bson:"sender_name" json:"senderName"`
	Message    string             `bson:"message" json:"message"`
}

// Notification is a per-user inbox entry created as a side effect of message
// delivery. Its lifecycle is independent from the underlying message.
type Notification struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID   `bson:"user_id" json:"userId"`
	Type        string               `bson:"type" json:"type"`
	Data        ChatNotificationData `bson:"data" json:"data"`
	IsRead      bool                 `bson:"is_read" json:"isRead"`
	DateCreated time.Time            `bson:"date_created" json:"dateCreated"`
}

// Validate checks the invariants required before persisting.
func (n *Notification) Validate() error {
	if n.UserID.IsZero() {
		return fmt.Errorf("notification user id is required: %w", apperrors.ErrValidation)
	}
	if n.Type != NotificationTypeChat {
		return fmt.Errorf("unsupported notification type %q: %w", n.Type, apperrors.ErrValidation)
	}
	if n.Data.SenderID.IsZero() || n.Data.SenderName == "" || n.Data.Message == "" {
		return fmt.Errorf("chat notifications require senderId, senderName and message: %w", apperrors.ErrValidation)
	}
	return nil
}
