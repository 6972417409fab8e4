package ws

import (
	"encoding/json"
	"time"

	"github.com/dantegr/pickndeal-backend/internal/models"
)

// Wire event names. Inbound events arrive as {"event": ..., "data": ...}
// envelopes; outbound events use the same shape.
const (
	EventSendMessage         = "send_message"
	EventMessageSent         = "message_sent"
	EventNewMessage          = "new_message"
	EventNotificationCreated = "notification_created"
	EventMessageError        = "message_error"
	EventTypingStart         = "typing_start"
	EventTypingStop          = "typing_stop"
	EventUserTyping          = "user_typing"
	EventUserStatus          = "user_status"
)

type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// OutgoingMessage is a persisted message with the sender's public profile
// attached for client-side rendering.
type OutgoingMessage struct {
	models.Message
	Sender *models.User `json:"sender,omitempty"`
}

type SendMessagePayload struct {
	Message struct {
		TextContent string `json:"textContent"`
	} `json:"message"`
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	TempID     string `json:"tempId"`
}

type MessageSentPayload struct {
	ChatID  string           `json:"chatId"`
	Message *OutgoingMessage `json:"message"`
	TempID  string           `json:"tempId"`
}

type NewMessagePayload struct {
	ChatID    string           `json:"chatId"`
	Message   *OutgoingMessage `json:"message"`
	SenderID  string           `json:"senderId"`
	Timestamp time.Time        `json:"timestamp"`
}

type NotificationCreatedPayload struct {
	Notification *models.Notification `json:"notification"`
	SenderID     string               `json:"senderId"`
	Timestamp    time.Time            `json:"timestamp"`
}

type MessageErrorPayload struct {
	Error  string `json:"error"`
	TempID string `json:"tempId"`
}

type TypingPayload struct {
	UserID     string `json:"userId"`
	ReceiverID string `json:"receiverId"`
}

type UserTypingPayload struct {
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

type UserStatusPayload struct {
	UserID    string    `json:"userId"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
