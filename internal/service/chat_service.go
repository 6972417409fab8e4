package service

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dantegr/pickndeal-backend/internal/apperrors"
	"github.com/dantegr/pickndeal-backend/internal/models"
	"github.com/dantegr/pickndeal-backend/internal/repository"
)

// historyLimit caps a single history fetch to the most recent messages.
const historyLimit = 100

// ChatHistory is the result of viewing a conversation: the chat itself,
// up to historyLimit messages in ascending date_sent order, and the public
// profiles of both participants keyed by hex id.
type ChatHistory struct {
	Chat         *models.Chat
	Messages     []*models.Message
	Participants map[string]*models.User
}

// ChatSummary annotates a chat for the caller's conversation list.
type ChatSummary struct {
	ID           primitive.ObjectID `json:"id"`
	OtherUser    *models.User       `json:"otherUser"`
	LastMessage  *models.Message    `json:"lastMessage,omitempty"`
	LastActivity time.Time          `json:"lastActivity"`
	UnreadCount  int64              `json:"unreadCount"`
	CreatedAt    time.Time          `json:"createdAt"`
}

// ChatService is the request/response face of the chat store, used by
// clients that are not on a live connection.
type ChatService struct {
	chats repository.ChatRepository
	users repository.UserRepository
	log   *zap.SugaredLogger
}

func NewChatService(chats repository.ChatRepository, users repository.UserRepository, log *zap.SugaredLogger) *ChatService {
	return &ChatService{chats: chats, users: users, log: log}
}

// GetChatHistory finds or creates the chat with peerID and returns its
// recent messages. Viewing history marks the caller's unread messages read;
// the returned snapshot still shows the pre-read flags, so a receiver sees
// isRead=false exactly once.
func (s *ChatService) GetChatHistory(ctx context.Context, callerID, peerID primitive.ObjectID) (*ChatHistory, error) {
	chat, err := s.chats.FindOrCreateChat(ctx, callerID, peerID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.chats.GetHistory(ctx, chat.ID, historyLimit)
	if err != nil {
		return nil, err
	}
	if _, err := s.chats.MarkAsRead(ctx, chat.ID, callerID); err != nil {
		return nil, err
	}

	participants := make(map[string]*models.User, len(chat.UserIDs))
	for _, id := range chat.UserIDs {
		u, err := s.users.FindPublicByID(ctx, id)
		if err != nil {
			s.log.Debugf("profile lookup for %s failed: %v", id.Hex(), err)
			continue
		}
		participants[id.Hex()] = u
	}

	return &ChatHistory{Chat: chat, Messages: msgs, Participants: participants}, nil
}

// GetUserChats lists the caller's chats by recency, each annotated with the
// other participant's public profile and the caller's unread count.
func (s *ChatService) GetUserChats(ctx context.Context, callerID primitive.ObjectID) ([]*ChatSummary, error) {
	chats, err := s.chats.ListChatsForUser(ctx, callerID)
	if err != nil {
		return nil, err
	}

	out := make([]*ChatSummary, 0, len(chats))
	for _, chat := range chats {
		summary := &ChatSummary{
			ID:           chat.ID,
			LastMessage:  chat.LastMessage,
			LastActivity: chat.LastActivity,
			CreatedAt:    chat.CreatedAt,
		}
		if otherID, ok := chat.OtherMember(callerID); ok {
			u, err := s.users.FindPublicByID(ctx, otherID)
			if err != nil {
				s.log.Debugf("profile lookup for %s failed: %v", otherID.Hex(), err)
			} else {
				summary.OtherUser = u
			}
		}
		unread, err := s.chats.GetUnreadCount(ctx, chat.ID, callerID)
		if err != nil {
			return nil, err
		}
		summary.UnreadCount = unread
		out = append(out, summary)
	}
	return out, nil
}

// MarkMessagesAsRead flips the caller's unread messages in chatID. The
// caller must be a member; non-members get ErrForbidden, which handlers
// surface identically to not-found.
func (s *ChatService) MarkMessagesAsRead(ctx context.Context, callerID, chatID primitive.ObjectID) (bool, error) {
	chat, err := s.chats.GetChat(ctx, chatID)
	if err != nil {
		return false, err
	}
	if !chat.HasMember(callerID) {
		return false, fmt.Errorf("user %s is not a member of chat %s: %w", callerID.Hex(), chatID.Hex(), apperrors.ErrForbidden)
	}
	return s.chats.MarkAsRead(ctx, chatID, callerID)
}

// GetUnreadCount returns the caller's unread message total across all chats.
func (s *ChatService) GetUnreadCount(ctx context.Context, callerID primitive.ObjectID) (int64, error) {
	return s.chats.GetUnreadCountForUser(ctx, callerID)
}
