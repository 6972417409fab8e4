package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dantegr/pickndeal-backend/internal/apperrors"
	"github.com/dantegr/pickndeal-backend/internal/models"
)

type memChatRepo struct {
	mu       sync.Mutex
	chats    map[string]*models.Chat
	byID     map[primitive.ObjectID]*models.Chat
	messages []*models.Message
}

func newMemChatRepo() *memChatRepo {
	return &memChatRepo{
		chats: make(map[string]*models.Chat),
		byID:  make(map[primitive.ObjectID]*models.Chat),
	}
}

func (r *memChatRepo) FindOrCreateChat(_ context.Context, a, b primitive.ObjectID) (*models.Chat, error) {
	if a == b {
		return nil, fmt.Errorf("distinct users required: %w", apperrors.ErrValidation)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := models.PairKey(a, b)
	if c, ok := r.chats[key]; ok {
		return c, nil
	}
	now := time.Now().UTC()
	c := &models.Chat{ID: primitive.NewObjectID(), PairKey: key, UserIDs: models.CanonicalPair(a, b), LastActivity: now, IsActive: true, CreatedAt: now, UpdatedAt: now}
	r.chats[key] = c
	r.byID[c.ID] = c
	return c, nil
}

func (r *memChatRepo) GetChat(_ context.Context, id primitive.ObjectID) (*models.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.byID[id]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("chat %s: %w", id.Hex(), apperrors.ErrNotFound)
}

func (r *memChatRepo) AppendMessage(_ context.Context, chat *models.Chat, sender, receiver primitive.ObjectID, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty text: %w", apperrors.ErrValidation)
	}
	now := time.Now().UTC()
	msg := &models.Message{
		ID: primitive.NewObjectID(), ChatID: chat.ID, SenderID: sender, ReceiverID: receiver,
		TextContent: text, DateSent: now, CreatedAt: now, UpdatedAt: now,
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	chat.LastMessage = msg
	if now.After(chat.LastActivity) {
		chat.LastActivity = now
	}
	return msg, nil
}

func (r *memChatRepo) MarkAsRead(_ context.Context, chatID, readerID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	changed := false
	for _, m := range r.messages {
		if m.ChatID == chatID && m.ReceiverID == readerID && !m.IsRead {
			m.IsRead = true
			changed = true
		}
	}
	return changed, nil
}

func (r *memChatRepo) GetUnreadCount(_ context.Context, chatID, userID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.messages {
		if m.ChatID == chatID && m.ReceiverID == userID && !m.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *memChatRepo) GetUnreadCountForUser(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.messages {
		if m.ReceiverID == userID && !m.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *memChatRepo) ListChatsForUser(_ context.Context, userID primitive.ObjectID) ([]*models.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Chat
	for _, c := range r.byID {
		if c.HasMember(userID) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastActivity.After(out[j].LastActivity) })
	return out, nil
}

func (r *memChatRepo) GetHistory(_ context.Context, chatID primitive.ObjectID, limit int64) ([]*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Message
	for _, m := range r.messages {
		if m.ChatID == chatID {
			copied := *m
			out = append(out, &copied)
		}
	}
	if limit > 0 && int64(len(out)) > limit {
		out = out[int64(len(out))-limit:]
	}
	return out, nil
}

type memUserRepo struct {
	users map[primitive.ObjectID]*models.User
}

func (r *memUserRepo) FindPublicByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user %s: %w", id.Hex(), apperrors.ErrNotFound)
}

func newChatServiceFixture() (*ChatService, *memChatRepo, *memUserRepo) {
	chats := newMemChatRepo()
	users := &memUserRepo{users: make(map[primitive.ObjectID]*models.User)}
	return NewChatService(chats, users, zap.NewNop().Sugar()), chats, users
}

func TestGetChatHistoryMarksReadAsSideEffect(t *testing.T) {
	svc, repo, users := newChatServiceFixture()
	ctx := context.Background()
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	users.users[alice] = &models.User{ID: alice, Name: "Alice"}
	users.users[bob] = &models.User{ID: bob, Name: "Bob"}

	chat, err := repo.FindOrCreateChat(ctx, alice, bob)
	require.NoError(t, err)
	_, err = repo.AppendMessage(ctx, chat, alice, bob, "hello")
	require.NoError(t, err)

	// first view: snapshot still shows the unread flag
	history, err := svc.GetChatHistory(ctx, bob, alice)
	require.NoError(t, err)
	require.Len(t, history.Messages, 1)
	assert.Equal(t, "hello", history.Messages[0].TextContent)
	assert.False(t, history.Messages[0].IsRead)
	assert.Equal(t, chat.ID, history.Chat.ID)
	assert.Contains(t, history.Participants, alice.Hex())
	assert.Contains(t, history.Participants, bob.Hex())

	// the view flipped the flag in the store
	unread, err := repo.GetUnreadCount(ctx, chat.ID, bob)
	require.NoError(t, err)
	assert.Zero(t, unread)

	// second view sees it read
	history, err = svc.GetChatHistory(ctx, bob, alice)
	require.NoError(t, err)
	assert.True(t, history.Messages[0].IsRead)
}

func TestGetChatHistoryCreatesChatOnFirstFetch(t *testing.T) {
	svc, repo, _ := newChatServiceFixture()
	ctx := context.Background()
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	history, err := svc.GetChatHistory(ctx, alice, bob)
	require.NoError(t, err)
	assert.Empty(t, history.Messages)
	assert.Len(t, repo.chats, 1)

	// same chat from the peer's direction
	history2, err := svc.GetChatHistory(ctx, bob, alice)
	require.NoError(t, err)
	assert.Equal(t, history.Chat.ID, history2.Chat.ID)
	assert.Len(t, repo.chats, 1)
}

func TestGetUserChatsAnnotatesPeerAndUnread(t *testing.T) {
	svc, repo, users := newChatServiceFixture()
	ctx := context.Background()
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	carol := primitive.NewObjectID()
	users.users[bob] = &models.User{ID: bob, Name: "Bob"}
	users.users[carol] = &models.User{ID: carol, Name: "Carol"}

	chatAB, err := repo.FindOrCreateChat(ctx, alice, bob)
	require.NoError(t, err)
	_, err = repo.AppendMessage(ctx, chatAB, bob, alice, "first")
	require.NoError(t, err)
	_, err = repo.AppendMessage(ctx, chatAB, bob, alice, "second")
	require.NoError(t, err)

	chatAC, err := repo.FindOrCreateChat(ctx, alice, carol)
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = repo.AppendMessage(ctx, chatAC, carol, alice, "newest")
	require.NoError(t, err)

	chats, err := svc.GetUserChats(ctx, alice)
	require.NoError(t, err)
	require.Len(t, chats, 2)

	// most recent activity first
	assert.Equal(t, chatAC.ID, chats[0].ID)
	require.NotNil(t, chats[0].OtherUser)
	assert.Equal(t, "Carol", chats[0].OtherUser.Name)
	assert.EqualValues(t, 1, chats[0].UnreadCount)
	require.NotNil(t, chats[0].LastMessage)
	assert.Equal(t, "newest", chats[0].LastMessage.TextContent)

	assert.Equal(t, chatAB.ID, chats[1].ID)
	assert.Equal(t, "Bob", chats[1].OtherUser.Name)
	assert.EqualValues(t, 2, chats[1].UnreadCount)
}

func TestMarkMessagesAsReadAuthorization(t *testing.T) {
	svc, repo, _ := newChatServiceFixture()
	ctx := context.Background()
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	chat, err := repo.FindOrCreateChat(ctx, alice, bob)
	require.NoError(t, err)
	_, err = repo.AppendMessage(ctx, chat, alice, bob, "hello")
	require.NoError(t, err)

	_, err = svc.MarkMessagesAsRead(ctx, stranger, chat.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = svc.MarkMessagesAsRead(ctx, bob, primitive.NewObjectID())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	updated, err := svc.MarkMessagesAsRead(ctx, bob, chat.ID)
	require.NoError(t, err)
	assert.True(t, updated)

	// idempotent on the second call
	updated, err = svc.MarkMessagesAsRead(ctx, bob, chat.ID)
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestGetUnreadCountAggregatesAcrossChats(t *testing.T) {
	svc, repo, _ := newChatServiceFixture()
	ctx := context.Background()
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	carol := primitive.NewObjectID()

	chatAB, err := repo.FindOrCreateChat(ctx, alice, bob)
	require.NoError(t, err)
	chatAC, err := repo.FindOrCreateChat(ctx, alice, carol)
	require.NoError(t, err)

	_, err = repo.AppendMessage(ctx, chatAB, bob, alice, "one")
	require.NoError(t, err)
	_, err = repo.AppendMessage(ctx, chatAB, bob, alice, "two")
	require.NoError(t, err)
	_, err = repo.AppendMessage(ctx, chatAC, carol, alice, "three")
	require.NoError(t, err)
	// alice's own outgoing message never counts against her
	_, err = repo.AppendMessage(ctx, chatAB, alice, bob, "reply")
	require.NoError(t, err)

	total, err := svc.GetUnreadCount(ctx, alice)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	perAB, err := repo.GetUnreadCount(ctx, chatAB.ID, alice)
	require.NoError(t, err)
	perAC, err := repo.GetUnreadCount(ctx, chatAC.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, total, perAB+perAC)
}
