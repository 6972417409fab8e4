package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dantegr/pickndeal-backend/internal/apperrors"
	"github.com/dantegr/pickndeal-backend/internal/models"
)

// ChatRepository is the chat/message store. Messages live in a flat
// collection keyed by chat id; the chat document carries the cached
// last_message and a monotonically non-decreasing last_activity.
type ChatRepository interface {
	FindOrCreateChat(ctx context.Context, userA, userB primitive.ObjectID) (*models.Chat, error)
	GetChat(ctx context.Context, chatID primitive.ObjectID) (*models.Chat, error)
	AppendMessage(ctx context.Context, chat *models.Chat, sender, receiver primitive.ObjectID, textContent string) (*models.Message, error)
	MarkAsRead(ctx context.Context, chatID, readerID primitive.ObjectID) (bool, error)
	GetUnreadCount(ctx context.Context, chatID, userID primitive.ObjectID) (int64, error)
	GetUnreadCountForUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	ListChatsForUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Chat, error)
	GetHistory(ctx context.Context, chatID primitive.ObjectID, limit int64) ([]*models.Message, error)
}

type mongoChatRepository struct {
	chats    *mongo.Collection
	messages *mongo.Collection
}

// NewMongoChatRepository wires the chats and messages collections and
// ensures the indexes the invariants depend on. The unique index on the
// scalar pair_key is what makes concurrent first-contact safe; user_ids is
// indexed separately (non-unique, multikey) for membership queries.
func NewMongoChatRepository(db *mongo.Database) ChatRepository {
	chats := db.Collection("chats")
	messages := db.Collection("messages")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _ = chats.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "pair_key", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("pair_key_unique"),
		},
		{
			Keys:    bson.D{{Key: "user_ids", Value: 1}},
			Options: options.Index().SetName("user_ids_idx"),
		},
		{
			Keys:    bson.D{{Key: "last_activity", Value: -1}},
			Options: options.Index().SetName("last_activity_idx"),
		},
	})
	_, _ = messages.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "chat_id", Value: 1}, {Key: "date_sent", Value: 1}},
			Options: options.Index().SetName("chat_date_idx"),
		},
		{
			Keys:    bson.D{{Key: "receiver_id", Value: 1}, {Key: "is_read", Value: 1}},
			Options: options.Index().SetName("receiver_unread_idx"),
		},
	})

	return &mongoChatRepository{chats: chats, messages: messages}
}

func (r *mongoChatRepository) FindOrCreateChat(ctx context.Context, userA, userB primitive.ObjectID) (*models.Chat, error) {
	if userA.IsZero() || userB.IsZero() {
		return nil, fmt.Errorf("both user ids are required: %w", apperrors.ErrValidation)
	}
	if userA == userB {
		return nil, fmt.Errorf("a chat needs two distinct users: %w", apperrors.ErrValidation)
	}
	pairKey := models.PairKey(userA, userB)

	var chat models.Chat
	err := r.chats.FindOne(ctx, bson.M{"pair_key": pairKey}).Decode(&chat)
	if err == nil {
		return &chat, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	now := time.Now().UTC()
	chat = models.Chat{
		ID:           primitive.NewObjectID(),
		PairKey:      pairKey,
		UserIDs:      models.CanonicalPair(userA, userB),
		LastActivity: now,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err = r.chats.InsertOne(ctx, &chat)
	if err == nil {
		return &chat, nil
	}
	if mongo.IsDuplicateKeyError(err) {
		// lost the race against the peer's first message; the winner's
		// document is the chat for this pair
		var existing models.Chat
		if ferr := r.chats.FindOne(ctx, bson.M{"pair_key": pairKey}).Decode(&existing); ferr != nil {
			return nil, fmt.Errorf("chat lookup for pair %s after duplicate insert: %w", pairKey, ferr)
		}
		return &existing, nil
	}
	return nil, err
}

func (r *mongoChatRepository) GetChat(ctx context.Context, chatID primitive.ObjectID) (*models.Chat, error) {
	var chat models.Chat
	if err := r.chats.FindOne(ctx, bson.M{"_id": chatID}).Decode(&chat); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("chat %s: %w", chatID.Hex(), apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &chat, nil
}

func (r *mongoChatRepository) AppendMessage(ctx context.Context, chat *models.Chat, sender, receiver primitive.ObjectID, textContent string) (*models.Message, error) {
	text := strings.TrimSpace(textContent)
	if text == "" {
		return nil, fmt.Errorf("message text must not be empty: %w", apperrors.ErrValidation)
	}
	if !chat.HasMember(sender) || !chat.HasMember(receiver) {
		return nil, fmt.Errorf("sender and receiver must belong to the chat: %w", apperrors.ErrForbidden)
	}

	now := time.Now().UTC()
	msg := &models.Message{
		ID:          primitive.NewObjectID(),
		ChatID:      chat.ID,
		SenderID:    sender,
		ReceiverID:  receiver,
		TextContent: text,
		DateSent:    now,
		IsRead:      false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.messages.InsertOne(ctx, msg); err != nil {
		return nil, err
	}

	// $max keeps last_activity monotonic under concurrent appends; the
	// cached last_message may briefly trail another writer but never a
	// partially written one.
	update := bson.M{
		"$set": bson.M{
			"last_message": msg,
			"updated_at":   now,
		},
		"$max": bson.M{"last_activity": msg.DateSent},
	}
	if _, err := r.chats.UpdateByID(ctx, chat.ID, update); err != nil {
		return nil, err
	}

	chat.LastMessage = msg
	if msg.DateSent.After(chat.LastActivity) {
		chat.LastActivity = msg.DateSent
	}
	chat.UpdatedAt = now
	return msg, nil
}

func (r *mongoChatRepository) MarkAsRead(ctx context.Context, chatID, readerID primitive.ObjectID) (bool, error) {
	res, err := r.messages.UpdateMany(ctx,
		bson.M{"chat_id": chatID, "receiver_id": readerID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *mongoChatRepository) GetUnreadCount(ctx context.Context, chatID, userID primitive.ObjectID) (int64, error) {
	return r.messages.CountDocuments(ctx, bson.M{"chat_id": chatID, "receiver_id": userID, "is_read": false})
}

// GetUnreadCountForUser counts unread messages across every chat the user
// belongs to. Every message carries its chat id, so the flat count equals
// the per-chat sum.
func (r *mongoChatRepository) GetUnreadCountForUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.messages.CountDocuments(ctx, bson.M{"receiver_id": userID, "is_read": false})
}

func (r *mongoChatRepository) ListChatsForUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Chat, error) {
	opts := options.Find().SetSort(bson.D{{Key: "last_activity", Value: -1}})
	cur, err := r.chats.Find(ctx, bson.M{"user_ids": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.Chat
	for cur.Next(ctx) {
		var c models.Chat
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, cur.Err()
}

func (r *mongoChatRepository) GetHistory(ctx context.Context, chatID primitive.ObjectID, limit int64) ([]*models.Message, error) {
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().SetSort(bson.D{{Key: "date_sent", Value: -1}}).SetLimit(limit)
	cur, err := r.messages.Find(ctx, bson.M{"chat_id": chatID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.Message
	for cur.Next(ctx) {
		var m models.Message
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	// newest-first query, chronological result
	reverseMessages(out)
	return out, nil
}

func reverseMessages(msgs []*models.Message) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}
