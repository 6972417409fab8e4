package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dantegr/pickndeal-backend/internal/apperrors"
	"github.com/dantegr/pickndeal-backend/internal/models"
)

// NotificationPage is the result of a paginated inbox listing.
type NotificationPage struct {
	Items       []*models.Notification
	TotalCount  int64
	UnreadCount int64
}

type NotificationRepository interface {
	Create(ctx context.Context, userID primitive.ObjectID, notifType string, data models.ChatNotificationData) (*models.Notification, error)
	ListForUser(ctx context.Context, userID primitive.ObjectID, page, pageSize int64, unreadOnly bool) (*NotificationPage, error)
	MarkRead(ctx context.Context, id, userID primitive.ObjectID) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error)
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
	DeleteAll(ctx context.Context, userID primitive.ObjectID) (int64, error)
	UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type mongoNotificationRepository struct {
	col *mongo.Collection
}

func NewMongoNotificationRepository(db *mongo.Database) NotificationRepository {
	col := db.Collection("notifications")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "is_read", Value: 1}, {Key: "date_created", Value: -1}},
		Options: options.Index().SetName("user_unread_date_idx"),
	})

	return &mongoNotificationRepository{col: col}
}

func (r *mongoNotificationRepository) Create(ctx context.Context, userID primitive.ObjectID, notifType string, data models.ChatNotificationData) (*models.Notification, error) {
	n := &models.Notification{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		Type:        notifType,
		Data:        data,
		IsRead:      false,
		DateCreated: time.Now().UTC(),
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	if _, err := r.col.InsertOne(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (r *mongoNotificationRepository) ListForUser(ctx context.Context, userID primitive.ObjectID, page, pageSize int64, unreadOnly bool) (*NotificationPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	filter := bson.M{"user_id": userID}
	if unreadOnly {
		filter["is_read"] = false
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "date_created", Value: -1}}).
		SetSkip((page - 1) * pageSize).
		SetLimit(pageSize)
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := &NotificationPage{}
	if err := cur.All(ctx, &out.Items); err != nil {
		return nil, err
	}
	if out.TotalCount, err = r.col.CountDocuments(ctx, filter); err != nil {
		return nil, err
	}
	if out.UnreadCount, err = r.UnreadCount(ctx, userID); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mongoNotificationRepository) MarkRead(ctx context.Context, id, userID primitive.ObjectID) (*models.Notification, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var n models.Notification
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"is_read": true}},
		opts,
	).Decode(&n)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("notification %s: %w", id.Hex(), apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &n, nil
}

func (r *mongoNotificationRepository) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := r.col.UpdateMany(ctx,
		bson.M{"user_id": userID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *mongoNotificationRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	err := r.col.FindOneAndDelete(ctx, bson.M{"_id": id, "user_id": userID}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("notification %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	return err
}

func (r *mongoNotificationRepository) DeleteAll(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *mongoNotificationRepository) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"user_id": userID, "is_read": false})
}
