package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dantegr/pickndeal-backend/internal/models"
	"github.com/dantegr/pickndeal-backend/internal/repository"
)

// NotificationService fronts the notification inbox.
type NotificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) Create(ctx context.Context, userID primitive.ObjectID, notifType string, data models.ChatNotificationData) (*models.Notification, error) {
	return s.repo.Create(ctx, userID, notifType, data)
}

func (s *NotificationService) ListForUser(ctx context.Context, userID primitive.ObjectID, page, pageSize int64, unreadOnly bool) (*repository.NotificationPage, error) {
	return s.repo.ListForUser(ctx, userID, page, pageSize, unreadOnly)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID primitive.ObjectID) (*models.Notification, error) {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *NotificationService) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	return s.repo.Delete(ctx, id, userID)
}

func (s *NotificationService) DeleteAll(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.repo.DeleteAll(ctx, userID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}
