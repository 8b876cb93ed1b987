package service

import (
	"context"
	"errors"

	"fitcabinet/coach-crm/internal/domain"
	"fitcabinet/coach-crm/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService is the read side of the fan-out: an account sees
// only its own rows. Creation happens exclusively in the Notifier.
type NotificationService interface {
	ListMine(ctx context.Context, accountID primitive.ObjectID) ([]domain.Notification, error)
	UnreadCount(ctx context.Context, accountID primitive.ObjectID) (int64, error)
	MarkRead(ctx context.Context, accountID, notificationID primitive.ObjectID) error
	MarkAllRead(ctx context.Context, accountID primitive.ObjectID) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

// NewNotificationService creates a new instance of notificationService.
func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) ListMine(ctx context.Context, accountID primitive.ObjectID) ([]domain.Notification, error) {
	return s.repo.GetByRecipient(ctx, accountID)
}

func (s *notificationService) UnreadCount(ctx context.Context, accountID primitive.ObjectID) (int64, error) {
	return s.repo.CountUnread(ctx, accountID)
}

// MarkRead scopes by recipient, so a foreign ID reads as not-found
// rather than confirming the row exists.
func (s *notificationService) MarkRead(ctx context.Context, accountID, notificationID primitive.ObjectID) error {
	err := s.repo.MarkRead(ctx, notificationID, accountID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotificationNotFound
	}
	return err
}

func (s *notificationService) MarkAllRead(ctx context.Context, accountID primitive.ObjectID) error {
	return s.repo.MarkAllRead(ctx, accountID)
}
