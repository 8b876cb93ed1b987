package repository

import (
	"context"
	"time"

	"fitcabinet/coach-crm/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate key") // Unique index violation
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// TransactionRunner executes fn inside one atomic store transaction.
// Repository calls made with the ctx passed to fn join that transaction;
// any error from fn aborts the whole region.
type TransactionRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines the interface for interacting with account data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	SetOnboarded(ctx context.Context, id primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ClientRepository defines the interface for interacting with client cards.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Client, error)
	// GetVisibleToAccount returns the union of cards where the account is
	// the coach and cards where it is the linked client, newest first.
	GetVisibleToAccount(ctx context.Context, accountID primitive.ObjectID) ([]domain.Client, error)
	Update(ctx context.Context, client *domain.Client) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ClientAttributeRepository stores the EAV rows of a client card.
type ClientAttributeRepository interface {
	// Create rejects a second row for the same (client, attribute) pair
	// with ErrDuplicate.
	Create(ctx context.Context, attr *domain.ClientAttribute) (primitive.ObjectID, error)
	Update(ctx context.Context, attr *domain.ClientAttribute) error
	GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.ClientAttribute, error)
	DeleteByClientID(ctx context.Context, clientID primitive.ObjectID) error
}

// SessionFilter narrows a session listing (calendar queries).
type SessionFilter struct {
	From   *time.Time
	To     *time.Time
	Status domain.SessionStatus // Empty means any
}

// SessionRepository defines the interface for interacting with sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error)
	// GetByClientIDs lists sessions of the given cards, newest scheduled first.
	GetByClientIDs(ctx context.Context, clientIDs []primitive.ObjectID, filter SessionFilter) ([]domain.Session, error)
	Update(ctx context.Context, session *domain.Session) error
	DeleteByClientID(ctx context.Context, clientID primitive.ObjectID) error
}

// CommentRepository defines the interface for session chat messages.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Comment, error)
	// GetBySessionID returns the thread oldest first.
	GetBySessionID(ctx context.Context, sessionID primitive.ObjectID) ([]domain.Comment, error)
	// MarkReadExceptAuthor flags every message in the thread that the
	// given account did not write (reading your own messages is a no-op).
	MarkReadExceptAuthor(ctx context.Context, sessionID, authorID primitive.ObjectID) error
	DeleteBySessionIDs(ctx context.Context, sessionIDs []primitive.ObjectID) error
}

// NotificationRepository defines the interface for notification rows.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) (primitive.ObjectID, error)
	GetByRecipient(ctx context.Context, recipientID primitive.ObjectID) ([]domain.Notification, error)
	CountUnread(ctx context.Context, recipientID primitive.ObjectID) (int64, error)
	MarkRead(ctx context.Context, id, recipientID primitive.ObjectID) error
	MarkAllRead(ctx context.Context, recipientID primitive.ObjectID) error
	DeleteByRecipient(ctx context.Context, recipientID primitive.ObjectID) error
}

// CatalogRepository covers the three slug-keyed reference catalogs.
// Creates return ErrDuplicate on a taken slug.
type CatalogRepository interface {
	CreateCategory(ctx context.Context, c *domain.Category) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
	DeleteCategory(ctx context.Context, slug string) error

	CreateTag(ctx context.Context, t *domain.Tag) error
	ListTags(ctx context.Context) ([]domain.Tag, error)
	DeleteTag(ctx context.Context, slug string) error

	CreateAttribute(ctx context.Context, a *domain.Attribute) error
	ListAttributes(ctx context.Context) ([]domain.Attribute, error)
	DeleteAttribute(ctx context.Context, slug string) error
}
