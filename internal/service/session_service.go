package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"fitcabinet/coach-crm/internal/access"
	"fitcabinet/coach-crm/internal/domain"
	"fitcabinet/coach-crm/internal/repository"
	"fitcabinet/coach-crm/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrInvalidStatus    = errors.New("invalid session status")
	ErrNoAttachment     = errors.New("session has no attachment")
	ErrUploadURLError   = errors.New("failed to generate upload URL")
	ErrDownloadURLError = errors.New("failed to generate download URL")
)

// CreateSessionInput describes a new session. Either party may create one.
type CreateSessionInput struct {
	ClientID    primitive.ObjectID
	Title       string
	Description string
	ScheduledAt time.Time
}

// UpdateSessionInput covers the mutable session fields. Nil/empty fields
// are left untouched.
type UpdateSessionInput struct {
	Title          string
	Description    *string
	ClientFeedback *string
	ScheduledAt    *time.Time
	Status         domain.SessionStatus
}

// AddCommentInput is one chat message: text, an attachment, or both.
type AddCommentInput struct {
	Text          string
	AttachmentKey string
}

// AttachmentUploadResponse carries the presigned PUT URL plus the object
// key the caller reports back on confirm.
type AttachmentUploadResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// AttachmentDownload is a presigned GET plus the media classification the
// UI needs to pick a viewer.
type AttachmentDownload struct {
	URL  string           `json:"url"`
	Kind domain.MediaKind `json:"kind"`
}

// SessionService manages sessions and their comment threads. Every
// operation goes through the access guard; creation triggers the
// notification fan-out right after the write.
type SessionService interface {
	CreateSession(ctx context.Context, accountID primitive.ObjectID, input CreateSessionInput) (*domain.Session, error)
	ListSessions(ctx context.Context, accountID primitive.ObjectID, filter repository.SessionFilter) ([]domain.Session, error)
	GetSession(ctx context.Context, accountID, sessionID primitive.ObjectID) (*domain.Session, error)
	UpdateSession(ctx context.Context, accountID, sessionID primitive.ObjectID, input UpdateSessionInput) (*domain.Session, error)

	ListComments(ctx context.Context, accountID, sessionID primitive.ObjectID) ([]domain.Comment, error)
	AddComment(ctx context.Context, accountID, sessionID primitive.ObjectID, input AddCommentInput) (*domain.Comment, error)
	// MarkCommentsRead flags the counterpart's messages as seen when the
	// caller opens the thread.
	MarkCommentsRead(ctx context.Context, accountID, sessionID primitive.ObjectID) error

	// Attachment flow: presign, client uploads directly, then confirms.
	// Comments carry their key at creation instead of a confirm step.
	RequestAttachmentUpload(ctx context.Context, accountID, sessionID primitive.ObjectID, fileName, contentType string) (*AttachmentUploadResponse, error)
	ConfirmAttachment(ctx context.Context, accountID, sessionID primitive.ObjectID, objectKey string) (*domain.Session, error)
	AttachmentDownloadURL(ctx context.Context, accountID, sessionID primitive.ObjectID) (*AttachmentDownload, error)
	RequestCommentAttachmentUpload(ctx context.Context, accountID, sessionID primitive.ObjectID, fileName, contentType string) (*AttachmentUploadResponse, error)
	CommentAttachmentDownloadURL(ctx context.Context, accountID, sessionID, commentID primitive.ObjectID) (*AttachmentDownload, error)
}

// sessionService implements the SessionService interface.
type sessionService struct {
	sessionRepo repository.SessionRepository
	commentRepo repository.CommentRepository
	guard       *access.Guard
	notifier    *Notifier
	fileStorage storage.FileStorage
}

// NewSessionService creates a new instance of sessionService.
func NewSessionService(
	sessionRepo repository.SessionRepository,
	commentRepo repository.CommentRepository,
	guard *access.Guard,
	notifier *Notifier,
	fileStorage storage.FileStorage,
) SessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		commentRepo: commentRepo,
		guard:       guard,
		notifier:    notifier,
		fileStorage: fileStorage,
	}
}

// CreateSession writes the session, then fans out to the linked client
// account. The fan-out runs after the write so a notification can never
// exist for a session that was rolled back.
func (s *sessionService) CreateSession(ctx context.Context, accountID primitive.ObjectID, input CreateSessionInput) (*domain.Session, error) {
	if input.Title == "" || input.ScheduledAt.IsZero() {
		return nil, errors.New("session title and scheduled time are required")
	}

	client, err := s.guard.ResolveClient(ctx, accountID, input.ClientID)
	if err != nil {
		return nil, err
	}

	session := &domain.Session{
		ClientID:    client.ID,
		Title:       input.Title,
		Description: input.Description,
		ScheduledAt: input.ScheduledAt.UTC(),
		Status:      domain.StatusPlanned,
		CreatedBy:   accountID,
	}
	sessionID, err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		return nil, err
	}
	session.ID = sessionID

	s.notifier.SessionCreated(ctx, client, session)
	return session, nil
}

// ListSessions returns the union of sessions on every card the account
// may see, newest scheduled first.
func (s *sessionService) ListSessions(ctx context.Context, accountID primitive.ObjectID, filter repository.SessionFilter) ([]domain.Session, error) {
	clientIDs, err := s.guard.VisibleClientIDs(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.sessionRepo.GetByClientIDs(ctx, clientIDs, filter)
}

func (s *sessionService) GetSession(ctx context.Context, accountID, sessionID primitive.ObjectID) (*domain.Session, error) {
	session, _, err := s.guard.ResolveSession(ctx, accountID, sessionID)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// UpdateSession applies partial changes; the status value is validated
// against the lifecycle set.
func (s *sessionService) UpdateSession(ctx context.Context, accountID, sessionID primitive.ObjectID, input UpdateSessionInput) (*domain.Session, error) {
	session, _, err := s.guard.ResolveSession(ctx, accountID, sessionID)
	if err != nil {
		return nil, err
	}

	if input.Title != "" {
		session.Title = input.Title
	}
	if input.Description != nil {
		session.Description = *input.Description
	}
	if input.ClientFeedback != nil {
		session.ClientFeedback = *input.ClientFeedback
	}
	if input.ScheduledAt != nil {
		session.ScheduledAt = input.ScheduledAt.UTC()
	}
	if input.Status != "" {
		if !domain.ValidSessionStatus(input.Status) {
			return nil, ErrInvalidStatus
		}
		session.Status = input.Status
	}

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// === Comments ===

func (s *sessionService) ListComments(ctx context.Context, accountID, sessionID primitive.ObjectID) ([]domain.Comment, error) {
	if _, _, err := s.guard.ResolveSession(ctx, accountID, sessionID); err != nil {
		return nil, err
	}
	return s.commentRepo.GetBySessionID(ctx, sessionID)
}

// AddComment writes one chat message and fans out to the other party.
// The guard has already proven the author is the coach or the linked
// client, satisfying the comment-authorship invariant.
func (s *sessionService) AddComment(ctx context.Context, accountID, sessionID primitive.ObjectID, input AddCommentInput) (*domain.Comment, error) {
	if strings.TrimSpace(input.Text) == "" && input.AttachmentKey == "" {
		return nil, errors.New("comment text or attachment is required")
	}

	session, client, err := s.guard.ResolveSession(ctx, accountID, sessionID)
	if err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		SessionID:     sessionID,
		AuthorID:      accountID,
		Text:          input.Text,
		AttachmentKey: input.AttachmentKey,
	}
	commentID, err := s.commentRepo.Create(ctx, comment)
	if err != nil {
		return nil, err
	}
	comment.ID = commentID

	s.notifier.CommentAdded(ctx, client, session, comment)
	return comment, nil
}

// MarkCommentsRead flags every message the caller did not write. Called
// when the thread is opened; a second call is a harmless no-op.
func (s *sessionService) MarkCommentsRead(ctx context.Context, accountID, sessionID primitive.ObjectID) error {
	if _, _, err := s.guard.ResolveSession(ctx, accountID, sessionID); err != nil {
		return err
	}
	return s.commentRepo.MarkReadExceptAuthor(ctx, sessionID, accountID)
}

// === Attachments ===

// RequestAttachmentUpload presigns a PUT for a session attachment (e.g.
// a program PDF, a check-in video).
func (s *sessionService) RequestAttachmentUpload(ctx context.Context, accountID, sessionID primitive.ObjectID, fileName, contentType string) (*AttachmentUploadResponse, error) {
	if fileName == "" || contentType == "" {
		return nil, errors.New("file name and content type are required")
	}

	session, _, err := s.guard.ResolveSession(ctx, accountID, sessionID)
	if err != nil {
		return nil, err
	}

	// Unique object key; keep the original extension so the media kind
	// can be classified later.
	objectKey := path.Join("sessions", session.ID.Hex(), fmt.Sprintf("%s%s", uuid.NewString(), extensionOf(fileName)))

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrUploadURLError
	}

	return &AttachmentUploadResponse{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// ConfirmAttachment records the object key after a successful direct upload.
func (s *sessionService) ConfirmAttachment(ctx context.Context, accountID, sessionID primitive.ObjectID, objectKey string) (*domain.Session, error) {
	if objectKey == "" {
		return nil, errors.New("object key is required")
	}

	session, _, err := s.guard.ResolveSession(ctx, accountID, sessionID)
	if err != nil {
		return nil, err
	}

	session.AttachmentKey = objectKey
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// AttachmentDownloadURL presigns a GET for the stored attachment and
// classifies it for the viewer.
func (s *sessionService) AttachmentDownloadURL(ctx context.Context, accountID, sessionID primitive.ObjectID) (*AttachmentDownload, error) {
	session, _, err := s.guard.ResolveSession(ctx, accountID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.AttachmentKey == "" {
		return nil, ErrNoAttachment
	}

	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, session.AttachmentKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrDownloadURLError
	}

	return &AttachmentDownload{
		URL:  url,
		Kind: domain.MediaKindForFilename(session.AttachmentKey),
	}, nil
}

// RequestCommentAttachmentUpload presigns a PUT for a chat attachment
// (e.g. a form-check video). The caller uploads, then posts the comment
// carrying the object key.
func (s *sessionService) RequestCommentAttachmentUpload(ctx context.Context, accountID, sessionID primitive.ObjectID, fileName, contentType string) (*AttachmentUploadResponse, error) {
	if fileName == "" || contentType == "" {
		return nil, errors.New("file name and content type are required")
	}

	session, _, err := s.guard.ResolveSession(ctx, accountID, sessionID)
	if err != nil {
		return nil, err
	}

	objectKey := path.Join("sessions", session.ID.Hex(), "comments", fmt.Sprintf("%s%s", uuid.NewString(), extensionOf(fileName)))

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrUploadURLError
	}

	return &AttachmentUploadResponse{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// CommentAttachmentDownloadURL presigns a GET for a chat attachment and
// classifies it for the viewer.
func (s *sessionService) CommentAttachmentDownloadURL(ctx context.Context, accountID, sessionID, commentID primitive.ObjectID) (*AttachmentDownload, error) {
	if _, _, err := s.guard.ResolveSession(ctx, accountID, sessionID); err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	// A comment ID from another thread must not leak through this session's URL.
	if comment.SessionID != sessionID {
		return nil, repository.ErrNotFound
	}
	if comment.AttachmentKey == "" {
		return nil, ErrNoAttachment
	}

	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, comment.AttachmentKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrDownloadURLError
	}

	return &AttachmentDownload{
		URL:  url,
		Kind: domain.MediaKindForFilename(comment.AttachmentKey),
	}, nil
}

func extensionOf(fileName string) string {
	if i := strings.LastIndex(fileName, "."); i >= 0 {
		return strings.ToLower(fileName[i:])
	}
	return ""
}
