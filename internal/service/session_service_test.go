package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"fitcabinet/coach-crm/internal/access"
	"fitcabinet/coach-crm/internal/domain"
	"fitcabinet/coach-crm/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type sessionServiceFixture struct {
	clients  *fakeClientRepo
	sessions *fakeSessionRepo
	comments *fakeCommentRepo
	notes    *fakeNotificationRepo
	storage  *fakeStorage
	svc      SessionService
}

func newSessionServiceFixture() *sessionServiceFixture {
	f := &sessionServiceFixture{
		clients:  newFakeClientRepo(),
		sessions: newFakeSessionRepo(),
		comments: newFakeCommentRepo(),
		notes:    newFakeNotificationRepo(),
		storage:  &fakeStorage{},
	}
	guard := access.NewGuard(f.clients, f.sessions)
	f.svc = NewSessionService(f.sessions, f.comments, guard, NewNotifier(f.notes), f.storage)
	return f
}

// seedCard creates a linked card and returns (cardID, coachID, accountID).
func (f *sessionServiceFixture) seedCard(t *testing.T) (primitive.ObjectID, primitive.ObjectID, primitive.ObjectID) {
	t.Helper()
	coachID := primitive.NewObjectID()
	accountID := primitive.NewObjectID()
	cardID, err := f.clients.Create(context.Background(), &domain.Client{
		CoachID:   coachID,
		AccountID: &accountID,
		Name:      "Ivan Petrov",
		Active:    true,
	})
	require.NoError(t, err)
	return cardID, coachID, accountID
}

func TestCreateSession(t *testing.T) {
	f := newSessionServiceFixture()
	ctx := context.Background()
	cardID, coachID, accountID := f.seedCard(t)

	when := time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)
	session, err := f.svc.CreateSession(ctx, coachID, CreateSessionInput{
		ClientID:    cardID,
		Title:       "Leg day",
		Description: "Squats and lunges",
		ScheduledAt: when,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPlanned, session.Status)
	assert.Equal(t, coachID, session.CreatedBy)
	assert.Equal(t, when, session.ScheduledAt)

	// Exactly one notification, to the linked account, pointing at the session.
	notes := f.notes.forRecipient(accountID)
	require.Len(t, notes, 1)
	assert.Len(t, f.notes.notes, 1)
	require.NotNil(t, notes[0].Entity)
	assert.Equal(t, session.ID, notes[0].Entity.ID)
}

func TestCreateSessionDeniedForStranger(t *testing.T) {
	f := newSessionServiceFixture()
	cardID, _, _ := f.seedCard(t)

	_, err := f.svc.CreateSession(context.Background(), primitive.NewObjectID(), CreateSessionInput{
		ClientID:    cardID,
		Title:       "Sneaky",
		ScheduledAt: time.Now(),
	})
	assert.ErrorIs(t, err, access.ErrForbidden)
	assert.Empty(t, f.sessions.sessions)
	assert.Empty(t, f.notes.notes)
}

func TestListSessionsScopedToVisibleCards(t *testing.T) {
	f := newSessionServiceFixture()
	ctx := context.Background()
	cardID, coachID, accountID := f.seedCard(t)
	otherCardID, otherCoachID, _ := f.seedCard(t)

	_, err := f.svc.CreateSession(ctx, coachID, CreateSessionInput{ClientID: cardID, Title: "Mine", ScheduledAt: time.Now()})
	require.NoError(t, err)
	_, err = f.svc.CreateSession(ctx, otherCoachID, CreateSessionInput{ClientID: otherCardID, Title: "Not mine", ScheduledAt: time.Now()})
	require.NoError(t, err)

	for _, viewer := range []primitive.ObjectID{coachID, accountID} {
		sessions, err := f.svc.ListSessions(ctx, viewer, repository.SessionFilter{})
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, "Mine", sessions[0].Title)
	}

	sessions, err := f.svc.ListSessions(ctx, primitive.NewObjectID(), repository.SessionFilter{})
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestListSessionsNewestScheduledFirst(t *testing.T) {
	f := newSessionServiceFixture()
	ctx := context.Background()
	cardID, coachID, _ := f.seedCard(t)

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	_, err := f.svc.CreateSession(ctx, coachID, CreateSessionInput{ClientID: cardID, Title: "middle", ScheduledAt: base.Add(24 * time.Hour)})
	require.NoError(t, err)
	_, err = f.svc.CreateSession(ctx, coachID, CreateSessionInput{ClientID: cardID, Title: "newest", ScheduledAt: base.Add(48 * time.Hour)})
	require.NoError(t, err)
	_, err = f.svc.CreateSession(ctx, coachID, CreateSessionInput{ClientID: cardID, Title: "oldest", ScheduledAt: base})
	require.NoError(t, err)

	sessions, err := f.svc.ListSessions(ctx, coachID, repository.SessionFilter{})
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, "newest", sessions[0].Title)
	assert.Equal(t, "middle", sessions[1].Title)
	assert.Equal(t, "oldest", sessions[2].Title)
}

func TestListSessionsStatusFilter(t *testing.T) {
	f := newSessionServiceFixture()
	ctx := context.Background()
	cardID, coachID, _ := f.seedCard(t)

	planned, err := f.svc.CreateSession(ctx, coachID, CreateSessionInput{ClientID: cardID, Title: "A", ScheduledAt: time.Now()})
	require.NoError(t, err)
	done, err := f.svc.CreateSession(ctx, coachID, CreateSessionInput{ClientID: cardID, Title: "B", ScheduledAt: time.Now()})
	require.NoError(t, err)
	_, err = f.svc.UpdateSession(ctx, coachID, done.ID, UpdateSessionInput{Status: domain.StatusCompleted})
	require.NoError(t, err)

	sessions, err := f.svc.ListSessions(ctx, coachID, repository.SessionFilter{Status: domain.StatusPlanned})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, planned.ID, sessions[0].ID)
}

func TestUpdateSession(t *testing.T) {
	f := newSessionServiceFixture()
	ctx := context.Background()
	cardID, coachID, accountID := f.seedCard(t)

	session, err := f.svc.CreateSession(ctx, coachID, CreateSessionInput{ClientID: cardID, Title: "Leg day", ScheduledAt: time.Now()})
	require.NoError(t, err)

	_, err = f.svc.UpdateSession(ctx, coachID, session.ID, UpdateSessionInput{Status: "postponed"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	// The linked client records feedback and completes the session.
	feedback := "Felt strong, last set was heavy"
	updated, err := f.svc.UpdateSession(ctx, accountID, session.ID, UpdateSessionInput{
		ClientFeedback: &feedback,
		Status:         domain.StatusCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, updated.Status)
	assert.Equal(t, feedback, updated.ClientFeedback)

	_, err = f.svc.UpdateSession(ctx, primitive.NewObjectID(), session.ID, UpdateSessionInput{Title: "Hax"})
	assert.ErrorIs(t, err, access.ErrForbidden)
}

func TestComments(t *testing.T) {
	f := newSessionServiceFixture()
	ctx := context.Background()
	cardID, coachID, accountID := f.seedCard(t)

	session, err := f.svc.CreateSession(ctx, coachID, CreateSessionInput{ClientID: cardID, Title: "Leg day", ScheduledAt: time.Now()})
	require.NoError(t, err)
	f.notes.DeleteByRecipient(ctx, accountID) // drop the creation fan-out

	comment, err := f.svc.AddComment(ctx, accountID, session.ID, AddCommentInput{Text: "Done, felt great"})
	require.NoError(t, err)
	assert.Equal(t, accountID, comment.AuthorID)

	// The client's message lands on the coach's side only.
	require.Len(t, f.notes.forRecipient(coachID), 1)
	assert.Empty(t, f.notes.forRecipient(accountID))

	thread, err := f.svc.ListComments(ctx, coachID, session.ID)
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.Equal(t, "Done, felt great", thread[0].Text)

	_, err = f.svc.AddComment(ctx, coachID, session.ID, AddCommentInput{Text: "   "})
	assert.Error(t, err)

	_, err = f.svc.ListComments(ctx, primitive.NewObjectID(), session.ID)
	assert.ErrorIs(t, err, access.ErrForbidden)
}

func TestCommentThreadIsOldestFirst(t *testing.T) {
	f := newSessionServiceFixture()
	ctx := context.Background()
	cardID, coachID, accountID := f.seedCard(t)

	session, err := f.svc.CreateSession(ctx, coachID, CreateSessionInput{ClientID: cardID, Title: "Leg day", ScheduledAt: time.Now()})
	require.NoError(t, err)

	// Seed out of order; the listing must come back in chat order.
	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	_, err = f.comments.Create(ctx, &domain.Comment{SessionID: session.ID, AuthorID: accountID, Text: "second", CreatedAt: base.Add(time.Minute)})
	require.NoError(t, err)
	_, err = f.comments.Create(ctx, &domain.Comment{SessionID: session.ID, AuthorID: coachID, Text: "first", CreatedAt: base})
	require.NoError(t, err)
	_, err = f.comments.Create(ctx, &domain.Comment{SessionID: session.ID, AuthorID: accountID, Text: "third", CreatedAt: base.Add(2 * time.Minute)})
	require.NoError(t, err)

	thread, err := f.svc.ListComments(ctx, coachID, session.ID)
	require.NoError(t, err)
	require.Len(t, thread, 3)
	assert.Equal(t, "first", thread[0].Text)
	assert.Equal(t, "second", thread[1].Text)
	assert.Equal(t, "third", thread[2].Text)
}

func TestMarkCommentsRead(t *testing.T) {
	f := newSessionServiceFixture()
	ctx := context.Background()
	cardID, coachID, accountID := f.seedCard(t)

	session, err := f.svc.CreateSession(ctx, coachID, CreateSessionInput{ClientID: cardID, Title: "Leg day", ScheduledAt: time.Now()})
	require.NoError(t, err)

	_, err = f.svc.AddComment(ctx, coachID, session.ID, AddCommentInput{Text: "how did it go?"})
	require.NoError(t, err)
	_, err = f.svc.AddComment(ctx, accountID, session.ID, AddCommentInput{Text: "all done"})
	require.NoError(t, err)

	// The client opens the thread: the coach's message flips, their own stays.
	require.NoError(t, f.svc.MarkCommentsRead(ctx, accountID, session.ID))

	thread, err := f.svc.ListComments(ctx, accountID, session.ID)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	for _, c := range thread {
		if c.AuthorID == coachID {
			assert.True(t, c.Read)
		} else {
			assert.False(t, c.Read)
		}
	}

	err = f.svc.MarkCommentsRead(ctx, primitive.NewObjectID(), session.ID)
	assert.ErrorIs(t, err, access.ErrForbidden)
}

func TestCommentAttachmentFlow(t *testing.T) {
	f := newSessionServiceFixture()
	ctx := context.Background()
	cardID, coachID, accountID := f.seedCard(t)

	session, err := f.svc.CreateSession(ctx, coachID, CreateSessionInput{ClientID: cardID, Title: "Leg day", ScheduledAt: time.Now()})
	require.NoError(t, err)

	upload, err := f.svc.RequestCommentAttachmentUpload(ctx, accountID, session.ID, "squat-set.mp4", "video/mp4")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(upload.ObjectKey, "sessions/"+session.ID.Hex()+"/comments/"))
	assert.True(t, strings.HasSuffix(upload.ObjectKey, ".mp4"))

	// Attachment-only message is valid chat content.
	comment, err := f.svc.AddComment(ctx, accountID, session.ID, AddCommentInput{AttachmentKey: upload.ObjectKey})
	require.NoError(t, err)
	assert.Equal(t, upload.ObjectKey, comment.AttachmentKey)
	notes := f.notes.forRecipient(coachID)
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Message, "Attachment")

	download, err := f.svc.CommentAttachmentDownloadURL(ctx, coachID, session.ID, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MediaVideo, download.Kind)
	assert.Contains(t, download.URL, upload.ObjectKey)

	// Text-only comments have nothing to download.
	plain, err := f.svc.AddComment(ctx, coachID, session.ID, AddCommentInput{Text: "looks solid"})
	require.NoError(t, err)
	_, err = f.svc.CommentAttachmentDownloadURL(ctx, coachID, session.ID, plain.ID)
	assert.ErrorIs(t, err, ErrNoAttachment)

	// A comment ID cannot be fetched through a different session's URL.
	otherSession, err := f.svc.CreateSession(ctx, coachID, CreateSessionInput{ClientID: cardID, Title: "Other", ScheduledAt: time.Now()})
	require.NoError(t, err)
	_, err = f.svc.CommentAttachmentDownloadURL(ctx, coachID, otherSession.ID, comment.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// Strangers get nothing.
	_, err = f.svc.CommentAttachmentDownloadURL(ctx, primitive.NewObjectID(), session.ID, comment.ID)
	assert.ErrorIs(t, err, access.ErrForbidden)
}

func TestAttachmentFlow(t *testing.T) {
	f := newSessionServiceFixture()
	ctx := context.Background()
	cardID, coachID, _ := f.seedCard(t)

	session, err := f.svc.CreateSession(ctx, coachID, CreateSessionInput{ClientID: cardID, Title: "Leg day", ScheduledAt: time.Now()})
	require.NoError(t, err)

	_, err = f.svc.AttachmentDownloadURL(ctx, coachID, session.ID)
	assert.ErrorIs(t, err, ErrNoAttachment)

	upload, err := f.svc.RequestAttachmentUpload(ctx, coachID, session.ID, "Form Check.MOV", "video/quicktime")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(upload.ObjectKey, "sessions/"+session.ID.Hex()+"/"))
	assert.True(t, strings.HasSuffix(upload.ObjectKey, ".mov"))
	assert.NotEmpty(t, upload.UploadURL)

	confirmed, err := f.svc.ConfirmAttachment(ctx, coachID, session.ID, upload.ObjectKey)
	require.NoError(t, err)
	assert.Equal(t, upload.ObjectKey, confirmed.AttachmentKey)

	download, err := f.svc.AttachmentDownloadURL(ctx, coachID, session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MediaVideo, download.Kind)
	assert.Contains(t, download.URL, upload.ObjectKey)
}

func TestAttachmentStorageErrors(t *testing.T) {
	f := newSessionServiceFixture()
	ctx := context.Background()
	cardID, coachID, _ := f.seedCard(t)

	session, err := f.svc.CreateSession(ctx, coachID, CreateSessionInput{ClientID: cardID, Title: "Leg day", ScheduledAt: time.Now()})
	require.NoError(t, err)

	f.storage.uploadErr = assert.AnError
	_, err = f.svc.RequestAttachmentUpload(ctx, coachID, session.ID, "plan.pdf", "application/pdf")
	assert.ErrorIs(t, err, ErrUploadURLError)

	_, err = f.svc.ConfirmAttachment(ctx, coachID, session.ID, "sessions/x/plan.pdf")
	require.NoError(t, err)

	f.storage.downloadErr = assert.AnError
	_, err = f.svc.AttachmentDownloadURL(ctx, coachID, session.ID)
	assert.ErrorIs(t, err, ErrDownloadURLError)
}
