package service

import (
	"context"
	"sort"
	"time"

	"fitcabinet/coach-crm/internal/domain"
	"fitcabinet/coach-crm/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory fakes for the repository interfaces. They keep the happy-path
// semantics of the mongo implementations (sentinel errors, uniqueness)
// so service behavior can be tested without a database.

// --- users ---

type fakeUserRepo struct {
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	id := primitive.NewObjectID()
	cp := *user
	cp.ID = id
	r.users[id] = &cp
	return id, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) SetOnboarded(_ context.Context, id primitive.ObjectID) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Onboarded = true
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

// --- clients ---

type fakeClientRepo struct {
	clients map[primitive.ObjectID]*domain.Client
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{clients: make(map[primitive.ObjectID]*domain.Client)}
}

func (r *fakeClientRepo) Create(_ context.Context, client *domain.Client) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	cp := *client
	cp.ID = id
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	r.clients[id] = &cp
	return id, nil
}

func (r *fakeClientRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeClientRepo) GetVisibleToAccount(_ context.Context, accountID primitive.ObjectID) ([]domain.Client, error) {
	var out []domain.Client
	for _, c := range r.clients {
		if c.CoachID == accountID || c.IsLinkedTo(accountID) {
			out = append(out, *c)
		}
	}
	// Newest cards first, same convention the mongo repo sorts by.
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeClientRepo) Update(_ context.Context, client *domain.Client) error {
	if _, ok := r.clients[client.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *client
	r.clients[client.ID] = &cp
	return nil
}

func (r *fakeClientRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.clients[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.clients, id)
	return nil
}

// --- client attributes ---

type fakeAttrRepo struct {
	rows map[primitive.ObjectID]*domain.ClientAttribute
}

func newFakeAttrRepo() *fakeAttrRepo {
	return &fakeAttrRepo{rows: make(map[primitive.ObjectID]*domain.ClientAttribute)}
}

func (r *fakeAttrRepo) Create(_ context.Context, attr *domain.ClientAttribute) (primitive.ObjectID, error) {
	for _, row := range r.rows {
		if row.ClientID == attr.ClientID && row.AttributeSlug == attr.AttributeSlug {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	id := primitive.NewObjectID()
	cp := *attr
	cp.ID = id
	r.rows[id] = &cp
	return id, nil
}

func (r *fakeAttrRepo) Update(_ context.Context, attr *domain.ClientAttribute) error {
	for _, row := range r.rows {
		if row.ClientID == attr.ClientID && row.AttributeSlug == attr.AttributeSlug {
			row.Value = attr.Value
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeAttrRepo) GetByClientID(_ context.Context, clientID primitive.ObjectID) ([]domain.ClientAttribute, error) {
	var out []domain.ClientAttribute
	for _, row := range r.rows {
		if row.ClientID == clientID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *fakeAttrRepo) DeleteByClientID(_ context.Context, clientID primitive.ObjectID) error {
	for id, row := range r.rows {
		if row.ClientID == clientID {
			delete(r.rows, id)
		}
	}
	return nil
}

// --- sessions ---

type fakeSessionRepo struct {
	sessions map[primitive.ObjectID]*domain.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[primitive.ObjectID]*domain.Session)}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *domain.Session) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	cp := *session
	cp.ID = id
	r.sessions[id] = &cp
	return id, nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Session, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSessionRepo) GetByClientIDs(_ context.Context, clientIDs []primitive.ObjectID, filter repository.SessionFilter) ([]domain.Session, error) {
	wanted := make(map[primitive.ObjectID]bool, len(clientIDs))
	for _, id := range clientIDs {
		wanted[id] = true
	}
	var out []domain.Session
	for _, s := range r.sessions {
		if !wanted[s.ClientID] {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.From != nil && s.ScheduledAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && s.ScheduledAt.After(*filter.To) {
			continue
		}
		out = append(out, *s)
	}
	// Newest scheduled first, same convention the mongo repo sorts by.
	sort.SliceStable(out, func(i, j int) bool { return out[i].ScheduledAt.After(out[j].ScheduledAt) })
	return out, nil
}

func (r *fakeSessionRepo) Update(_ context.Context, session *domain.Session) error {
	if _, ok := r.sessions[session.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *session
	r.sessions[session.ID] = &cp
	return nil
}

func (r *fakeSessionRepo) DeleteByClientID(_ context.Context, clientID primitive.ObjectID) error {
	for id, s := range r.sessions {
		if s.ClientID == clientID {
			delete(r.sessions, id)
		}
	}
	return nil
}

// --- comments ---

type fakeCommentRepo struct {
	comments map[primitive.ObjectID]*domain.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[primitive.ObjectID]*domain.Comment)}
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	cp := *comment
	cp.ID = id
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	r.comments[id] = &cp
	return id, nil
}

func (r *fakeCommentRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Comment, error) {
	c, ok := r.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCommentRepo) GetBySessionID(_ context.Context, sessionID primitive.ObjectID) ([]domain.Comment, error) {
	var out []domain.Comment
	for _, c := range r.comments {
		if c.SessionID == sessionID {
			out = append(out, *c)
		}
	}
	// Oldest first, chat order, same convention the mongo repo sorts by.
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeCommentRepo) MarkReadExceptAuthor(_ context.Context, sessionID, authorID primitive.ObjectID) error {
	for _, c := range r.comments {
		if c.SessionID == sessionID && c.AuthorID != authorID {
			c.Read = true
		}
	}
	return nil
}

func (r *fakeCommentRepo) DeleteBySessionIDs(_ context.Context, sessionIDs []primitive.ObjectID) error {
	wanted := make(map[primitive.ObjectID]bool, len(sessionIDs))
	for _, id := range sessionIDs {
		wanted[id] = true
	}
	for id, c := range r.comments {
		if wanted[c.SessionID] {
			delete(r.comments, id)
		}
	}
	return nil
}

// --- notifications ---

type fakeNotificationRepo struct {
	notes     map[primitive.ObjectID]*domain.Notification
	createErr error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notes: make(map[primitive.ObjectID]*domain.Notification)}
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *domain.Notification) (primitive.ObjectID, error) {
	if r.createErr != nil {
		return primitive.NilObjectID, r.createErr
	}
	id := primitive.NewObjectID()
	cp := *n
	cp.ID = id
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	r.notes[id] = &cp
	return id, nil
}

func (r *fakeNotificationRepo) GetByRecipient(_ context.Context, recipientID primitive.ObjectID) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, n := range r.notes {
		if n.RecipientID == recipientID {
			out = append(out, *n)
		}
	}
	// Newest first, same convention the mongo repo sorts by.
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, recipientID primitive.ObjectID) (int64, error) {
	var count int64
	for _, n := range r.notes {
		if n.RecipientID == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id, recipientID primitive.ObjectID) error {
	n, ok := r.notes[id]
	if !ok || n.RecipientID != recipientID {
		return repository.ErrNotFound
	}
	n.Read = true
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, recipientID primitive.ObjectID) error {
	for _, n := range r.notes {
		if n.RecipientID == recipientID {
			n.Read = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) DeleteByRecipient(_ context.Context, recipientID primitive.ObjectID) error {
	for id, n := range r.notes {
		if n.RecipientID == recipientID {
			delete(r.notes, id)
		}
	}
	return nil
}

func (r *fakeNotificationRepo) forRecipient(id primitive.ObjectID) []domain.Notification {
	out, _ := r.GetByRecipient(context.Background(), id)
	return out
}

// --- catalogs ---

type fakeCatalogRepo struct {
	categories map[string]domain.Category
	tags       map[string]domain.Tag
	attributes map[string]domain.Attribute
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		categories: make(map[string]domain.Category),
		tags:       make(map[string]domain.Tag),
		attributes: make(map[string]domain.Attribute),
	}
}

func (r *fakeCatalogRepo) CreateCategory(_ context.Context, c *domain.Category) error {
	if _, ok := r.categories[c.Slug]; ok {
		return repository.ErrDuplicate
	}
	r.categories[c.Slug] = *c
	return nil
}

func (r *fakeCatalogRepo) ListCategories(_ context.Context) ([]domain.Category, error) {
	var out []domain.Category
	for _, c := range r.categories {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCatalogRepo) DeleteCategory(_ context.Context, slug string) error {
	if _, ok := r.categories[slug]; !ok {
		return repository.ErrNotFound
	}
	delete(r.categories, slug)
	return nil
}

func (r *fakeCatalogRepo) CreateTag(_ context.Context, t *domain.Tag) error {
	if _, ok := r.tags[t.Slug]; ok {
		return repository.ErrDuplicate
	}
	r.tags[t.Slug] = *t
	return nil
}

func (r *fakeCatalogRepo) ListTags(_ context.Context) ([]domain.Tag, error) {
	var out []domain.Tag
	for _, t := range r.tags {
		out = append(out, t)
	}
	return out, nil
}

func (r *fakeCatalogRepo) DeleteTag(_ context.Context, slug string) error {
	if _, ok := r.tags[slug]; !ok {
		return repository.ErrNotFound
	}
	delete(r.tags, slug)
	return nil
}

func (r *fakeCatalogRepo) CreateAttribute(_ context.Context, a *domain.Attribute) error {
	if _, ok := r.attributes[a.Slug]; ok {
		return repository.ErrDuplicate
	}
	r.attributes[a.Slug] = *a
	return nil
}

func (r *fakeCatalogRepo) ListAttributes(_ context.Context) ([]domain.Attribute, error) {
	var out []domain.Attribute
	for _, a := range r.attributes {
		out = append(out, a)
	}
	return out, nil
}

func (r *fakeCatalogRepo) DeleteAttribute(_ context.Context, slug string) error {
	if _, ok := r.attributes[slug]; !ok {
		return repository.ErrNotFound
	}
	delete(r.attributes, slug)
	return nil
}

// --- transaction runner ---

// fakeTxn runs the function directly. Rollback is not simulated; tests
// that care about atomicity assert on side effects after an error return.
type fakeTxn struct{}

func (fakeTxn) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// --- mailer ---

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

// --- file storage ---

type fakeStorage struct {
	uploadErr   error
	downloadErr error
}

func (s *fakeStorage) GeneratePresignedUploadURL(_ context.Context, objectKey, _ string, _ time.Duration) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	return "https://storage.test/upload/" + objectKey, nil
}

func (s *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	if s.downloadErr != nil {
		return "", s.downloadErr
	}
	return "https://storage.test/download/" + objectKey, nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, _ string) error {
	return nil
}
