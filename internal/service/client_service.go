package service

import (
	"context"
	"errors"
	"fmt"

	"fitcabinet/coach-crm/internal/access"
	"fitcabinet/coach-crm/internal/domain"
	"fitcabinet/coach-crm/internal/mailer"
	"fitcabinet/coach-crm/internal/repository"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrNotCardOwner       = errors.New("only the owning coach may do this")
	ErrAttributeExists    = errors.New("attribute value already set for this client")
	ErrAttributeNotFound  = errors.New("attribute value not found")
	ErrProvisioningFailed = errors.New("failed to provision client")
)

// OnboardClientInput is what the coach supplies when creating a card.
type OnboardClientInput struct {
	Email         string
	Name          string
	Phone         string
	CategorySlugs []string
	TagSlugs      []string
}

// UpdateClientInput covers the mutable card fields.
type UpdateClientInput struct {
	Name          string
	CategorySlugs []string
	TagSlugs      []string
	Active        *bool
}

// ClientService manages client cards, their provisioning and their EAV rows.
type ClientService interface {
	// OnboardClient atomically creates the login account (with a generated
	// one-shot credential), the card and its classification, then sends
	// the credentials by mail on a best-effort basis.
	OnboardClient(ctx context.Context, coachID primitive.ObjectID, input OnboardClientInput) (*domain.Client, error)

	ListClients(ctx context.Context, accountID primitive.ObjectID) ([]domain.Client, error)
	GetClient(ctx context.Context, accountID, clientID primitive.ObjectID) (*domain.Client, error)
	UpdateClient(ctx context.Context, accountID, clientID primitive.ObjectID, input UpdateClientInput) (*domain.Client, error)

	// DeleteClient removes the card and cascades over everything hanging
	// off it, including the linked login account.
	DeleteClient(ctx context.Context, accountID, clientID primitive.ObjectID) error

	// EAV rows
	AddAttribute(ctx context.Context, accountID, clientID primitive.ObjectID, slug, value string) (*domain.ClientAttribute, error)
	UpdateAttribute(ctx context.Context, accountID, clientID primitive.ObjectID, slug, value string) (*domain.ClientAttribute, error)
	ListAttributes(ctx context.Context, accountID, clientID primitive.ObjectID) ([]domain.ClientAttribute, error)
}

// clientService implements the ClientService interface.
type clientService struct {
	userRepo    repository.UserRepository
	clientRepo  repository.ClientRepository
	sessionRepo repository.SessionRepository
	commentRepo repository.CommentRepository
	attrRepo    repository.ClientAttributeRepository
	notifRepo   repository.NotificationRepository
	txn         repository.TransactionRunner
	guard       *access.Guard
	mail        mailer.Mailer
}

// NewClientService creates a new instance of clientService.
func NewClientService(
	userRepo repository.UserRepository,
	clientRepo repository.ClientRepository,
	sessionRepo repository.SessionRepository,
	commentRepo repository.CommentRepository,
	attrRepo repository.ClientAttributeRepository,
	notifRepo repository.NotificationRepository,
	txn repository.TransactionRunner,
	guard *access.Guard,
	mail mailer.Mailer,
) ClientService {
	return &clientService{
		userRepo:    userRepo,
		clientRepo:  clientRepo,
		sessionRepo: sessionRepo,
		commentRepo: commentRepo,
		attrRepo:    attrRepo,
		notifRepo:   notifRepo,
		txn:         txn,
		guard:       guard,
		mail:        mail,
	}
}

// === Provisioning ===

// OnboardClient runs account + card + classification as one transaction.
// The credential mail is a best-effort tail: the card must exist even if
// the welcome message could not be sent.
func (s *clientService) OnboardClient(ctx context.Context, coachID primitive.ObjectID, input OnboardClientInput) (*domain.Client, error) {
	if coachID == primitive.NilObjectID || input.Email == "" || input.Name == "" {
		return nil, errors.New("coach ID, client email and name are required")
	}

	password, err := generatePassword(generatedPasswordLength)
	if err != nil {
		return nil, ErrProvisioningFailed
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	var client *domain.Client
	err = s.txn.WithTransaction(ctx, func(txCtx context.Context) error {
		// Reject a taken email up front; the unique index still backs
		// this up if two onboarding requests race.
		_, err := s.userRepo.GetByEmail(txCtx, input.Email)
		if err == nil {
			return ErrEmailTaken
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		account := &domain.User{
			Name:         input.Name,
			Email:        input.Email,
			Phone:        input.Phone,
			PasswordHash: string(hashed),
			Role:         domain.RoleClient,
		}
		accountID, err := s.userRepo.Create(txCtx, account)
		if err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrEmailTaken
			}
			return err
		}

		card := &domain.Client{
			CoachID:       coachID,
			AccountID:     &accountID,
			Name:          input.Name,
			CategorySlugs: input.CategorySlugs,
			TagSlugs:      input.TagSlugs,
			Active:        true,
		}
		cardID, err := s.clientRepo.Create(txCtx, card)
		if err != nil {
			return err
		}
		card.ID = cardID
		client = card
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Best-effort tail, outside the transaction.
	subject := "Your training cabinet access"
	body := fmt.Sprintf(
		"Hi %s,\n\nYour coach set up an account for you.\n\nLogin: %s\nPassword: %s\n\nPlease change the password after your first login.\n",
		input.Name, input.Email, password,
	)
	if err := s.mail.Send(input.Email, subject, body); err != nil {
		log.Warn("credential mail not sent", "client", client.ID.Hex(), "err", err)
	}

	return client, nil
}

// === Card access ===

// ListClients returns every card visible to the account: the roster for
// a coach, the single own card for a client.
func (s *clientService) ListClients(ctx context.Context, accountID primitive.ObjectID) ([]domain.Client, error) {
	if accountID == primitive.NilObjectID {
		return nil, errors.New("account ID is required")
	}
	return s.guard.VisibleClients(ctx, accountID)
}

func (s *clientService) GetClient(ctx context.Context, accountID, clientID primitive.ObjectID) (*domain.Client, error) {
	return s.guard.ResolveClient(ctx, accountID, clientID)
}

// UpdateClient lets the owning coach change the card. The linked client
// can see the card but not rewrite it.
func (s *clientService) UpdateClient(ctx context.Context, accountID, clientID primitive.ObjectID, input UpdateClientInput) (*domain.Client, error) {
	client, err := s.guard.ResolveClient(ctx, accountID, clientID)
	if err != nil {
		return nil, err
	}
	if client.CoachID != accountID {
		return nil, ErrNotCardOwner
	}

	if input.Name != "" {
		client.Name = input.Name
	}
	if input.CategorySlugs != nil {
		client.CategorySlugs = input.CategorySlugs
	}
	if input.TagSlugs != nil {
		client.TagSlugs = input.TagSlugs
	}
	if input.Active != nil {
		client.Active = *input.Active
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// DeleteClient cascades: sessions, their threads, EAV rows, the card
// itself, and finally the linked login account with its notifications.
// Dropping the account frees the email and leaves no login that cannot
// reach any data.
func (s *clientService) DeleteClient(ctx context.Context, accountID, clientID primitive.ObjectID) error {
	client, err := s.guard.ResolveClient(ctx, accountID, clientID)
	if err != nil {
		return err
	}
	if client.CoachID != accountID {
		return ErrNotCardOwner
	}

	return s.txn.WithTransaction(ctx, func(txCtx context.Context) error {
		sessions, err := s.sessionRepo.GetByClientIDs(txCtx, []primitive.ObjectID{clientID}, repository.SessionFilter{})
		if err != nil {
			return err
		}
		sessionIDs := make([]primitive.ObjectID, len(sessions))
		for i, sess := range sessions {
			sessionIDs[i] = sess.ID
		}

		if err := s.commentRepo.DeleteBySessionIDs(txCtx, sessionIDs); err != nil {
			return err
		}
		if err := s.sessionRepo.DeleteByClientID(txCtx, clientID); err != nil {
			return err
		}
		if err := s.attrRepo.DeleteByClientID(txCtx, clientID); err != nil {
			return err
		}
		if err := s.clientRepo.Delete(txCtx, clientID); err != nil {
			return err
		}

		if client.AccountID != nil {
			if err := s.notifRepo.DeleteByRecipient(txCtx, *client.AccountID); err != nil {
				return err
			}
			if err := s.userRepo.Delete(txCtx, *client.AccountID); err != nil && !errors.Is(err, repository.ErrNotFound) {
				return err
			}
		}
		return nil
	})
}

// === EAV rows ===

// AddAttribute creates one metric row. A second row for the same
// (client, attribute) pair is a validation error, backed by the unique
// index.
func (s *clientService) AddAttribute(ctx context.Context, accountID, clientID primitive.ObjectID, slug, value string) (*domain.ClientAttribute, error) {
	if _, err := s.guard.ResolveClient(ctx, accountID, clientID); err != nil {
		return nil, err
	}

	attr := &domain.ClientAttribute{
		ClientID:      clientID,
		AttributeSlug: slug,
		Value:         value,
	}
	id, err := s.attrRepo.Create(ctx, attr)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAttributeExists
		}
		return nil, err
	}
	attr.ID = id
	return attr, nil
}

// UpdateAttribute overwrites the value of an existing row.
func (s *clientService) UpdateAttribute(ctx context.Context, accountID, clientID primitive.ObjectID, slug, value string) (*domain.ClientAttribute, error) {
	if _, err := s.guard.ResolveClient(ctx, accountID, clientID); err != nil {
		return nil, err
	}

	attr := &domain.ClientAttribute{
		ClientID:      clientID,
		AttributeSlug: slug,
		Value:         value,
	}
	if err := s.attrRepo.Update(ctx, attr); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAttributeNotFound
		}
		return nil, err
	}
	return attr, nil
}

// ListAttributes returns all metric rows of a card.
func (s *clientService) ListAttributes(ctx context.Context, accountID, clientID primitive.ObjectID) ([]domain.ClientAttribute, error) {
	if _, err := s.guard.ResolveClient(ctx, accountID, clientID); err != nil {
		return nil, err
	}
	return s.attrRepo.GetByClientID(ctx, clientID)
}
