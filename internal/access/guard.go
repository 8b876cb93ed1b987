package access

import (
	"context"
	"errors"

	"fitcabinet/coach-crm/internal/domain"
	"fitcabinet/coach-crm/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrForbidden marks a request whose caller may not touch the target
// entity. Handlers decide whether to surface it as 403 (writes) or hide
// it behind 404 (reads), so existence is never confirmed to outsiders.
var ErrForbidden = errors.New("access denied")

// CanAccess is the single visibility rule of the whole system: an account
// may access a client card iff it is the card's coach or the card's
// linked login. Nobody else, and no admin bypass at this layer.
func CanAccess(accountID primitive.ObjectID, client *domain.Client) bool {
	if client == nil {
		return false
	}
	return client.CoachID == accountID || client.IsLinkedTo(accountID)
}

// Guard resolves entities and applies CanAccess transitively: sessions,
// comments and attribute rows have no ownership fields of their own,
// eligibility always derives from the parent client card.
type Guard struct {
	clients  repository.ClientRepository
	sessions repository.SessionRepository
}

// NewGuard creates a Guard over the given repositories.
func NewGuard(clients repository.ClientRepository, sessions repository.SessionRepository) *Guard {
	return &Guard{clients: clients, sessions: sessions}
}

// ResolveClient fetches a card and checks the caller against it.
// Returns repository.ErrNotFound if the card does not exist and
// ErrForbidden if it exists but the caller is neither party.
func (g *Guard) ResolveClient(ctx context.Context, accountID, clientID primitive.ObjectID) (*domain.Client, error) {
	client, err := g.clients.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !CanAccess(accountID, client) {
		return nil, ErrForbidden
	}
	return client, nil
}

// ResolveSession fetches a session together with its owning card and
// checks the caller against the card.
func (g *Guard) ResolveSession(ctx context.Context, accountID, sessionID primitive.ObjectID) (*domain.Session, *domain.Client, error) {
	session, err := g.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	client, err := g.clients.GetByID(ctx, session.ClientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Session without a card is inconsistent data; hide it.
			return nil, nil, repository.ErrNotFound
		}
		return nil, nil, err
	}
	if !CanAccess(accountID, client) {
		return nil, nil, ErrForbidden
	}
	return session, client, nil
}

// VisibleClients lists every card the account may see, newest first.
// List endpoints filter silently instead of erroring.
func (g *Guard) VisibleClients(ctx context.Context, accountID primitive.ObjectID) ([]domain.Client, error) {
	return g.clients.GetVisibleToAccount(ctx, accountID)
}

// VisibleClientIDs is VisibleClients reduced to IDs, for $in scoping of
// child-entity listings.
func (g *Guard) VisibleClientIDs(ctx context.Context, accountID primitive.ObjectID) ([]primitive.ObjectID, error) {
	clients, err := g.clients.GetVisibleToAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(clients))
	for i, c := range clients {
		ids[i] = c.ID
	}
	return ids, nil
}
