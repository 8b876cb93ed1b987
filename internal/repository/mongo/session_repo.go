package mongo

import (
	"context"
	"errors"
	"time"

	"fitcabinet/coach-crm/internal/domain"
	"fitcabinet/coach-crm/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const sessionCollectionName = "sessions"

// mongoSessionRepository implements repository.SessionRepository using MongoDB.
type mongoSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionRepository creates a new instance of mongoSessionRepository.
func NewMongoSessionRepository(db *mongo.Database) repository.SessionRepository {
	return &mongoSessionRepository{
		collection: db.Collection(sessionCollectionName),
	}
}

// Create inserts a new session.
func (r *mongoSessionRepository) Create(ctx context.Context, session *domain.Session) (primitive.ObjectID, error) {
	if session.ClientID == primitive.NilObjectID || session.Title == "" {
		return primitive.NilObjectID, errors.New("session client ID and title are required")
	}
	if session.Status == "" {
		session.Status = domain.StatusPlanned
	}

	session.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a session by its ObjectID.
func (r *mongoSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error) {
	var session domain.Session
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// GetByClientIDs lists sessions belonging to the given cards, newest
// scheduled first. The caller has already resolved which cards are
// visible, so this is a plain $in query.
func (r *mongoSessionRepository) GetByClientIDs(ctx context.Context, clientIDs []primitive.ObjectID, filter repository.SessionFilter) ([]domain.Session, error) {
	if len(clientIDs) == 0 {
		return []domain.Session{}, nil
	}

	query := bson.M{"clientId": bson.M{"$in": clientIDs}}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.From != nil || filter.To != nil {
		window := bson.M{}
		if filter.From != nil {
			window["$gte"] = *filter.From
		}
		if filter.To != nil {
			window["$lte"] = *filter.To
		}
		query["scheduledAt"] = window
	}

	opts := options.Find().SetSort(bson.D{{Key: "scheduledAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	sessions := []domain.Session{}
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Update replaces the mutable fields of a session.
func (r *mongoSessionRepository) Update(ctx context.Context, session *domain.Session) error {
	update := bson.M{"$set": bson.M{
		"title":          session.Title,
		"description":    session.Description,
		"clientFeedback": session.ClientFeedback,
		"attachmentKey":  session.AttachmentKey,
		"scheduledAt":    session.ScheduledAt,
		"status":         session.Status,
		"updatedAt":      time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": session.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByClientID removes all sessions of one card (cascade path).
func (r *mongoSessionRepository) DeleteByClientID(ctx context.Context, clientID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"clientId": clientID})
	return err
}

// EnsureSessionIndexes creates necessary indexes for the sessions collection.
func EnsureSessionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "scheduledAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
