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

const clientCollectionName = "clients"

// mongoClientRepository implements repository.ClientRepository using MongoDB.
type mongoClientRepository struct {
	collection *mongo.Collection
}

// NewMongoClientRepository creates a new instance of mongoClientRepository.
func NewMongoClientRepository(db *mongo.Database) repository.ClientRepository {
	return &mongoClientRepository{
		collection: db.Collection(clientCollectionName),
	}
}

// Create inserts a new client card.
func (r *mongoClientRepository) Create(ctx context.Context, client *domain.Client) (primitive.ObjectID, error) {
	if client.CoachID == primitive.NilObjectID || client.Name == "" {
		return primitive.NilObjectID, errors.New("client coach ID and name are required")
	}

	client.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	client.CreatedAt = now
	client.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, client)
	if err != nil {
		if isDuplicate(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a client card by its ObjectID.
func (r *mongoClientRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Client, error) {
	var client domain.Client
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&client)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}

// GetVisibleToAccount returns all cards the account may see: cards it
// coaches plus the card it is linked to as a client. The $or filter gives
// the union in one scan, so no deduplication pass is needed.
func (r *mongoClientRepository) GetVisibleToAccount(ctx context.Context, accountID primitive.ObjectID) ([]domain.Client, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"coachId": accountID},
		bson.M{"accountId": accountID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	clients := []domain.Client{}
	if err = cursor.All(ctx, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

// Update replaces the mutable fields of a card.
func (r *mongoClientRepository) Update(ctx context.Context, client *domain.Client) error {
	update := bson.M{"$set": bson.M{
		"name":          client.Name,
		"photoKey":      client.PhotoKey,
		"categorySlugs": client.CategorySlugs,
		"tagSlugs":      client.TagSlugs,
		"accountId":     client.AccountID,
		"active":        client.Active,
		"updatedAt":     time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": client.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a card. Dependent rows (sessions, comments, attributes,
// the linked account) are removed by the service-level cascade.
func (r *mongoClientRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureClientIndexes creates necessary indexes for the clients collection.
func EnsureClientIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			// One card per login account. Sparse: unlinked cards have no accountId.
			Keys:    bson.D{{Key: "accountId", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
