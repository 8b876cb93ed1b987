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

const clientAttributeCollectionName = "client_attributes"

// mongoClientAttributeRepository stores the EAV rows of client cards.
type mongoClientAttributeRepository struct {
	collection *mongo.Collection
}

// NewMongoClientAttributeRepository creates a new instance.
func NewMongoClientAttributeRepository(db *mongo.Database) repository.ClientAttributeRepository {
	return &mongoClientAttributeRepository{
		collection: db.Collection(clientAttributeCollectionName),
	}
}

// Create inserts one EAV row. The compound unique index rejects a second
// row for the same (client, attribute) pair with ErrDuplicate.
func (r *mongoClientAttributeRepository) Create(ctx context.Context, attr *domain.ClientAttribute) (primitive.ObjectID, error) {
	if attr.ClientID == primitive.NilObjectID || attr.AttributeSlug == "" {
		return primitive.NilObjectID, errors.New("client ID and attribute slug are required")
	}

	attr.ID = primitive.NewObjectID()
	attr.UpdatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, attr)
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

// Update overwrites the value of an existing row.
func (r *mongoClientAttributeRepository) Update(ctx context.Context, attr *domain.ClientAttribute) error {
	filter := bson.M{"clientId": attr.ClientID, "attributeSlug": attr.AttributeSlug}
	update := bson.M{"$set": bson.M{
		"value":     attr.Value,
		"updatedAt": time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// GetByClientID lists all EAV rows of one card.
func (r *mongoClientAttributeRepository) GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.ClientAttribute, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"clientId": clientID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	attrs := []domain.ClientAttribute{}
	if err = cursor.All(ctx, &attrs); err != nil {
		return nil, err
	}
	return attrs, nil
}

// DeleteByClientID removes all rows of one card (cascade path).
func (r *mongoClientAttributeRepository) DeleteByClientID(ctx context.Context, clientID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"clientId": clientID})
	return err
}

// EnsureClientAttributeIndexes creates the compound unique index backing
// the one-row-per-(client, attribute) invariant.
func EnsureClientAttributeIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "attributeSlug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
