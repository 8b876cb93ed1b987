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

const notificationCollectionName = "notifications"

// mongoNotificationRepository implements repository.NotificationRepository.
type mongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new instance.
func NewMongoNotificationRepository(db *mongo.Database) repository.NotificationRepository {
	return &mongoNotificationRepository{
		collection: db.Collection(notificationCollectionName),
	}
}

// Create inserts a new notification row.
func (r *mongoNotificationRepository) Create(ctx context.Context, n *domain.Notification) (primitive.ObjectID, error) {
	if n.RecipientID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("notification recipient ID is required")
	}

	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, n)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByRecipient lists an account's notifications, newest first.
func (r *mongoNotificationRepository) GetByRecipient(ctx context.Context, recipientID primitive.ObjectID) ([]domain.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"recipientId": recipientID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	notifications := []domain.Notification{}
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// CountUnread returns the badge count for an account.
func (r *mongoNotificationRepository) CountUnread(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"recipientId": recipientID, "read": false})
}

// MarkRead flags one notification. The recipient filter keeps an account
// from touching someone else's rows.
func (r *mongoNotificationRepository) MarkRead(ctx context.Context, id, recipientID primitive.ObjectID) error {
	filter := bson.M{"_id": id, "recipientId": recipientID}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// MarkAllRead flags every unread notification of an account.
func (r *mongoNotificationRepository) MarkAllRead(ctx context.Context, recipientID primitive.ObjectID) error {
	filter := bson.M{"recipientId": recipientID, "read": false}
	_, err := r.collection.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"read": true}})
	return err
}

// DeleteByRecipient removes all rows addressed to an account (cascade path).
func (r *mongoNotificationRepository) DeleteByRecipient(ctx context.Context, recipientID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"recipientId": recipientID})
	return err
}

// EnsureNotificationIndexes creates necessary indexes for the notifications collection.
func EnsureNotificationIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "recipientId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "recipientId", Value: 1}, {Key: "read", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
