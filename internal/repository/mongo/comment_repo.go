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

const commentCollectionName = "session_comments"

// mongoCommentRepository implements repository.CommentRepository using MongoDB.
type mongoCommentRepository struct {
	collection *mongo.Collection
}

// NewMongoCommentRepository creates a new instance of mongoCommentRepository.
func NewMongoCommentRepository(db *mongo.Database) repository.CommentRepository {
	return &mongoCommentRepository{
		collection: db.Collection(commentCollectionName),
	}
}

// Create inserts a new chat message.
func (r *mongoCommentRepository) Create(ctx context.Context, comment *domain.Comment) (primitive.ObjectID, error) {
	if comment.SessionID == primitive.NilObjectID || comment.AuthorID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("comment session ID and author ID are required")
	}

	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, comment)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single chat message.
func (r *mongoCommentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Comment, error) {
	var comment domain.Comment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &comment, nil
}

// GetBySessionID returns the thread oldest first (chat order).
func (r *mongoCommentRepository) GetBySessionID(ctx context.Context, sessionID primitive.ObjectID) ([]domain.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"sessionId": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	comments := []domain.Comment{}
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// MarkReadExceptAuthor flags the counterpart's messages in one thread.
func (r *mongoCommentRepository) MarkReadExceptAuthor(ctx context.Context, sessionID, authorID primitive.ObjectID) error {
	filter := bson.M{
		"sessionId": sessionID,
		"authorId":  bson.M{"$ne": authorID},
		"read":      false,
	}
	_, err := r.collection.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"read": true}})
	return err
}

// DeleteBySessionIDs removes the threads of the given sessions (cascade path).
func (r *mongoCommentRepository) DeleteBySessionIDs(ctx context.Context, sessionIDs []primitive.ObjectID) error {
	if len(sessionIDs) == 0 {
		return nil
	}
	_, err := r.collection.DeleteMany(ctx, bson.M{"sessionId": bson.M{"$in": sessionIDs}})
	return err
}

// EnsureCommentIndexes creates necessary indexes for the comments collection.
func EnsureCommentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sessionId", Value: 1}, {Key: "createdAt", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
