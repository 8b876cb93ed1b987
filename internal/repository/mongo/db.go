package mongo

import (
	"context"
	"time"

	"fitcabinet/coach-crm/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI.
// It returns the mongo.Client which can be used to access databases and collections.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Ping the primary node to verify the connection. The initial connect
	// can succeed while the server is unresponsive.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// txnRunner implements repository.TransactionRunner on top of mongo
// sessions. Requires the deployment to be a replica set (transactions are
// unavailable on a standalone server).
type txnRunner struct {
	client *mongo.Client
}

// NewTransactionRunner returns a TransactionRunner bound to the client.
func NewTransactionRunner(client *mongo.Client) repository.TransactionRunner {
	return &txnRunner{client: client}
}

// WithTransaction runs fn inside one multi-document transaction. The
// session is carried in the context fn receives, so repository calls made
// with that context automatically join the transaction.
func (r *txnRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// isDuplicate maps the driver's duplicate-key error onto the repository
// sentinel so services never see driver types.
func isDuplicate(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
