package mongodb

import (
	"context"

	"github.com/spinpointhq/spinpoint-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// Compile-time check to ensure TxRunner implements the interface
var _ repositories.TxRunner = (*TxRunner)(nil)

// TxRunner runs callbacks inside a MongoDB multi-document transaction.
// Collection operations pick up the session from the callback context,
// so repositories stay unaware of transaction boundaries.
type TxRunner struct {
	client *mongo.Client
}

// NewTxRunner creates a new TxRunner
func NewTxRunner(client *mongo.Client) *TxRunner {
	return &TxRunner{client: client}
}

// WithinTransaction executes fn with snapshot reads and majority writes.
// The driver retries transient transaction errors internally; a non-nil
// return means the transaction aborted and no write took effect.
func (t *TxRunner) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	}, txnOpts)
	return err
}
