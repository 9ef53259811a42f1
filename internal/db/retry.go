package db

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// Operation is a function that performs a store write and returns an error if it fails.
type Operation func() error

// IsRetryable decides whether a failed operation may be attempted again.
type IsRetryable func(err error) bool

const DefaultMaxRetries = 3

// Try runs op with the default retry policy: only duplicate key errors are
// retried. These come from concurrent upserts racing on a unique index, where
// a second attempt turns into an update. Other failures surface immediately
// so a form is never written twice.
func Try(ctx context.Context, op Operation) error {
	return WithRetries(ctx, op, DefaultMaxRetries, IsMongoDuplicateKeyError)
}

// WithRetries executes op up to maxRetries extra times while retryable
// reports true, backing off a little between attempts.
func WithRetries(ctx context.Context, op Operation, maxRetries int, retryable IsRetryable) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		if attempt == maxRetries || !retryable(err) {
			return err
		}

		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(time.Duration(50*(attempt+1)) * time.Millisecond):
		}
	}
	return err
}

// IsMongoDuplicateKeyError checks if an error from MongoDB is a duplicate key error (code 11000).
func IsMongoDuplicateKeyError(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
