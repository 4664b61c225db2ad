package ports

import (
	"context"
	"errors"
	"time"

	"tableorder/internal/core/domain/model/kernel"
)

// ErrIdempotencyKeyInFlight is returned by TryLock when another submission with the
// same key is still running.
var ErrIdempotencyKeyInFlight = errors.New("idempotency key is already being processed")

// IdempotencyStore remembers which order a client-supplied submission key produced.
//
// A submission with a key runs as:
//
//	token, ok, _ := store.TryLock(ctx, key, lockTTL)
//	if !ok {
//	    return ErrIdempotencyKeyInFlight
//	}
//	defer store.Release(ctx, key, token)
//	if id, ok, _ := store.Recall(ctx, key); ok {
//	    return load(id)
//	}
//	... submit ...
//	store.Remember(ctx, key, orderID, ttl)
//
// Callers may also Recall before TryLock so replays skip the lock. The lock TTL only
// has to outlive one request; the remembered mapping lives much longer.
type IdempotencyStore interface {
	// TryLock marks key as in flight and returns the token that owns the mark.
	// It returns false if the key is already locked.
	TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)

	// Release drops the in-flight mark if it is still owned by token.
	Release(ctx context.Context, key, token string) error

	// Remember maps key to the order it produced.
	Remember(ctx context.Context, key string, orderID kernel.UUID, ttl time.Duration) error

	// Recall returns the order previously produced for key, if any.
	Recall(ctx context.Context, key string) (kernel.UUID, bool, error)
}
