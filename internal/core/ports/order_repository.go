// Package ports defines the contracts between the ordering core and its
// infrastructure: storage, catalog lookup, event publication and idempotency.
package ports

import (
	"context"
	"errors"

	"tableorder/internal/core/domain/model/kernel"
	"tableorder/internal/core/domain/model/order"
)

// ErrConcurrentUpdate is returned by UpdateStatus when the stored status no longer
// matches the expected one.
var ErrConcurrentUpdate = errors.New("order status changed concurrently")

// OrderRepository defines the persistence contract for order aggregates.
// Orders are never deleted and their lines never change, so the only update is a
// status change.
type OrderRepository interface {
	// Add persists a new order and all of its lines.
	Add(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order with its lines. Returns *errs.ObjectNotFoundError if
	// no order has the given id.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// UpdateStatus writes the aggregate's current status and updatedAt, but only if
	// the stored status still equals expected (compare-and-set).
	//
	// Example:
	//
	//	previous, _ := o.TransitionTo(order.Ready, now)
	//	err := repo.UpdateStatus(ctx, o, previous)
	//	if errors.Is(err, ports.ErrConcurrentUpdate) {
	//	    // someone else moved the order first
	//	}
	UpdateStatus(ctx context.Context, aggregate *order.Order, expected order.Status) error
}
