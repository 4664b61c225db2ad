// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management, and persistence.
package commands

import (
	"context"

	"tableorder/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// MenuCatalogFactory provides access to the catalog within a transaction.
	MenuCatalogFactory interface {
		MenuCatalog() ports.MenuCatalog
	}

	// SubmissionUoW is the transaction of an order submission: catalog reads and
	// the order insert commit or roll back together.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   item, err := uow.MenuCatalog().GetMenuItem(ctx, id)
	//   // ... price the cart
	//   err = uow.OrderRepository().Add(ctx, o)
	//
	//   err = uow.Commit(ctx)
	SubmissionUoW interface {
		TxManager
		OrderRepoFactory
		MenuCatalogFactory
	}

	// SubmissionUoWFactory creates new submission unit of work instances.
	SubmissionUoWFactory interface {
		Create() SubmissionUoW
	}

	// OrderUoW manages transactions for order-only operations such as status changes.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// OrderLocker serializes status changes of one order inside the process.
	OrderLocker interface {
		Lock(ctx context.Context, key string) (func(), error)
	}
)
