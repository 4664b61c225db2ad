package ports

import (
	"context"

	"tableorder/internal/core/domain/model/catalog"
	"tableorder/internal/core/domain/model/kernel"
)

// MenuCatalog is the read-only catalog lookup used when pricing an order.
type MenuCatalog interface {
	// GetMenuItem returns the current state of a menu item, including inactive ones.
	// Returns *errs.ObjectNotFoundError if the item does not exist.
	GetMenuItem(ctx context.Context, id kernel.UUID) (*catalog.MenuItem, error)
}
