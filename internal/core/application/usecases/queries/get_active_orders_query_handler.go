package queries

import (
	"context"

	"tableorder/internal/core/domain/model/order"
	"tableorder/internal/pkg/errs"

	"gorm.io/gorm"
)

// GetActiveOrdersQueryHandler reads the kitchen queue from the database.
//
// Example:
//
//	handler := NewGetActiveOrdersQueryHandler(db)
//	orders, err := handler.Handle(ctx, NewGetActiveOrdersQuery(caller))
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("%d orders in the kitchen\n", len(orders))
type GetActiveOrdersQueryHandler struct {
	db *gorm.DB
}

func NewGetActiveOrdersQueryHandler(db *gorm.DB) GetActiveOrdersQueryHandler {
	return GetActiveOrdersQueryHandler{db: db}
}

// Handle returns non-terminal orders sorted by creation time. Orders created in the
// same instant are sorted by id for a stable result.
func (h GetActiveOrdersQueryHandler) Handle(ctx context.Context, query GetActiveOrdersQuery) ([]order.Snapshot, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	caller := query.Caller()
	if !caller.CanManageOrders() {
		return nil, errs.NewForbiddenError(caller.Role.String(), "list active orders")
	}

	orders, err := loadOrders(ctx, h.db, `
		WHERE status IN ?
		ORDER BY created_at, id
	`, activeStatuses())
	if err != nil {
		return nil, errs.NewPersistenceError("list active orders", err)
	}

	return orders, nil
}
