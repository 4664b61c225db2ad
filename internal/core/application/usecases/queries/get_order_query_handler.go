package queries

import (
	"context"

	"tableorder/internal/core/domain/model/order"
	"tableorder/internal/pkg/errs"

	"gorm.io/gorm"
)

// GetOrderQueryHandler returns the stored state of an order: its locked-in lines
// and amounts and its current status.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle returns *errs.ObjectNotFoundError when no order has the id.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (order.Snapshot, error) {
	if err := query.Validate(); err != nil {
		return order.Snapshot{}, err
	}

	id := query.OrderID()
	orders, err := loadOrders(ctx, h.db, "WHERE id = ?", id.Bytes())
	if err != nil {
		return order.Snapshot{}, errs.NewPersistenceError("get order", err)
	}
	if len(orders) == 0 {
		return order.Snapshot{}, errs.NewObjectNotFoundError("order", id.String())
	}

	return orders[0], nil
}
