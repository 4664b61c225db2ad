// Package queries contains read-only operations served straight from the database.
package queries

import (
	"context"

	"tableorder/internal/core/domain/model/kernel"
	"tableorder/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const selectOrders = `
	SELECT
		id,
		table_number,
		customer_name,
		notes,
		created_by,
		status,
		subtotal,
		tax,
		total,
		created_at,
		updated_at
	FROM orders
`

// loadOrders runs selectOrders with the given tail (WHERE/ORDER BY) and attaches
// the lines of every returned order.
func loadOrders(ctx context.Context, db *gorm.DB, tail string, args ...any) ([]order.Snapshot, error) {
	rows, err := db.WithContext(ctx).Raw(selectOrders+tail, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]order.Snapshot, 0)
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var (
			id                   uuid.UUID
			status               string
			subtotal, tax, total decimal.Decimal
			s                    order.Snapshot
		)
		if err = rows.Scan(
			&id,
			&s.TableNumber,
			&s.CustomerName,
			&s.Notes,
			&s.CreatedBy,
			&status,
			&subtotal,
			&tax,
			&total,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, err
		}

		if s.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if s.Status, err = order.ParseStatus(status); err != nil {
			return nil, err
		}
		if s.Subtotal, err = kernel.NewMoney(subtotal); err != nil {
			return nil, err
		}
		if s.Tax, err = kernel.NewMoney(tax); err != nil {
			return nil, err
		}
		if s.Total, err = kernel.NewMoney(total); err != nil {
			return nil, err
		}
		s.CreatedAt = s.CreatedAt.UTC()
		s.UpdatedAt = s.UpdatedAt.UTC()
		s.Items = make([]order.ItemSnapshot, 0)

		index[id] = len(orders)
		orders = append(orders, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if len(orders) == 0 {
		return orders, nil
	}

	if err = attachItems(ctx, db, orders, index); err != nil {
		return nil, err
	}
	return orders, nil
}

func attachItems(ctx context.Context, db *gorm.DB, orders []order.Snapshot, index map[uuid.UUID]int) error {
	ids := make([]uuid.UUID, 0, len(index))
	for id := range index {
		ids = append(ids, id)
	}

	rows, err := db.WithContext(ctx).Raw(`
		SELECT
			order_id,
			menu_item_id,
			name,
			unit_price,
			quantity,
			notes
		FROM order_items
		WHERE order_id IN ?
		ORDER BY order_id, position
	`, ids).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID, menuItemID uuid.UUID
			unitPrice           decimal.Decimal
			item                order.ItemSnapshot
		)
		if err = rows.Scan(&orderID, &menuItemID, &item.Name, &unitPrice, &item.Quantity, &item.Notes); err != nil {
			return err
		}

		if item.MenuItemID, err = kernel.UUIDFromBytes(menuItemID[:]); err != nil {
			return err
		}
		if item.UnitPrice, err = kernel.NewMoney(unitPrice); err != nil {
			return err
		}

		i, ok := index[orderID]
		if !ok {
			continue
		}
		orders[i].Items = append(orders[i].Items, item)
	}

	return rows.Err()
}

// activeStatuses are the statuses a kitchen display shows.
func activeStatuses() []string {
	return []string{order.Pending.String(), order.InProgress.String(), order.Ready.String()}
}
