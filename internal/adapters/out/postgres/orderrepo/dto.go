// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// An order is stored as one row in "orders" plus one row per line in "order_items";
// amounts are stored exactly as computed at submission.
package orderrepo

import (
	"time"

	"tableorder/internal/core/domain/model/kernel"
	"tableorder/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Status is stored by name and indexed for the kitchen queue query.
type OrderDTO struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TableNumber  string          `gorm:"size:32;not null"`
	CustomerName string          `gorm:"size:255;not null;default:''"`
	Notes        string          `gorm:"type:text;not null;default:''"`
	CreatedBy    string          `gorm:"size:255;not null;default:''"`
	Status       string          `gorm:"size:16;not null;index"`
	Subtotal     decimal.Decimal `gorm:"type:numeric;not null"`
	Tax          decimal.Decimal `gorm:"type:numeric;not null"`
	Total        decimal.Decimal `gorm:"type:numeric;not null"`
	CreatedAt    time.Time       `gorm:"autoCreateTime:false;not null;index"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime:false;not null"`

	Items []OrderItemDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

// OrderItemDTO is one order line. Position keeps the submission order.
type OrderItemDTO struct {
	ID         uint            `gorm:"primaryKey;autoIncrement"`
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position   int             `gorm:"not null"`
	MenuItemID uuid.UUID       `gorm:"type:uuid;not null"`
	Name       string          `gorm:"size:255;not null"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric;not null"`
	Quantity   int             `gorm:"not null"`
	Notes      string          `gorm:"type:text;not null;default:''"`
}

func (OrderItemDTO) TableName() string {
	return "order_items"
}

func fromDomain(o *order.Order) OrderDTO {
	id := o.ID().Bytes()
	details := o.Details()

	lines := o.Items()
	items := make([]OrderItemDTO, 0, len(lines))
	for i, it := range lines {
		items = append(items, OrderItemDTO{
			OrderID:    id,
			Position:   i,
			MenuItemID: it.MenuItemID().Bytes(),
			Name:       it.Name(),
			UnitPrice:  it.UnitPrice().Decimal(),
			Quantity:   it.Quantity(),
			Notes:      it.Notes(),
		})
	}

	return OrderDTO{
		ID:           id,
		TableNumber:  o.TableNumber(),
		CustomerName: details.CustomerName,
		Notes:        details.Notes,
		CreatedBy:    details.CreatedBy,
		Status:       o.Status().String(),
		Subtotal:     o.Subtotal().Decimal(),
		Tax:          o.Tax().Decimal(),
		Total:        o.Total().Decimal(),
		CreatedAt:    o.CreatedAt(),
		UpdatedAt:    o.UpdatedAt(),
		Items:        items,
	}
}

// toDomain rebuilds the aggregate with RestoreOrder, so stored amounts are kept as is.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(dto.Items))
	for _, line := range dto.Items {
		item, itemErr := itemToDomain(line)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	var totals order.Totals
	if totals.Subtotal, err = kernel.NewMoney(dto.Subtotal); err != nil {
		return nil, err
	}
	if totals.Tax, err = kernel.NewMoney(dto.Tax); err != nil {
		return nil, err
	}
	if totals.Total, err = kernel.NewMoney(dto.Total); err != nil {
		return nil, err
	}

	return order.RestoreOrder(
		id,
		dto.TableNumber,
		order.Details{
			CustomerName: dto.CustomerName,
			Notes:        dto.Notes,
			CreatedBy:    dto.CreatedBy,
		},
		status,
		items,
		totals,
		dto.CreatedAt.UTC(),
		dto.UpdatedAt.UTC(),
	)
}

func itemToDomain(dto OrderItemDTO) (order.Item, error) {
	menuItemID, err := kernel.UUIDFromBytes(dto.MenuItemID[:])
	if err != nil {
		return order.Item{}, err
	}

	price, err := kernel.NewMoney(dto.UnitPrice)
	if err != nil {
		return order.Item{}, err
	}

	return order.NewItem(menuItemID, dto.Name, price, dto.Quantity, dto.Notes)
}
