// Package menurepo stores the menu items the ordering core prices carts against.
package menurepo

import (
	"tableorder/internal/core/domain/model/catalog"
	"tableorder/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MenuItemDTO represents the database structure of a menu item.
type MenuItemDTO struct {
	ID     uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name   string          `gorm:"size:255;not null"`
	Price  decimal.Decimal `gorm:"type:numeric;not null"`
	Active bool            `gorm:"not null;default:true"`
}

func (MenuItemDTO) TableName() string {
	return "menu_items"
}

func fromDomain(item *catalog.MenuItem) MenuItemDTO {
	return MenuItemDTO{
		ID:     item.ID().Bytes(),
		Name:   item.Name(),
		Price:  item.Price().Decimal(),
		Active: item.IsActive(),
	}
}

func toDomain(dto MenuItemDTO) (*catalog.MenuItem, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	price, err := kernel.NewMoney(dto.Price)
	if err != nil {
		return nil, err
	}

	return catalog.NewMenuItem(id, dto.Name, price, dto.Active)
}
