package postgres

import (
	"fmt"

	"tableorder/internal/adapters/out/postgres/menurepo"
	"tableorder/internal/adapters/out/postgres/orderrepo"

	"gorm.io/gorm"
)

// Migrate creates or updates the orders, order_items and menu_items tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&menurepo.MenuItemDTO{},
		&orderrepo.OrderDTO{},
		&orderrepo.OrderItemDTO{},
	); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
