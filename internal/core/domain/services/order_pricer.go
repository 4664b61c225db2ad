package services

import (
	"errors"

	"tableorder/internal/core/domain/model/cart"
	"tableorder/internal/core/domain/model/catalog"
	"tableorder/internal/core/domain/model/kernel"
	"tableorder/internal/core/domain/model/order"
	"tableorder/internal/pkg/errs"
)

const (
	reasonNotFound = "not found"
	reasonInactive = "inactive"
)

// OrderPricer turns cart lines into order lines priced from the catalog.
//
// Business rules:
//   - Every line must reference a menu item that exists and is active
//   - The unit price is the catalog price at pricing time; the display price kept in
//     the cart is ignored
//   - Lines keep the cart order, names are taken from the catalog
//
// Example usage:
//
//	pricer := NewOrderPricer()
//	items, err := pricer.Price(c.Items(), menu)
//	if errors.Is(err, errs.ErrConflict) {
//	    // at least one item is no longer offered
//	}
type OrderPricer struct{}

func NewOrderPricer() OrderPricer {
	return OrderPricer{}
}

// Price resolves each cart line against menu. All unavailable items are reported
// together, each as an *errs.ItemUnavailableError.
func (p OrderPricer) Price(lines []cart.Item, menu map[kernel.UUID]*catalog.MenuItem) ([]order.Item, error) {
	if len(lines) == 0 {
		return nil, errs.NewValueIsRequiredError("cart items")
	}

	var (
		items       = make([]order.Item, 0, len(lines))
		unavailable []error
	)

	for _, line := range lines {
		menuItem, ok := menu[line.MenuItemID]
		if !ok || menuItem.Validate() != nil {
			unavailable = append(unavailable, errs.NewItemUnavailableError(line.MenuItemID.String(), reasonNotFound))
			continue
		}
		if !menuItem.IsActive() {
			unavailable = append(unavailable, errs.NewItemUnavailableError(line.MenuItemID.String(), reasonInactive))
			continue
		}

		item, err := order.NewItem(
			menuItem.ID(),
			menuItem.Name(),
			menuItem.Price(),
			line.Quantity,
			line.SpecialInstructions,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if len(unavailable) > 0 {
		return nil, errors.Join(unavailable...)
	}

	return items, nil
}
