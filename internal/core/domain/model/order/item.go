package order

import (
	"fmt"

	"tableorder/internal/core/domain/model/kernel"
	"tableorder/internal/pkg/errs"
)

// Item is one line of a submitted order. The unit price is the catalog price at
// submission time and is never recomputed afterwards.
type Item struct {
	menuItemID kernel.UUID
	name       string
	unitPrice  kernel.Money
	quantity   int
	notes      string
}

// NewItem validates and builds an order line.
func NewItem(menuItemID kernel.UUID, name string, unitPrice kernel.Money, quantity int, notes string) (Item, error) {
	if err := menuItemID.Validate(); err != nil {
		return Item{}, err
	}
	if quantity <= 0 {
		return Item{}, errs.NewValueIsInvalidErrorWithCause(
			"quantity",
			fmt.Errorf("%d is not a positive integer", quantity),
		)
	}

	return Item{
		menuItemID: menuItemID,
		name:       name,
		unitPrice:  unitPrice,
		quantity:   quantity,
		notes:      notes,
	}, nil
}

func (i Item) MenuItemID() kernel.UUID {
	return i.menuItemID
}

// Name is the catalog name at submission time.
func (i Item) Name() string {
	return i.name
}

func (i Item) UnitPrice() kernel.Money {
	return i.unitPrice
}

func (i Item) Quantity() int {
	return i.quantity
}

func (i Item) Notes() string {
	return i.notes
}

// LineTotal is unit price times quantity, unrounded.
func (i Item) LineTotal() kernel.Money {
	return i.unitPrice.Times(i.quantity)
}
