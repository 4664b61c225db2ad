package cart

import (
	"fmt"
	"slices"

	"tableorder/internal/core/domain/model/kernel"
	"tableorder/internal/pkg/errs"
)

// Selection is what a diner picks from the menu before choosing a quantity.
// UnitPrice is a display snapshot only; the order service re-reads the catalog price.
type Selection struct {
	MenuItemID          kernel.UUID
	Name                string
	UnitPrice           kernel.Money
	SpecialInstructions string
}

// Item is one line of the cart.
type Item struct {
	MenuItemID          kernel.UUID
	Name                string
	UnitPrice           kernel.Money
	Quantity            int
	SpecialInstructions string
}

// Totals is an informational preview of the cart. It is not used for billing.
type Totals struct {
	// Lines is the number of distinct menu items.
	Lines int
	// ItemCount is the sum of all quantities.
	ItemCount int
	// PricePreview is the sum of display price times quantity.
	PricePreview kernel.Money
}

// Cart is the aggregate that accumulates a diner's selections before submission.
//
// Cart follows these invariants:
//   - At most one line per menu item; adding an existing item merges quantities
//   - Every line has a quantity of at least 1, otherwise the line is absent
//   - Line order is the order in which items were first added
//
// A Cart belongs to a single ordering session and is not safe for concurrent use.
type Cart struct {
	items []Item
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{items: make([]Item, 0)}
}

// AddItem adds quantity units of the selection. If the menu item is already in the
// cart its quantity is increased and the existing special instructions are kept.
//
// Returns a validation error when quantity is not positive or the selection has no
// menu item id; the cart is left unchanged in that case.
func (c *Cart) AddItem(selection Selection, quantity int) error {
	if err := selection.MenuItemID.Validate(); err != nil {
		return err
	}
	if err := validateQuantity(quantity); err != nil {
		return err
	}

	if i := c.indexOf(selection.MenuItemID); i >= 0 {
		c.items[i].Quantity += quantity
		return nil
	}

	c.items = append(c.items, Item{
		MenuItemID:          selection.MenuItemID,
		Name:                selection.Name,
		UnitPrice:           selection.UnitPrice,
		Quantity:            quantity,
		SpecialInstructions: selection.SpecialInstructions,
	})
	return nil
}

// RemoveItem drops the line for menuItemID. Removing an absent item is a no-op.
func (c *Cart) RemoveItem(menuItemID kernel.UUID) {
	c.items = slices.DeleteFunc(c.items, func(it Item) bool {
		return it.MenuItemID.IsEqual(menuItemID)
	})
}

// UpdateQuantity overwrites the quantity of an existing line.
// A quantity of zero or less removes the line. Unknown items are ignored.
func (c *Cart) UpdateQuantity(menuItemID kernel.UUID, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(menuItemID)
		return
	}

	if i := c.indexOf(menuItemID); i >= 0 {
		c.items[i].Quantity = quantity
	}
}

// UpdateSpecialInstructions replaces the free-text note of an existing line.
func (c *Cart) UpdateSpecialInstructions(menuItemID kernel.UUID, instructions string) {
	if i := c.indexOf(menuItemID); i >= 0 {
		c.items[i].SpecialInstructions = instructions
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.items = c.items[:0]
}

// ItemQuantity returns the quantity of menuItemID, or 0 when it is not in the cart.
func (c *Cart) ItemQuantity(menuItemID kernel.UUID) int {
	if i := c.indexOf(menuItemID); i >= 0 {
		return c.items[i].Quantity
	}
	return 0
}

// Items returns a copy of the cart lines; it is the snapshot handed to order submission.
func (c *Cart) Items() []Item {
	return slices.Clone(c.items)
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Totals computes the item count and price preview.
func (c *Cart) Totals() Totals {
	totals := Totals{Lines: len(c.items), PricePreview: kernel.ZeroMoney()}
	for _, it := range c.items {
		totals.ItemCount += it.Quantity
		totals.PricePreview = totals.PricePreview.Add(it.UnitPrice.Times(it.Quantity))
	}
	return totals
}

func (c *Cart) indexOf(menuItemID kernel.UUID) int {
	return slices.IndexFunc(c.items, func(it Item) bool {
		return it.MenuItemID.IsEqual(menuItemID)
	})
}

func validateQuantity(quantity int) error {
	if quantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause(
			"quantity",
			fmt.Errorf("%d is not a positive integer", quantity),
		)
	}
	return nil
}
