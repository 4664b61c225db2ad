// Package catalog holds the read-only view of menu items the ordering core needs.
// Categories, descriptions and images are managed elsewhere.
package catalog

import (
	"errors"
	"strings"

	"tableorder/internal/core/domain/model/kernel"
	"tableorder/internal/pkg/errs"
)

var ErrMenuItemIsNotConstructed = errors.New("MenuItem must be created via NewMenuItem constructor")

// MenuItem is a menu entry as seen at lookup time: its current price and whether
// the kitchen currently offers it.
type MenuItem struct {
	id     kernel.UUID
	name   string
	price  kernel.Money
	active bool

	isConstructed bool
}

func NewMenuItem(id kernel.UUID, name string, price kernel.Money, active bool) (*MenuItem, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.NewValueIsRequiredError("menu item name")
	}

	return &MenuItem{
		id:            id,
		name:          name,
		price:         price,
		active:        active,
		isConstructed: true,
	}, nil
}

func (m *MenuItem) Validate() error {
	if m == nil || !m.isConstructed {
		return ErrMenuItemIsNotConstructed
	}
	return nil
}

func (m *MenuItem) ID() kernel.UUID {
	return m.id
}

func (m *MenuItem) Name() string {
	return m.name
}

// Price is the current catalog price, authoritative at submission time.
func (m *MenuItem) Price() kernel.Money {
	return m.price
}

func (m *MenuItem) IsActive() bool {
	return m.active
}
