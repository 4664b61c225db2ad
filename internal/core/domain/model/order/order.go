package order

import (
	"errors"
	"slices"
	"strings"
	"time"

	"tableorder/internal/core/domain/model/kernel"
	"tableorder/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")
)

// Details carries the optional, descriptive fields of an order.
type Details struct {
	CustomerName string
	Notes        string
	// CreatedBy is the user id of the caller that submitted the order, if known.
	CreatedBy string
}

// Order is the aggregate root for a submitted cart. Its lines and amounts are fixed
// at creation; afterwards only the status (and updatedAt) may change.
//
// Order follows these invariants:
//   - Must have a valid unique identifier and a non-blank table number
//   - Must have at least one line
//   - total == subtotal + tax, tax == round(subtotal * rate), subtotal == round(sum of lines)
//   - Status changes follow the Status transition table
//   - Can only be created through NewOrder (or RestoreOrder from storage)
type Order struct {
	id          kernel.UUID
	tableNumber string
	details     Details
	status      Status
	items       []Item
	totals      Totals
	createdAt   time.Time
	updatedAt   time.Time

	isConstructed bool
}

// NewOrder creates a PENDING order and prices it with policy.
//
// Parameters:
//   - id: Unique identifier for the order (must be valid UUID)
//   - tableNumber: Table the order is served to (must not be blank)
//   - items: Order lines with their locked-in unit prices (must not be empty)
//   - policy: Tax rate and rounding used to derive subtotal, tax and total
//   - details: Optional customer name, notes and creator
//   - now: Creation time, also used as the first updatedAt
//
// Returns a validation error joining every invalid parameter.
func NewOrder(
	id kernel.UUID,
	tableNumber string,
	items []Item,
	policy TaxPolicy,
	details Details,
	now time.Time,
) (*Order, error) {
	o := &Order{
		status:        Pending,
		details:       details,
		createdAt:     now.UTC(),
		updatedAt:     now.UTC(),
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setTableNumber(tableNumber),
		o.setItems(items),
	); err != nil {
		return nil, err
	}

	o.totals = policy.Apply(o.items)
	return o, nil
}

// RestoreOrder rebuilds an order read from storage. Amounts are taken as stored and
// never recomputed, so later catalog or tax changes do not affect existing orders.
func RestoreOrder(
	id kernel.UUID,
	tableNumber string,
	details Details,
	status Status,
	items []Item,
	totals Totals,
	createdAt time.Time,
	updatedAt time.Time,
) (*Order, error) {
	o := &Order{
		details:       details,
		totals:        totals,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setTableNumber(tableNumber),
		o.setItems(items),
		status.Validate(),
	); err != nil {
		return nil, err
	}

	o.status = status
	return o, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}

	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) TableNumber() string {
	return o.tableNumber
}

func (o *Order) Details() Details {
	return o.details
}

func (o *Order) Status() Status {
	return o.status
}

// Items returns a copy of the order lines in submission order.
func (o *Order) Items() []Item {
	return slices.Clone(o.items)
}

func (o *Order) Subtotal() kernel.Money {
	return o.totals.Subtotal
}

func (o *Order) Tax() kernel.Money {
	return o.totals.Tax
}

func (o *Order) Total() kernel.Money {
	return o.totals.Total
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

// TransitionTo moves the order to target if the transition table allows it and
// stamps updatedAt. It returns the status the order had before the change.
//
// Example:
//
//	previous, err := o.TransitionTo(order.InProgress, time.Now())
//	if errors.Is(err, errs.ErrInvalidTransition) {
//	    // the order is not PENDING
//	}
func (o *Order) TransitionTo(target Status, at time.Time) (Status, error) {
	previous := o.status

	next, err := previous.TransitionTo(target)
	if err != nil {
		return previous, err
	}

	o.status = next
	o.updatedAt = at.UTC()
	return previous, nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setTableNumber(tableNumber string) error {
	tableNumber = strings.TrimSpace(tableNumber)
	if tableNumber == "" {
		return errs.NewValueIsRequiredError("table number")
	}
	o.tableNumber = tableNumber
	return nil
}

func (o *Order) setItems(items []Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("order items")
	}
	o.items = slices.Clone(items)
	return nil
}
