package commands

import (
	"errors"
	"slices"
	"strings"

	"tableorder/internal/core/domain/model/cart"
	"tableorder/internal/core/domain/model/identity"
	"tableorder/internal/pkg/errs"
	"tableorder/internal/pkg/guard"
)

var ErrSubmitOrderCommandIsNotConstructed = errors.New(
	"SubmitOrderCommand must be created via NewSubmitOrderCommand constructor",
)

// SubmitOrderCommand asks to turn a cart into an order for a table.
//
// Example:
//
//	cmd, err := NewSubmitOrderCommand(c.Items(), "12", caller)
//	if err != nil {
//	    return fmt.Errorf("invalid submission: %w", err)
//	}
//	cmd = cmd.WithCustomer("Ann", "no onions").WithIdempotencyKey(key)
//
//	o, err := handler.Handle(ctx, cmd)
type SubmitOrderCommand struct { //nolint:recvcheck //using for validation
	lines          []cart.Item
	tableNumber    string
	caller         identity.Caller
	customerName   string
	notes          string
	idempotencyKey string

	guard guard.ConstructorGuard
}

// NewSubmitOrderCommand validates that the cart has lines and the table number is
// not blank. Every line must have a positive quantity.
func NewSubmitOrderCommand(lines []cart.Item, tableNumber string, caller identity.Caller) (SubmitOrderCommand, error) {
	cmd := SubmitOrderCommand{
		caller: caller,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setLines(lines),
		cmd.setTableNumber(tableNumber),
	); err != nil {
		return SubmitOrderCommand{}, err
	}

	return cmd, nil
}

// WithCustomer sets the optional customer name and order-level note.
func (c SubmitOrderCommand) WithCustomer(name, notes string) SubmitOrderCommand {
	c.customerName = strings.TrimSpace(name)
	c.notes = strings.TrimSpace(notes)
	return c
}

// WithIdempotencyKey makes retries of the same submission return the first order.
func (c SubmitOrderCommand) WithIdempotencyKey(key string) SubmitOrderCommand {
	c.idempotencyKey = strings.TrimSpace(key)
	return c
}

// Validate ensures the command was created through the constructor.
func (c SubmitOrderCommand) Validate() error {
	return c.guard.Validate(ErrSubmitOrderCommandIsNotConstructed)
}

// Lines returns a copy of the cart lines.
func (c SubmitOrderCommand) Lines() []cart.Item {
	return slices.Clone(c.lines)
}

func (c SubmitOrderCommand) TableNumber() string {
	return c.tableNumber
}

func (c SubmitOrderCommand) Caller() identity.Caller {
	return c.caller
}

func (c SubmitOrderCommand) CustomerName() string {
	return c.customerName
}

func (c SubmitOrderCommand) Notes() string {
	return c.notes
}

func (c SubmitOrderCommand) IdempotencyKey() string {
	return c.idempotencyKey
}

func (c *SubmitOrderCommand) setLines(lines []cart.Item) error {
	if len(lines) == 0 {
		return errs.NewValueIsRequiredError("cart items")
	}

	for _, line := range lines {
		if line.Quantity <= 0 {
			return errs.NewValueIsOutOfRangeError("quantity", line.Quantity, 1, "unbounded")
		}
	}

	c.lines = slices.Clone(lines)
	return nil
}

func (c *SubmitOrderCommand) setTableNumber(tableNumber string) error {
	tableNumber = strings.TrimSpace(tableNumber)
	if tableNumber == "" {
		return errs.NewValueIsRequiredError("table number")
	}

	c.tableNumber = tableNumber
	return nil
}
