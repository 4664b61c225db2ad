package commands

import (
	"errors"

	"tableorder/internal/core/domain/model/identity"
	"tableorder/internal/core/domain/model/kernel"
	"tableorder/internal/core/domain/model/order"
	"tableorder/internal/pkg/guard"
)

var ErrTransitionOrderStatusCommandIsNotConstructed = errors.New(
	"TransitionOrderStatusCommand must be created via NewTransitionOrderStatusCommand constructor",
)

// TransitionOrderStatusCommand asks to move an order to a new lifecycle status on
// behalf of a caller.
//
// Example:
//
//	cmd, err := NewTransitionOrderStatusCommand(orderID, order.InProgress, caller)
//	if err != nil {
//	    return err
//	}
//	changed, err := handler.Handle(ctx, cmd)
type TransitionOrderStatusCommand struct {
	orderID kernel.UUID
	target  order.Status
	caller  identity.Caller

	guard guard.ConstructorGuard
}

// NewTransitionOrderStatusCommand validates the order id and target status. Whether
// the caller may perform the change is decided by the handler.
func NewTransitionOrderStatusCommand(
	orderID kernel.UUID,
	target order.Status,
	caller identity.Caller,
) (TransitionOrderStatusCommand, error) {
	if err := errors.Join(orderID.Validate(), target.Validate()); err != nil {
		return TransitionOrderStatusCommand{}, err
	}

	return TransitionOrderStatusCommand{
		orderID: orderID,
		target:  target,
		caller:  caller,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c TransitionOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrTransitionOrderStatusCommandIsNotConstructed)
}

func (c TransitionOrderStatusCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c TransitionOrderStatusCommand) Target() order.Status {
	return c.target
}

func (c TransitionOrderStatusCommand) Caller() identity.Caller {
	return c.caller
}
