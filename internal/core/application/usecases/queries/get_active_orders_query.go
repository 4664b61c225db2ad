package queries

import (
	"errors"

	"tableorder/internal/core/domain/model/identity"
	"tableorder/internal/pkg/guard"
)

var ErrGetActiveOrdersQueryIsNotConstructed = errors.New(
	"GetActiveOrdersQuery must be created via NewGetActiveOrdersQuery constructor",
)

// GetActiveOrdersQuery lists the orders a kitchen display shows: every order that
// is PENDING, IN_PROGRESS or READY, oldest first.
//
// Example:
//
//	query := NewGetActiveOrdersQuery(caller)
//	orders, err := handler.Handle(ctx, query)
//	if errors.Is(err, errs.ErrForbidden) {
//	    // only staff and admins see the whole queue
//	}
type GetActiveOrdersQuery struct {
	caller identity.Caller

	guard guard.ConstructorGuard
}

func NewGetActiveOrdersQuery(caller identity.Caller) GetActiveOrdersQuery {
	return GetActiveOrdersQuery{caller: caller, guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q GetActiveOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveOrdersQueryIsNotConstructed)
}

func (q GetActiveOrdersQuery) Caller() identity.Caller {
	return q.caller
}
