package order

import (
	"fmt"
	"slices"
	"strings"

	"tableorder/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
// It implements a state machine with a fixed transition table:
//
//	PENDING ──> IN_PROGRESS ──> READY ──> DELIVERED
//	   │             │            │
//	   └─────────────┴────────────┴──> CANCELLED
//
// DELIVERED and CANCELLED are terminal. There are no self-loops, so asking for
// the status an order already has (including cancelling a cancelled order) is
// an invalid transition.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status of every submitted order.
	Pending

	// InProgress means the kitchen has started preparing the order.
	InProgress

	// Ready means the order is waiting to be served.
	Ready

	// Delivered means the order reached the table. Terminal.
	Delivered

	// Cancelled means the order will not be fulfilled. Terminal.
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:    "UNKNOWN",
		Pending:    "PENDING",
		InProgress: "IN_PROGRESS",
		Ready:      "READY",
		Delivered:  "DELIVERED",
		Cancelled:  "CANCELLED",
	}
}

// getTransitions returns the allowed destinations for each non-terminal status.
func getTransitions() map[Status][]Status {
	//nolint:exhaustive // terminal and unknown statuses have no outgoing edges
	return map[Status][]Status{
		Pending:    {InProgress, Cancelled},
		InProgress: {Ready, Cancelled},
		Ready:      {Delivered, Cancelled},
	}
}

// ParseStatus converts the textual form used by the API and storage
// ("PENDING", "in_progress", ...) into a Status.
func ParseStatus(s string) (Status, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	for status, name := range getStatusStrings() {
		if status != Unknown && name == normalized {
			return status, nil
		}
	}

	return Unknown, errs.NewValueIsInvalidErrorWithCause(
		"status is invalid",
		fmt.Errorf("%q is not a valid status", s),
	)
}

// Validate checks that the status is one of the five lifecycle states.
func (s Status) Validate() error {
	if s <= Unknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%d is not a valid status", s),
		)
	}
	return nil
}

// String returns the upper-case name of the status, or "UNKNOWN".
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsTerminal reports whether no transition can leave this status.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// AllowedTargets lists the statuses reachable in one step.
func (s Status) AllowedTargets() []Status {
	return slices.Clone(getTransitions()[s])
}

// CanTransitionTo reports whether (s, target) is an edge of the transition table.
func (s Status) CanTransitionTo(target Status) bool {
	return slices.Contains(getTransitions()[s], target)
}

// TransitionTo returns target if the edge exists, otherwise an
// *errs.InvalidTransitionError naming both statuses.
//
// Example:
//
//	next, err := order.Pending.TransitionTo(order.Ready)
//	// err: invalid status transition: PENDING -> READY
func (s Status) TransitionTo(target Status) (Status, error) {
	if !s.CanTransitionTo(target) {
		return Unknown, errs.NewInvalidTransitionError(s.String(), target.String())
	}
	return target, nil
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}

	*s = parsed
	return nil
}
