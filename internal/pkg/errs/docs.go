// Package errs provides the error taxonomy shared by the ordering core.
//
// Every error kind follows the same shape:
//   - a sentinel variable (e.g. ErrValueIsRequired) for errors.Is checks
//   - a struct carrying the context needed to render a precise message
//     (parameter name, menu item id, both ends of a status change, ...)
//   - constructors with and without a cause
//   - Error() for formatting and Unwrap() returning the sentinel
//
// The kinds map onto how callers react to them:
//   - ErrValidation: malformed input (required, invalid, out of range values)
//   - ErrConflict: a catalog item is missing or inactive at submission
//   - ErrForbidden: the caller's role does not allow the action
//   - ErrInvalidTransition: a status change outside the lifecycle table
//   - ErrPersistence: store failure; nothing was committed, safe to retry
//   - ErrNotificationDelivery: a subscriber missed an event; logged only
//
// Logical errors are reported before any persistence attempt and are never retried.
// IsTransient tells retry loops which failures deserve another attempt.
package errs
