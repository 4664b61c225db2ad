// Package order provides the Order aggregate and its status state machine.
//
// The package includes:
//   - Order: aggregate root holding the lines, locked-in prices and lifecycle status
//   - Item: an order line with the unit price captured at submission
//   - Status: the lifecycle state machine (PENDING, IN_PROGRESS, READY, DELIVERED, CANCELLED)
//   - TaxPolicy: derives subtotal, tax and total with half-up rounding
//   - Snapshot, StatusChanged and topic helpers used when publishing lifecycle events
//
// Key business rules:
//   - Lines and amounts never change after creation
//   - Orders are never deleted; terminal states are kept for history
//   - Only edges of the transition table are allowed, with no self-loops
package order
