// Package kernel provides the value objects shared by the ordering domain.
//
// The package includes:
//   - UUID: identifier for orders and menu items, invalid when zero
//   - Money: exact non-negative currency amount with half-up rounding
//
// Both are immutable and safe for concurrent use.
package kernel
