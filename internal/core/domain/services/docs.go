// Package services provides domain services that work across aggregates of the
// ordering core.
//
// The package includes:
//   - OrderPricer: resolves cart lines against the current catalog and locks in prices
package services
