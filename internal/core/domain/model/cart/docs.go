// Package cart implements the Cart aggregate: the session-local list of menu
// selections a diner builds before submitting an order.
//
// The cart only exists before an order is created. It is discarded after a
// successful submission or an explicit Clear, and its prices are a preview;
// the order service locks in catalog prices at submission.
package cart
