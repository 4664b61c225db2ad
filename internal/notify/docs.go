// Package notify provides the in-process publish/subscribe bus that fans order
// lifecycle events out to live viewers.
//
// The bus is a service with an explicit lifecycle: it is created once, started with
// Initialize, injected where events are published or consumed, and stopped with
// Shutdown. Delivery is best-effort:
//   - A subscriber only receives events published while it is attached
//   - Events on a topic reach each subscriber in publish order
//   - Publish never blocks; a subscriber whose queue is full is evicted and its
//     channel closed
package notify
