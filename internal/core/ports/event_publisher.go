package ports

// EventPublisher hands lifecycle events to the notification fabric.
// Publish must not block on slow consumers; a returned error is only logged.
type EventPublisher interface {
	Publish(topic, event string, payload any) error
}
