package notify

import "time"

// Event is one published message as seen by a subscriber.
type Event struct {
	Name        string    `json:"event"`
	Topic       string    `json:"topic"`
	Payload     any       `json:"payload"`
	PublishedAt time.Time `json:"publishedAt"`
}
