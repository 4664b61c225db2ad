package notify

import (
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"tableorder/internal/pkg/errs"
)

// DefaultBufferSize is the per-subscriber queue length.
const DefaultBufferSize = 64

var (
	ErrBusNotRunning = errors.New("notification bus is not running")
	ErrTopicRequired = errors.New("topic is required")

	errQueueFull = errors.New("subscriber queue is full")
)

// Option customizes a Bus.
type Option func(*Bus)

func WithBufferSize(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.bufferSize = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(b *Bus) {
		b.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(b *Bus) {
		b.now = now
	}
}

// Bus routes published events to the subscribers of a topic.
//
// All publications are serialized by one lock, so two events published one after
// the other reach every common subscriber in that order, across topics too.
type Bus struct {
	mu      sync.Mutex
	running bool
	topics  map[string]map[uint64]*Subscription
	nextID  uint64

	bufferSize int
	logger     *slog.Logger
	metrics    *Metrics
	now        func() time.Time
}

func NewBus(opts ...Option) *Bus {
	b := &Bus{
		topics:     make(map[string]map[uint64]*Subscription),
		bufferSize: DefaultBufferSize,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With("component", "NotificationBus")

	return b
}

// Initialize starts accepting subscriptions and publications. Calling it on a
// running bus does nothing.
func (b *Bus) Initialize() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.running = true
}

// Shutdown stops the bus and closes every subscription channel. The bus can be
// initialized again afterwards; old subscriptions stay closed.
func (b *Bus) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return
	}
	b.running = false

	for topic, subs := range b.topics {
		for _, sub := range subs {
			b.detachLocked(sub)
		}
		delete(b.topics, topic)
	}
}

// Subscribe attaches a new subscriber to topic. Only events published after this
// call returns are delivered to it.
func (b *Bus) Subscribe(topic string) (*Subscription, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrTopicRequired
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return nil, ErrBusNotRunning
	}

	b.nextID++
	sub := &Subscription{
		id:     b.nextID,
		topic:  topic,
		events: make(chan Event, b.bufferSize),
		bus:    b,
	}

	subs, ok := b.topics[topic]
	if !ok {
		subs = make(map[uint64]*Subscription)
		b.topics[topic] = subs
	}
	subs[sub.id] = sub
	b.metrics.addSubscribers(1)

	return sub, nil
}

// Publish queues the event for every current subscriber of topic and returns
// without waiting for any of them. Subscribers that cannot keep up are evicted;
// their loss is logged, never returned.
func (b *Bus) Publish(topic, name string, payload any) error {
	if topic == "" {
		return ErrTopicRequired
	}

	var dropped []error

	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return ErrBusNotRunning
	}

	event := Event{
		Name:        name,
		Topic:       topic,
		Payload:     payload,
		PublishedAt: b.now().UTC(),
	}
	b.metrics.incPublished(name)

	for _, sub := range b.topics[topic] {
		select {
		case sub.events <- event:
			b.metrics.incDelivered(name)
		default:
			b.metrics.incDropped(name)
			sub.evicted = true
			b.detachLocked(sub)
			dropped = append(dropped, errs.NewNotificationDeliveryError(topic, sub.ID(), errQueueFull))
		}
	}
	b.mu.Unlock()

	for _, err := range dropped {
		b.logger.Warn("subscriber evicted", "event", name, "error", err)
	}

	return nil
}

// SubscriberCount is the number of subscribers attached to topic.
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.topics[topic])
}

// detachLocked removes sub and closes its channel. b.mu must be held.
func (b *Bus) detachLocked(sub *Subscription) {
	if sub.closed {
		return
	}
	sub.closed = true
	close(sub.events)

	if subs, ok := b.topics[sub.topic]; ok {
		delete(subs, sub.id)
		if len(subs) == 0 {
			delete(b.topics, sub.topic)
		}
	}
	b.metrics.addSubscribers(-1)
}

// Subscription is one attachment to a topic. Events arrive on Events until the
// subscription is closed, evicted, or the bus shuts down.
type Subscription struct {
	id     uint64
	topic  string
	events chan Event
	bus    *Bus

	// guarded by bus.mu
	closed  bool
	evicted bool
}

// ID identifies the subscription in logs.
func (s *Subscription) ID() string {
	return strconv.FormatUint(s.id, 10)
}

func (s *Subscription) Topic() string {
	return s.topic
}

// Events is closed when the subscription ends.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Evicted reports whether the bus dropped this subscription because its queue
// was full.
func (s *Subscription) Evicted() bool {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()

	return s.evicted
}

// Close detaches the subscription. Events already queued can still be drained
// from Events. Close is idempotent.
func (s *Subscription) Close() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()

	s.bus.detachLocked(s)
}
