package rabbitmq_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"tableorder/internal/adapters/out/rabbitmq"
	"tableorder/internal/core/domain/model/kernel"
	"tableorder/internal/core/domain/model/order"
	"tableorder/internal/notify"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	mu         sync.Mutex
	declared   []string
	declareErr error
	publishErr error
	messages   []published
}

func (c *fakeChannel) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.declared = append(c.declared, name+":"+kind)
	return c.declareErr
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.publishErr != nil {
		return c.publishErr
	}
	c.messages = append(c.messages, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (c *fakeChannel) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.messages)
}

func (c *fakeChannel) snapshot() []published {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]published(nil), c.messages...)
}

func TestNewEventRelay(t *testing.T) {
	t.Run("should declare a topic exchange", func(t *testing.T) {
		ch := &fakeChannel{}

		_, err := rabbitmq.NewEventRelay(ch, "")

		require.NoError(t, err)
		assert.Equal(t, []string{rabbitmq.DefaultExchange + ":topic"}, ch.declared)
	})

	t.Run("should fail when the exchange cannot be declared", func(t *testing.T) {
		ch := &fakeChannel{declareErr: errors.New("access refused")}

		relay, err := rabbitmq.NewEventRelay(ch, "events")

		require.Error(t, err)
		assert.Nil(t, relay)
	})
}

func TestEncode(t *testing.T) {
	id := kernel.NewUUID()
	at := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	event := notify.Event{
		Name:  order.EventOrderStatusChanged,
		Topic: order.GlobalTopic,
		Payload: order.StatusChanged{
			OrderID:        id,
			PreviousStatus: order.Pending,
			NewStatus:      order.InProgress,
			ChangedAt:      at,
		},
		PublishedAt: at,
	}

	msg, err := rabbitmq.Encode(event)

	require.NoError(t, err)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, order.EventOrderStatusChanged, msg.Type)
	assert.Equal(t, order.GlobalTopic, msg.Headers["topic"])
	assert.JSONEq(t, `{
		"event": "order.status-changed",
		"topic": "orders",
		"payload": {
			"orderId": "`+id.String()+`",
			"previousStatus": "PENDING",
			"newStatus": "IN_PROGRESS",
			"changedAt": "2026-02-03T04:05:06Z"
		},
		"publishedAt": "2026-02-03T04:05:06Z"
	}`, string(msg.Body))
}

func TestEventRelay_Run(t *testing.T) {
	t.Run("should forward global events until cancelled", func(t *testing.T) {
		// Given
		ch := &fakeChannel{}
		relay, err := rabbitmq.NewEventRelay(ch, "events")
		require.NoError(t, err)

		bus := notify.NewBus()
		bus.Initialize()
		defer bus.Shutdown()

		ctx, cancel := context.WithCancel(t.Context())
		done := make(chan error, 1)
		go func() { done <- relay.Run(ctx, bus) }()
		require.Eventually(t, func() bool { return bus.SubscriberCount(order.GlobalTopic) == 1 },
			time.Second, 5*time.Millisecond)

		// When
		require.NoError(t, bus.Publish(order.GlobalTopic, order.EventOrderCreated, map[string]string{"id": "1"}))
		require.NoError(t, bus.Publish(order.Topic(kernel.NewUUID()), order.EventOrderCreated, nil))
		require.NoError(t, bus.Publish(order.GlobalTopic, order.EventOrderStatusChanged, nil))

		// Then only the global topic is relayed, in order
		require.Eventually(t, func() bool { return ch.count() == 2 }, time.Second, 5*time.Millisecond)
		messages := ch.snapshot()
		assert.Equal(t, "events", messages[0].exchange)
		assert.Equal(t, order.EventOrderCreated, messages[0].key)
		assert.Equal(t, order.EventOrderStatusChanged, messages[1].key)

		var frame map[string]any
		require.NoError(t, json.Unmarshal(messages[0].msg.Body, &frame))
		assert.Equal(t, map[string]any{"id": "1"}, frame["payload"])

		cancel()
		select {
		case err = <-done:
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("relay did not stop")
		}
		assert.Zero(t, bus.SubscriberCount(order.GlobalTopic))
	})

	t.Run("should stop when the bus shuts down", func(t *testing.T) {
		relay, err := rabbitmq.NewEventRelay(&fakeChannel{}, "events")
		require.NoError(t, err)

		bus := notify.NewBus()
		bus.Initialize()

		done := make(chan error, 1)
		go func() { done <- relay.Run(t.Context(), bus) }()
		require.Eventually(t, func() bool { return bus.SubscriberCount(order.GlobalTopic) == 1 },
			time.Second, 5*time.Millisecond)

		bus.Shutdown()

		select {
		case err = <-done:
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("relay did not stop")
		}
	})

	t.Run("should return immediately on a stopped bus", func(t *testing.T) {
		relay, err := rabbitmq.NewEventRelay(&fakeChannel{}, "events")
		require.NoError(t, err)

		assert.NoError(t, relay.Run(t.Context(), notify.NewBus()))
	})

	t.Run("should report a publish failure", func(t *testing.T) {
		ch := &fakeChannel{publishErr: errors.New("channel closed")}

		relay, err := rabbitmq.NewEventRelay(ch, "events")
		require.NoError(t, err)

		err = relay.Forward(t.Context(), notify.Event{Name: order.EventOrderCreated, Topic: order.GlobalTopic})
		require.Error(t, err)
		assert.Zero(t, ch.count())
	})
}
