// Package rabbitmq relays notification bus events to an AMQP topic exchange so
// services outside this process can follow the order lifecycle.
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"tableorder/internal/core/domain/model/order"
	"tableorder/internal/notify"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultExchange is the exchange used when none is configured.
const DefaultExchange = "orders_topic"

const publishTimeout = 5 * time.Second

// Channel is the part of *amqp.Channel the relay uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Subscriber is the part of *notify.Bus the relay uses.
type Subscriber interface {
	Subscribe(topic string) (*notify.Subscription, error)
}

// EventRelay forwards every event of the global order topic. The routing key is
// the event name, so consumers bind with patterns such as "order.*".
type EventRelay struct {
	ch       Channel
	exchange string
	logger   *slog.Logger
}

type RelayOption func(*EventRelay)

func WithRelayLogger(logger *slog.Logger) RelayOption {
	return func(r *EventRelay) { r.logger = logger }
}

// NewEventRelay declares the durable topic exchange once at startup.
func NewEventRelay(ch Channel, exchange string, opts ...RelayOption) (*EventRelay, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	r := &EventRelay{
		ch:       ch,
		exchange: exchange,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "EventRelay")

	return r, nil
}

// Run relays events until ctx is done or the bus shuts down. When the bus evicts
// the relay for falling behind, it subscribes again; events published meanwhile
// are lost.
func (r *EventRelay) Run(ctx context.Context, bus Subscriber) error {
	for {
		sub, err := bus.Subscribe(order.GlobalTopic)
		if errors.Is(err, notify.ErrBusNotRunning) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("subscribe: %w", err)
		}

		done := r.drain(ctx, sub)
		sub.Close()
		if done {
			return nil
		}

		r.logger.WarnContext(ctx, "relay fell behind, resubscribing", "subscriptionId", sub.ID())
	}
}

// drain returns true when the relay should stop, false after an eviction.
func (r *EventRelay) drain(ctx context.Context, sub *notify.Subscription) bool {
	for {
		select {
		case <-ctx.Done():
			return true
		case event, ok := <-sub.Events():
			if !ok {
				return !sub.Evicted()
			}
			if err := r.Forward(ctx, event); err != nil {
				r.logger.ErrorContext(ctx, "failed to relay event",
					"event", event.Name, "topic", event.Topic, "error", err)
			}
		}
	}
}

// Forward publishes one event as a persistent JSON message.
func (r *EventRelay) Forward(ctx context.Context, event notify.Event) error {
	msg, err := Encode(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err = r.ch.PublishWithContext(
		ctx,
		r.exchange,
		event.Name, // routing key
		false,      // mandatory
		false,      // immediate
		msg,
	); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Encode builds the AMQP message for an event. The body is the same JSON frame
// websocket clients receive.
func Encode(event notify.Event) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal event: %w", err)
	}

	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.PublishedAt,
		Type:         event.Name,
		Headers:      amqp.Table{"topic": event.Topic},
		Body:         body,
	}, nil
}
