package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"tableorder/internal/core/domain/model/catalog"
	"tableorder/internal/core/domain/model/kernel"
	"tableorder/internal/core/domain/model/order"
	"tableorder/internal/core/domain/services"
	"tableorder/internal/core/ports"
	"tableorder/internal/pkg/errs"
	"tableorder/internal/pkg/retry"
)

const (
	// DefaultIdempotencyTTL is how long a submission key is remembered.
	DefaultIdempotencyTTL = 24 * time.Hour

	// DefaultIdempotencyLockTTL bounds how long a crashed submission keeps its key in flight.
	DefaultIdempotencyLockTTL = time.Minute
)

// SubmitOrderCommandHandler turns a cart into a persisted PENDING order.
//
// The catalog lookup, pricing and insert run in one unit of work; on any failure
// nothing is stored. Transient persistence failures are retried with backoff,
// validation and conflict errors are not. After commit an order.created event is
// published on the global topic and on the order's own topic.
//
// Example:
//
//	handler := NewSubmitOrderCommandHandler(uowFactory, bus, WithTaxPolicy(policy))
//	o, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, errs.ErrConflict):
//	    // an item is no longer offered
//	case errors.Is(err, errs.ErrPersistence):
//	    // safe to retry the whole submission
//	}
type SubmitOrderCommandHandler struct {
	uowFactory     SubmissionUoWFactory
	publisher      ports.EventPublisher
	idempotency    ports.IdempotencyStore
	idempotencyTTL time.Duration
	lockTTL        time.Duration
	pricer         services.OrderPricer
	policy         order.TaxPolicy
	retry          retry.Config
	logger         *slog.Logger
	now            func() time.Time
	newID          func() kernel.UUID
}

// SubmitOption customizes a SubmitOrderCommandHandler.
type SubmitOption func(*SubmitOrderCommandHandler)

func WithTaxPolicy(policy order.TaxPolicy) SubmitOption {
	return func(h *SubmitOrderCommandHandler) { h.policy = policy }
}

func WithSubmitRetry(cfg retry.Config) SubmitOption {
	return func(h *SubmitOrderCommandHandler) { h.retry = cfg }
}

// WithIdempotency enables submission keys; a nil store leaves them ignored.
func WithIdempotency(store ports.IdempotencyStore, ttl time.Duration) SubmitOption {
	return func(h *SubmitOrderCommandHandler) {
		h.idempotency = store
		if ttl > 0 {
			h.idempotencyTTL = ttl
		}
	}
}

// WithIdempotencyLockTTL sets how long a key stays in flight if its holder never
// releases it. It should exceed the request timeout plus the retry backoff.
func WithIdempotencyLockTTL(ttl time.Duration) SubmitOption {
	return func(h *SubmitOrderCommandHandler) {
		if ttl > 0 {
			h.lockTTL = ttl
		}
	}
}

func WithSubmitLogger(logger *slog.Logger) SubmitOption {
	return func(h *SubmitOrderCommandHandler) { h.logger = logger }
}

func WithSubmitClock(now func() time.Time) SubmitOption {
	return func(h *SubmitOrderCommandHandler) { h.now = now }
}

// NewSubmitOrderCommandHandler creates a handler with the default tax policy and
// retry settings.
func NewSubmitOrderCommandHandler(
	uowFactory SubmissionUoWFactory,
	publisher ports.EventPublisher,
	opts ...SubmitOption,
) SubmitOrderCommandHandler {
	h := SubmitOrderCommandHandler{
		uowFactory:     uowFactory,
		publisher:      publisher,
		idempotencyTTL: DefaultIdempotencyTTL,
		lockTTL:        DefaultIdempotencyLockTTL,
		pricer:         services.NewOrderPricer(),
		policy:         order.DefaultTaxPolicy(),
		retry:          retry.DefaultConfig(),
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:            time.Now,
		newID:          kernel.NewUUID,
	}
	for _, opt := range opts {
		opt(&h)
	}
	h.logger = h.logger.With("component", "SubmitOrderCommandHandler")

	return h
}

// Handle validates, prices, persists and announces the order.
func (h SubmitOrderCommandHandler) Handle(ctx context.Context, cmd SubmitOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	key := cmd.IdempotencyKey()
	if key == "" || h.idempotency == nil {
		return h.submitAndPublish(ctx, cmd)
	}

	if previous, found, err := h.recall(ctx, key); err != nil || found {
		return previous, err
	}

	token, locked, err := h.idempotency.TryLock(ctx, key, h.lockTTL)
	if err != nil {
		return nil, errs.NewPersistenceError("lock idempotency key", err)
	}
	if !locked {
		return nil, ports.ErrIdempotencyKeyInFlight
	}
	defer func() {
		if releaseErr := h.idempotency.Release(context.WithoutCancel(ctx), key, token); releaseErr != nil {
			h.logger.WarnContext(ctx, "failed to release idempotency key", "error", releaseErr)
		}
	}()

	// The holder before us may have finished between the first lookup and TryLock.
	if previous, found, err := h.recall(ctx, key); err != nil || found {
		return previous, err
	}

	o, err := h.submitAndPublish(ctx, cmd)
	if err != nil {
		return nil, err
	}

	if err = h.idempotency.Remember(ctx, key, o.ID(), h.idempotencyTTL); err != nil {
		h.logger.WarnContext(ctx, "failed to remember idempotency key",
			"orderId", o.ID().String(), "error", err)
	}

	return o, nil
}

func (h SubmitOrderCommandHandler) submitAndPublish(ctx context.Context, cmd SubmitOrderCommand) (*order.Order, error) {
	o, err := retry.Do(ctx, h.retry, func(ctx context.Context) (*order.Order, error) {
		return h.submit(ctx, cmd)
	}, errs.IsTransient)
	if err != nil {
		return nil, err
	}

	h.logger.InfoContext(ctx, "order submitted",
		"orderId", o.ID().String(),
		"tableNumber", o.TableNumber(),
		"total", o.Total().String(),
	)

	snapshot := o.Snapshot()
	h.publish(ctx, order.GlobalTopic, snapshot)
	h.publish(ctx, order.Topic(o.ID()), snapshot)

	return o, nil
}

func (h SubmitOrderCommandHandler) submit(ctx context.Context, cmd SubmitOrderCommand) (*order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	menu, err := h.lookupMenu(ctx, uow.MenuCatalog(), cmd)
	if err != nil {
		return nil, err
	}

	items, err := h.pricer.Price(cmd.Lines(), menu)
	if err != nil {
		return nil, err
	}

	o, err := order.NewOrder(
		h.newID(),
		cmd.TableNumber(),
		items,
		h.policy,
		order.Details{
			CustomerName: cmd.CustomerName(),
			Notes:        cmd.Notes(),
			CreatedBy:    cmd.Caller().UserID,
		},
		h.now(),
	)
	if err != nil {
		return nil, err
	}

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return o, nil
}

// lookupMenu reads each referenced menu item once. Missing items are left out of
// the map so the pricer reports them.
func (h SubmitOrderCommandHandler) lookupMenu(
	ctx context.Context,
	menuCatalog ports.MenuCatalog,
	cmd SubmitOrderCommand,
) (map[kernel.UUID]*catalog.MenuItem, error) {
	menu := make(map[kernel.UUID]*catalog.MenuItem)
	for _, line := range cmd.Lines() {
		if _, seen := menu[line.MenuItemID]; seen {
			continue
		}

		item, err := menuCatalog.GetMenuItem(ctx, line.MenuItemID)
		if errors.Is(err, errs.ErrObjectNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		menu[line.MenuItemID] = item
	}

	return menu, nil
}

func (h SubmitOrderCommandHandler) recall(ctx context.Context, key string) (*order.Order, bool, error) {
	id, found, err := h.idempotency.Recall(ctx, key)
	if err != nil {
		return nil, false, errs.NewPersistenceError("recall idempotency key", err)
	}
	if !found {
		return nil, false, nil
	}

	uow := h.uowFactory.Create()
	o, err := uow.OrderRepository().Get(ctx, id)
	if err != nil {
		return nil, false, err
	}

	h.logger.InfoContext(ctx, "duplicate submission", "orderId", id.String())
	return o, true, nil
}

func (h SubmitOrderCommandHandler) publish(ctx context.Context, topic string, payload any) {
	if err := h.publisher.Publish(topic, order.EventOrderCreated, payload); err != nil {
		h.logger.WarnContext(ctx, "failed to publish event",
			"event", order.EventOrderCreated,
			"topic", topic,
			"error", errs.NewNotificationDeliveryError(topic, "", err),
		)
	}
}
