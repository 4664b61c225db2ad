package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"tableorder/internal/core/domain/model/order"
	"tableorder/internal/core/ports"
	"tableorder/internal/pkg/errs"
	"tableorder/internal/pkg/retry"
)

const actionChangeStatus = "change order status"

// TransitionOrderStatusCommandHandler moves an order through its lifecycle.
//
// Only staff and admins may change a status. Changes to one order are serialized
// with an in-process lock, and the store write is a compare-and-set on the status
// that was read, so a change made by another process surfaces as an
// *errs.InvalidTransitionError against the fresh status. The order.status-changed
// event is published after the lock is released.
//
// Example:
//
//	handler := NewTransitionOrderStatusCommandHandler(uowFactory, locks, bus)
//	changed, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, errs.ErrInvalidTransition) {
//	    // order is not in a state that allows the target
//	}
type TransitionOrderStatusCommandHandler struct {
	uowFactory OrderUoWFactory
	locks      OrderLocker
	publisher  ports.EventPublisher
	retry      retry.Config
	logger     *slog.Logger
	now        func() time.Time
}

// TransitionOption customizes a TransitionOrderStatusCommandHandler.
type TransitionOption func(*TransitionOrderStatusCommandHandler)

func WithTransitionRetry(cfg retry.Config) TransitionOption {
	return func(h *TransitionOrderStatusCommandHandler) { h.retry = cfg }
}

func WithTransitionLogger(logger *slog.Logger) TransitionOption {
	return func(h *TransitionOrderStatusCommandHandler) { h.logger = logger }
}

func WithTransitionClock(now func() time.Time) TransitionOption {
	return func(h *TransitionOrderStatusCommandHandler) { h.now = now }
}

func NewTransitionOrderStatusCommandHandler(
	uowFactory OrderUoWFactory,
	locks OrderLocker,
	publisher ports.EventPublisher,
	opts ...TransitionOption,
) TransitionOrderStatusCommandHandler {
	h := TransitionOrderStatusCommandHandler{
		uowFactory: uowFactory,
		locks:      locks,
		publisher:  publisher,
		retry:      retry.DefaultConfig(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&h)
	}
	h.logger = h.logger.With("component", "TransitionOrderStatusCommandHandler")

	return h
}

// Handle applies the transition and returns the change that was persisted.
func (h TransitionOrderStatusCommandHandler) Handle(
	ctx context.Context,
	cmd TransitionOrderStatusCommand,
) (order.StatusChanged, error) {
	if err := cmd.Validate(); err != nil {
		return order.StatusChanged{}, err
	}

	caller := cmd.Caller()
	if !caller.CanManageOrders() {
		return order.StatusChanged{}, errs.NewForbiddenError(caller.Role.String(), actionChangeStatus)
	}

	changed, err := h.transitionLocked(ctx, cmd)
	if err != nil {
		return order.StatusChanged{}, err
	}

	h.logger.InfoContext(ctx, "order status changed",
		"orderId", changed.OrderID.String(),
		"previousStatus", changed.PreviousStatus.String(),
		"newStatus", changed.NewStatus.String(),
		"userId", caller.UserID,
	)

	h.publish(ctx, order.GlobalTopic, changed)
	h.publish(ctx, order.Topic(changed.OrderID), changed)

	return changed, nil
}

func (h TransitionOrderStatusCommandHandler) transitionLocked(
	ctx context.Context,
	cmd TransitionOrderStatusCommand,
) (order.StatusChanged, error) {
	unlock, err := h.locks.Lock(ctx, cmd.OrderID().String())
	if err != nil {
		return order.StatusChanged{}, errs.NewPersistenceError("lock order", err)
	}
	defer unlock()

	return retry.Do(ctx, h.retry, func(ctx context.Context) (order.StatusChanged, error) {
		return h.transition(ctx, cmd)
	}, errs.IsTransient)
}

func (h TransitionOrderStatusCommandHandler) transition(
	ctx context.Context,
	cmd TransitionOrderStatusCommand,
) (order.StatusChanged, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return order.StatusChanged{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	o, err := repo.Get(ctx, cmd.OrderID())
	if err != nil {
		return order.StatusChanged{}, err
	}

	changedAt := h.now().UTC()
	previous, err := o.TransitionTo(cmd.Target(), changedAt)
	if err != nil {
		return order.StatusChanged{}, err
	}

	err = repo.UpdateStatus(ctx, o, previous)
	if errors.Is(err, ports.ErrConcurrentUpdate) {
		fresh, getErr := repo.Get(ctx, cmd.OrderID())
		if getErr != nil {
			return order.StatusChanged{}, getErr
		}
		return order.StatusChanged{}, errs.NewInvalidTransitionErrorWithCause(
			fresh.Status().String(), cmd.Target().String(), ports.ErrConcurrentUpdate,
		)
	}
	if err != nil {
		return order.StatusChanged{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return order.StatusChanged{}, err
	}

	return order.StatusChanged{
		OrderID:        o.ID(),
		PreviousStatus: previous,
		NewStatus:      o.Status(),
		ChangedAt:      changedAt,
	}, nil
}

func (h TransitionOrderStatusCommandHandler) publish(ctx context.Context, topic string, payload order.StatusChanged) {
	if err := h.publisher.Publish(topic, order.EventOrderStatusChanged, payload); err != nil {
		h.logger.WarnContext(ctx, "failed to publish event",
			"event", order.EventOrderStatusChanged,
			"topic", topic,
			"error", errs.NewNotificationDeliveryError(topic, "", err),
		)
	}
}
