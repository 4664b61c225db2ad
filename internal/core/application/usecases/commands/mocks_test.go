package commands_test

import (
	"context"
	"sync"
	"time"

	"tableorder/internal/core/application/usecases/commands"
	"tableorder/internal/core/domain/model/catalog"
	"tableorder/internal/core/domain/model/kernel"
	"tableorder/internal/core/domain/model/order"
	"tableorder/internal/core/ports"
	"tableorder/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, o *order.Order, expected order.Status) error {
	args := m.Called(ctx, o, expected)
	return args.Error(0)
}

type MockMenuCatalog struct{ mock.Mock }

func (m *MockMenuCatalog) GetMenuItem(ctx context.Context, id kernel.UUID) (*catalog.MenuItem, error) {
	args := m.Called(ctx, id)
	item, _ := args.Get(0).(*catalog.MenuItem)
	return item, args.Error(1)
}

type MockSubmissionUoW struct{ mock.Mock }

func (m *MockSubmissionUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSubmissionUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSubmissionUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSubmissionUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockSubmissionUoW) MenuCatalog() ports.MenuCatalog {
	args := m.Called()
	return args.Get(0).(ports.MenuCatalog)
}

type MockSubmissionUoWFactory struct{ mock.Mock }

func (m *MockSubmissionUoWFactory) Create() commands.SubmissionUoW {
	args := m.Called()
	return args.Get(0).(commands.SubmissionUoW)
}

type MockOrderUoW struct{ mock.Mock }

func (m *MockOrderUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) Publish(topic, event string, payload any) error {
	args := m.Called(topic, event, payload)
	return args.Error(0)
}

type MockIdempotencyStore struct{ mock.Mock }

func (m *MockIdempotencyStore) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key, token string) error {
	args := m.Called(ctx, key, token)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Remember(ctx context.Context, key string, id kernel.UUID, ttl time.Duration) error {
	args := m.Called(ctx, key, id, ttl)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Recall(ctx context.Context, key string) (kernel.UUID, bool, error) {
	args := m.Called(ctx, key)
	id, _ := args.Get(0).(kernel.UUID)
	return id, args.Bool(1), args.Error(2)
}

// memorySubmissions backs submissions with a memoryOrderStore and a fixed menu.
type memorySubmissions struct {
	orders *memoryOrderStore
	menu   map[kernel.UUID]*catalog.MenuItem
}

func (s memorySubmissions) Create() commands.SubmissionUoW {
	return memorySubmissionUoW{memoryOrderUoW: memoryOrderUoW{store: s.orders}, menu: s.menu}
}

type memorySubmissionUoW struct {
	memoryOrderUoW
	menu map[kernel.UUID]*catalog.MenuItem
}

func (u memorySubmissionUoW) MenuCatalog() ports.MenuCatalog {
	return memoryMenu(u.menu)
}

type memoryMenu map[kernel.UUID]*catalog.MenuItem

func (m memoryMenu) GetMenuItem(_ context.Context, id kernel.UUID) (*catalog.MenuItem, error) {
	item, ok := m[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("menu item", id.String())
	}
	return item, nil
}

type noLocks struct{}

func (noLocks) Lock(context.Context, string) (func(), error) { return func() {}, nil }

// memoryOrderStore is a tiny transactional-enough store for concurrency tests:
// every Get returns a fresh copy and UpdateStatus is a compare-and-set.
type memoryOrderStore struct {
	mu     sync.Mutex
	orders map[kernel.UUID]*order.Order
}

func newMemoryOrderStore(orders ...*order.Order) *memoryOrderStore {
	s := &memoryOrderStore{orders: make(map[kernel.UUID]*order.Order)}
	for _, o := range orders {
		s.orders[o.ID()] = o
	}
	return s
}

func (s *memoryOrderStore) Create() commands.OrderUoW {
	return memoryOrderUoW{store: s}
}

func (s *memoryOrderStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *memoryOrderStore) status(id kernel.UUID) order.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders[id].Status()
}

type memoryOrderUoW struct {
	store *memoryOrderStore
}

func (memoryOrderUoW) Begin(context.Context) error    { return nil }
func (memoryOrderUoW) Commit(context.Context) error   { return nil }
func (memoryOrderUoW) Rollback(context.Context) error { return nil }

func (u memoryOrderUoW) OrderRepository() ports.OrderRepository {
	return memoryOrderRepository(u)
}

type memoryOrderRepository struct {
	store *memoryOrderStore
}

func (r memoryOrderRepository) Add(_ context.Context, o *order.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.orders[o.ID()] = o
	return nil
}

func (r memoryOrderRepository) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	o, ok := r.store.orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return copyOrder(o, o.Status())
}

func (r memoryOrderRepository) UpdateStatus(_ context.Context, o *order.Order, expected order.Status) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored := r.store.orders[o.ID()]
	if stored.Status() != expected {
		return ports.ErrConcurrentUpdate
	}
	updated, err := copyOrder(o, o.Status())
	if err != nil {
		return err
	}
	r.store.orders[o.ID()] = updated
	return nil
}

func copyOrder(o *order.Order, status order.Status) (*order.Order, error) {
	return order.RestoreOrder(
		o.ID(), o.TableNumber(), o.Details(), status, o.Items(),
		order.Totals{Subtotal: o.Subtotal(), Tax: o.Tax(), Total: o.Total()},
		o.CreatedAt(), o.UpdatedAt(),
	)
}
