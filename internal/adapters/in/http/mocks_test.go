package http_test

import (
	"context"

	"tableorder/internal/core/application/usecases/commands"
	"tableorder/internal/core/application/usecases/queries"
	"tableorder/internal/core/domain/model/catalog"
	"tableorder/internal/core/domain/model/order"

	"github.com/stretchr/testify/mock"
)

type MockOrderSubmitter struct{ mock.Mock }

func (m *MockOrderSubmitter) Handle(ctx context.Context, cmd commands.SubmitOrderCommand) (*order.Order, error) {
	args := m.Called(ctx, cmd)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

type MockStatusChanger struct{ mock.Mock }

func (m *MockStatusChanger) Handle(
	ctx context.Context,
	cmd commands.TransitionOrderStatusCommand,
) (order.StatusChanged, error) {
	args := m.Called(ctx, cmd)
	changed, _ := args.Get(0).(order.StatusChanged)
	return changed, args.Error(1)
}

type MockOrderReader struct{ mock.Mock }

func (m *MockOrderReader) Handle(ctx context.Context, query queries.GetOrderQuery) (order.Snapshot, error) {
	args := m.Called(ctx, query)
	snapshot, _ := args.Get(0).(order.Snapshot)
	return snapshot, args.Error(1)
}

type MockActiveOrdersReader struct{ mock.Mock }

func (m *MockActiveOrdersReader) Handle(
	ctx context.Context,
	query queries.GetActiveOrdersQuery,
) ([]order.Snapshot, error) {
	args := m.Called(ctx, query)
	snapshots, _ := args.Get(0).([]order.Snapshot)
	return snapshots, args.Error(1)
}

type MockMenuLister struct{ mock.Mock }

func (m *MockMenuLister) List(ctx context.Context) ([]*catalog.MenuItem, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]*catalog.MenuItem)
	return items, args.Error(1)
}
