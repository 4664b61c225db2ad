package queries_test

import (
	"context"
	"testing"
	"time"

	postgres_adapter "tableorder/internal/adapters/out/postgres"
	"tableorder/internal/adapters/out/postgres/orderrepo"
	"tableorder/internal/core/application/usecases/queries"
	"tableorder/internal/core/domain/model/identity"
	"tableorder/internal/core/domain/model/kernel"
	"tableorder/internal/core/domain/model/order"
	"tableorder/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	staff    = identity.Caller{UserID: "cook-1", Role: identity.RoleStaff}
	customer = identity.Caller{UserID: "guest-1", Role: identity.RoleCustomer}
)

type OrderQueriesTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	orderRepo *orderrepo.GormOrderRepository
	getOrder  queries.GetOrderQueryHandler
	active    queries.GetActiveOrdersQueryHandler
	baseTime  time.Time
}

func (suite *OrderQueriesTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(postgres_adapter.Migrate(db))

	suite.orderRepo = orderrepo.NewGormOrderRepository(db)
	suite.getOrder = queries.NewGetOrderQueryHandler(db)
	suite.active = queries.NewGetActiveOrdersQueryHandler(db)
	suite.baseTime = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
}

func (suite *OrderQueriesTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders, order_items").Error)
}

func (suite *OrderQueriesTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OrderQueriesTestSuite) TestGetOrder_ReturnsSnapshotWithLines() {
	ctx := context.Background()

	// Given
	stored := suite.createOrder(order.Pending, 0)

	// When
	query, err := queries.NewGetOrderQuery(stored.ID())
	suite.Require().NoError(err)
	snapshot, err := suite.getOrder.Handle(ctx, query)

	// Then
	suite.Require().NoError(err)
	suite.True(snapshot.ID.IsEqual(stored.ID()))
	suite.Equal("12", snapshot.TableNumber)
	suite.Equal("Ann", snapshot.CustomerName)
	suite.Equal(order.Pending, snapshot.Status)
	suite.Equal("25.50", snapshot.Subtotal.String())
	suite.Equal("2.04", snapshot.Tax.String())
	suite.Equal("27.54", snapshot.Total.String())
	suite.True(stored.CreatedAt().Equal(snapshot.CreatedAt))

	suite.Require().Len(snapshot.Items, 2)
	suite.Equal("Burger", snapshot.Items[0].Name)
	suite.Equal("10.00", snapshot.Items[0].UnitPrice.String())
	suite.Equal(2, snapshot.Items[0].Quantity)
	suite.Equal("Fries", snapshot.Items[1].Name)
}

func (suite *OrderQueriesTestSuite) TestGetOrder_UnknownID_ReturnsNotFound() {
	query, err := queries.NewGetOrderQuery(kernel.NewUUID())
	suite.Require().NoError(err)

	_, err = suite.getOrder.Handle(context.Background(), query)

	var notFoundErr *errs.ObjectNotFoundError
	suite.Require().ErrorAs(err, &notFoundErr)
}

func (suite *OrderQueriesTestSuite) TestGetOrder_UnconstructedQuery_ReturnsError() {
	_, err := suite.getOrder.Handle(context.Background(), queries.GetOrderQuery{})

	suite.Require().ErrorIs(err, queries.ErrGetOrderQueryIsNotConstructed)
}

func (suite *OrderQueriesTestSuite) TestGetActiveOrders_ExcludesTerminalAndSortsOldestFirst() {
	ctx := context.Background()

	// Given orders created in a shuffled order, two of them terminal
	ready := suite.createOrder(order.Ready, 3)
	pending := suite.createOrder(order.Pending, 1)
	suite.createOrder(order.Delivered, 0)
	inProgress := suite.createOrder(order.InProgress, 2)
	suite.createOrder(order.Cancelled, 4)

	// When
	orders, err := suite.active.Handle(ctx, queries.NewGetActiveOrdersQuery(staff))

	// Then
	suite.Require().NoError(err)
	suite.Require().Len(orders, 3)
	suite.True(orders[0].ID.IsEqual(pending.ID()))
	suite.True(orders[1].ID.IsEqual(inProgress.ID()))
	suite.True(orders[2].ID.IsEqual(ready.ID()))
	for _, o := range orders {
		suite.False(o.Status.IsTerminal())
		suite.Len(o.Items, 2)
	}
}

func (suite *OrderQueriesTestSuite) TestGetActiveOrders_NoOrders_ReturnsEmptySlice() {
	orders, err := suite.active.Handle(context.Background(), queries.NewGetActiveOrdersQuery(staff))

	suite.Require().NoError(err)
	suite.NotNil(orders)
	suite.Empty(orders)
}

func (suite *OrderQueriesTestSuite) TestGetActiveOrders_Customer_IsForbidden() {
	suite.createOrder(order.Pending, 0)

	orders, err := suite.active.Handle(context.Background(), queries.NewGetActiveOrdersQuery(customer))

	suite.Nil(orders)
	suite.Require().ErrorIs(err, errs.ErrForbidden)
}

// createOrder stores an order created offsetMinutes after baseTime in the given status.
func (suite *OrderQueriesTestSuite) createOrder(status order.Status, offsetMinutes int) *order.Order {
	burger, err := kernel.MoneyFromString("10.00")
	suite.Require().NoError(err)
	fries, err := kernel.MoneyFromString("5.50")
	suite.Require().NoError(err)

	first, err := order.NewItem(kernel.NewUUID(), "Burger", burger, 2, "")
	suite.Require().NoError(err)
	second, err := order.NewItem(kernel.NewUUID(), "Fries", fries, 1, "")
	suite.Require().NoError(err)

	createdAt := suite.baseTime.Add(time.Duration(offsetMinutes) * time.Minute)
	o, err := order.NewOrder(
		kernel.NewUUID(),
		"12",
		[]order.Item{first, second},
		order.DefaultTaxPolicy(),
		order.Details{CustomerName: "Ann"},
		createdAt,
	)
	suite.Require().NoError(err)

	restored, err := order.RestoreOrder(
		o.ID(), o.TableNumber(), o.Details(), status, o.Items(),
		order.Totals{Subtotal: o.Subtotal(), Tax: o.Tax(), Total: o.Total()},
		createdAt, createdAt,
	)
	suite.Require().NoError(err)

	suite.Require().NoError(suite.orderRepo.Add(context.Background(), restored))
	return restored
}

func TestOrderQueriesTestSuite(t *testing.T) {
	suite.Run(t, new(OrderQueriesTestSuite))
}
