package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"tableorder/internal/core/application/usecases/commands"
	"tableorder/internal/core/application/usecases/queries"
	"tableorder/internal/core/domain/model/cart"
	"tableorder/internal/core/domain/model/catalog"
	"tableorder/internal/core/domain/model/kernel"
	"tableorder/internal/core/domain/model/order"

	"github.com/labstack/echo/v4"
)

// IdempotencyKeyHeader carries the client-chosen submission key.
const IdempotencyKeyHeader = "Idempotency-Key"

// Use case contracts the server depends on. The command and query handlers
// satisfy them directly.
type (
	OrderSubmitter interface {
		Handle(ctx context.Context, cmd commands.SubmitOrderCommand) (*order.Order, error)
	}

	OrderStatusChanger interface {
		Handle(ctx context.Context, cmd commands.TransitionOrderStatusCommand) (order.StatusChanged, error)
	}

	OrderReader interface {
		Handle(ctx context.Context, query queries.GetOrderQuery) (order.Snapshot, error)
	}

	ActiveOrdersReader interface {
		Handle(ctx context.Context, query queries.GetActiveOrdersQuery) ([]order.Snapshot, error)
	}

	MenuLister interface {
		List(ctx context.Context) ([]*catalog.MenuItem, error)
	}
)

// Server handles the REST endpoints of the ordering core.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	submitOrder  OrderSubmitter
	changeStatus OrderStatusChanger

	// Query handlers
	getOrder     OrderReader
	activeOrders ActiveOrdersReader
	menu         MenuLister

	logger *slog.Logger
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	submitOrder OrderSubmitter,
	changeStatus OrderStatusChanger,
	getOrder OrderReader,
	activeOrders ActiveOrdersReader,
	menu MenuLister,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Server{
		submitOrder:  submitOrder,
		changeStatus: changeStatus,
		getOrder:     getOrder,
		activeOrders: activeOrders,
		menu:         menu,
		logger:       logger.With("component", "HTTPServer"),
	}
}

// Health handles GET /health.
func (s *Server) Health(c echo.Context) error {
	return c.String(http.StatusOK, "Healthy")
}

// CreateOrder handles POST /api/v1/orders - submits a cart as a new order.
// The lines go through a Cart first, so repeated menu items are merged.
func (s *Server) CreateOrder(c echo.Context) error {
	var req NewOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	lines, err := req.cartLines()
	if err != nil {
		return s.writeError(c, err)
	}

	cmd, err := commands.NewSubmitOrderCommand(lines, req.TableNumber, callerFrom(c))
	if err != nil {
		return s.writeError(c, err)
	}
	cmd = cmd.
		WithCustomer(req.CustomerName, req.Notes).
		WithIdempotencyKey(c.Request().Header.Get(IdempotencyKeyHeader))

	o, err := s.submitOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusCreated, o.Snapshot())
}

// GetOrder handles GET /api/v1/orders/:id.
func (s *Server) GetOrder(c echo.Context) error {
	id, err := kernel.UUIDFromString(c.Param("id"))
	if err != nil {
		return s.writeError(c, err)
	}

	query, err := queries.NewGetOrderQuery(id)
	if err != nil {
		return s.writeError(c, err)
	}

	snapshot, err := s.getOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusOK, snapshot)
}

// GetActiveOrders handles GET /api/v1/orders/active - the kitchen queue.
func (s *Server) GetActiveOrders(c echo.Context) error {
	orders, err := s.activeOrders.Handle(c.Request().Context(), queries.NewGetActiveOrdersQuery(callerFrom(c)))
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusOK, orders)
}

// UpdateOrderStatus handles PATCH /api/v1/orders/:id/status.
func (s *Server) UpdateOrderStatus(c echo.Context) error {
	id, err := kernel.UUIDFromString(c.Param("id"))
	if err != nil {
		return s.writeError(c, err)
	}

	var req StatusRequest
	if err = c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	target, err := order.ParseStatus(req.Status)
	if err != nil {
		return s.writeError(c, err)
	}

	cmd, err := commands.NewTransitionOrderStatusCommand(id, target, callerFrom(c))
	if err != nil {
		return s.writeError(c, err)
	}

	changed, err := s.changeStatus.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusOK, changed)
}

// GetMenu handles GET /api/v1/menu.
func (s *Server) GetMenu(c echo.Context) error {
	items, err := s.menu.List(c.Request().Context())
	if err != nil {
		return s.writeError(c, err)
	}

	response := make([]MenuItem, 0, len(items))
	for _, item := range items {
		response = append(response, MenuItem{
			ID:     item.ID(),
			Name:   item.Name(),
			Price:  item.Price(),
			Active: item.IsActive(),
		})
	}

	return c.JSON(http.StatusOK, response)
}

func (r NewOrderRequest) cartLines() ([]cart.Item, error) {
	c := cart.New()
	for _, line := range r.Items {
		id, err := kernel.UUIDFromString(line.MenuItemID)
		if err != nil {
			return nil, err
		}

		if err = c.AddItem(cart.Selection{
			MenuItemID:          id,
			SpecialInstructions: line.SpecialInstructions,
		}, line.Quantity); err != nil {
			return nil, err
		}
	}

	return c.Items(), nil
}
