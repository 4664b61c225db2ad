package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"tableorder/internal/core/domain/model/order"
	"tableorder/internal/notify"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Subscriber is the part of the notification bus the websocket endpoint needs.
type Subscriber interface {
	Subscribe(topic string) (*notify.Subscription, error)
}

// StreamHandler pushes bus events to websocket clients.
type StreamHandler struct {
	bus      Subscriber
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewStreamHandler(bus Subscriber, logger *slog.Logger) *StreamHandler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &StreamHandler{
		bus: bus,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger.With("component", "StreamHandler"),
	}
}

// Stream handles GET /api/v1/ws?topic=orders|orders.<id>.
// The global topic is reserved for staff and admins; anyone authenticated may
// follow a single order. The subscription is taken before the upgrade so that
// refusals are still plain HTTP responses.
func (h *StreamHandler) Stream(c echo.Context) error {
	id, perOrder, err := order.ParseTopic(c.QueryParam("topic"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "topic must be " + order.GlobalTopic + " or " + order.GlobalTopic + ".<order id>",
		})
	}

	topic := order.GlobalTopic
	if perOrder {
		topic = order.Topic(id)
	} else if !callerFrom(c).CanManageOrders() {
		return c.JSON(http.StatusForbidden, Error{
			Code:    http.StatusForbidden,
			Message: "only staff can watch all orders",
		})
	}

	sub, err := h.bus.Subscribe(topic)
	if err != nil {
		code := http.StatusBadRequest
		if errors.Is(err, notify.ErrBusNotRunning) {
			code = http.StatusServiceUnavailable
		}
		return c.JSON(code, Error{Code: code, Message: err.Error()})
	}
	defer sub.Close()

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already written the error response
		h.logger.WarnContext(c.Request().Context(), "websocket upgrade failed", "error", err)
		return nil
	}
	defer conn.Close()

	log := h.logger.With("topic", topic, "subscriber", sub.ID())
	log.DebugContext(c.Request().Context(), "stream opened")

	h.pump(conn, sub, log)

	log.DebugContext(c.Request().Context(), "stream closed")
	return nil
}

// pump writes events until the client goes away or the subscription ends.
func (h *StreamHandler) pump(conn *websocket.Conn, sub *notify.Subscription, log *slog.Logger) {
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		readUntilClosed(conn)
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-gone:
			return

		case event, ok := <-sub.Events():
			if !ok {
				code, reason := websocket.CloseGoingAway, "server shutting down"
				if sub.Evicted() {
					code, reason = websocket.CloseTryAgainLater, "subscriber too slow"
				}
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
				return
			}

			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				log.Warn("websocket write failed", "event", event.Name, "error", err)
				return
			}

		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// readUntilClosed discards client messages; it only exists to process control
// frames and notice disconnects.
func readUntilClosed(conn *websocket.Conn) {
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}
