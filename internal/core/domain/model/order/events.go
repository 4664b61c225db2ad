package order

import (
	"strings"
	"time"

	"tableorder/internal/core/domain/model/kernel"
)

// Lifecycle event names published on the notification bus.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status-changed"
)

// GlobalTopic carries every order event; kitchen and admin views subscribe to it.
const GlobalTopic = "orders"

const topicPrefix = GlobalTopic + "."

// Topic is the fine-grained topic of a single order, for a customer tracking it.
func Topic(id kernel.UUID) string {
	return topicPrefix + id.String()
}

// ParseTopic accepts GlobalTopic or a per-order topic. For a per-order topic the
// order id is returned with ok set; for the global topic the id is zero.
func ParseTopic(topic string) (id kernel.UUID, ok bool, err error) {
	if topic == GlobalTopic {
		return kernel.UUID{}, false, nil
	}

	raw, found := strings.CutPrefix(topic, topicPrefix)
	if !found {
		raw = topic
	}

	id, err = kernel.UUIDFromString(raw)
	if err != nil {
		return kernel.UUID{}, false, err
	}
	return id, true, nil
}

// StatusChanged is the payload of EventOrderStatusChanged.
type StatusChanged struct {
	OrderID        kernel.UUID `json:"orderId"`
	PreviousStatus Status      `json:"previousStatus"`
	NewStatus      Status      `json:"newStatus"`
	ChangedAt      time.Time   `json:"changedAt"`
}

// ItemSnapshot is the serializable form of an order line.
type ItemSnapshot struct {
	MenuItemID kernel.UUID  `json:"menuItemId"`
	Name       string       `json:"name"`
	UnitPrice  kernel.Money `json:"unitPrice"`
	Quantity   int          `json:"quantity"`
	Notes      string       `json:"notes,omitempty"`
}

// Snapshot is the serializable form of an order. It is the payload of
// EventOrderCreated and the body of API responses.
type Snapshot struct {
	ID           kernel.UUID    `json:"id"`
	TableNumber  string         `json:"tableNumber"`
	CustomerName string         `json:"customerName,omitempty"`
	Notes        string         `json:"notes,omitempty"`
	CreatedBy    string         `json:"createdBy,omitempty"`
	Status       Status         `json:"status"`
	Items        []ItemSnapshot `json:"items"`
	Subtotal     kernel.Money   `json:"subtotal"`
	Tax          kernel.Money   `json:"tax"`
	Total        kernel.Money   `json:"total"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// Snapshot copies the order into its serializable form.
func (o *Order) Snapshot() Snapshot {
	items := make([]ItemSnapshot, 0, len(o.items))
	for _, it := range o.items {
		items = append(items, ItemSnapshot{
			MenuItemID: it.menuItemID,
			Name:       it.name,
			UnitPrice:  it.unitPrice,
			Quantity:   it.quantity,
			Notes:      it.notes,
		})
	}

	return Snapshot{
		ID:           o.id,
		TableNumber:  o.tableNumber,
		CustomerName: o.details.CustomerName,
		Notes:        o.details.Notes,
		CreatedBy:    o.details.CreatedBy,
		Status:       o.status,
		Items:        items,
		Subtotal:     o.totals.Subtotal,
		Tax:          o.totals.Tax,
		Total:        o.totals.Total,
		CreatedAt:    o.createdAt,
		UpdatedAt:    o.updatedAt,
	}
}
