package http

import (
	"tableorder/internal/core/domain/model/kernel"
)

// Error is the body of every non-2xx response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewOrderLine is one cart line in a submission.
type NewOrderLine struct {
	MenuItemID          string `json:"menuItemId"`
	Quantity            int    `json:"quantity"`
	SpecialInstructions string `json:"specialInstructions,omitempty"`
}

// NewOrderRequest is the body of POST /api/v1/orders.
type NewOrderRequest struct {
	TableNumber  string         `json:"tableNumber"`
	CustomerName string         `json:"customerName,omitempty"`
	Notes        string         `json:"notes,omitempty"`
	Items        []NewOrderLine `json:"items"`
}

// StatusRequest is the body of PATCH /api/v1/orders/:id/status.
type StatusRequest struct {
	Status string `json:"status"`
}

type MenuItem struct {
	ID     kernel.UUID  `json:"id"`
	Name   string       `json:"name"`
	Price  kernel.Money `json:"price"`
	Active bool         `json:"active"`
}
