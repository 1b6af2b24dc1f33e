package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderRequest payload for POST /.
type CreateOrderRequest struct {
	UserID   int64           `json:"userId"`
	StatusID int64           `json:"statusId"`
	Products json.RawMessage `json:"products"`
	Total    decimal.Decimal `json:"total"`
	Email    string          `json:"email"`
}

// UpdateStatusRequest payload for PUT /status.
type UpdateStatusRequest struct {
	OrderID  int64 `json:"orderId"`
	StatusID int64 `json:"statusId"`
	UserID   int64 `json:"userId"`
}

// OrderResponse is the JSON shape of an order.
type OrderResponse struct {
	ID        int64       `json:"id"`
	UserID    int64       `json:"userId"`
	StatusID  int64       `json:"statusId"`
	Total     json.Number `json:"total"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// OrderWithCustomerResponse augments an order with its owner's name.
type OrderWithCustomerResponse struct {
	OrderResponse
	CustomerName string `json:"customerName"`
}
