package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind enumerates order lifecycle notifications.
type Kind string

const (
	KindOrderCreated       Kind = "order_created"
	KindOrderStatusChanged Kind = "order_status_changed"
)

// Event is an in-request notification value. It is never persisted.
type Event struct {
	ID        string
	Kind      Kind
	OrderID   int64
	UserID    int64
	StatusID  int64
	Total     decimal.Decimal
	Recipient string
	Text      string
	Timestamp time.Time
}

// New stamps an event with a fresh id and the current time.
func New(kind Kind, orderID int64) Event {
	return Event{
		ID:        uuid.NewString(),
		Kind:      kind,
		OrderID:   orderID,
		Timestamp: time.Now().UTC(),
	}
}

// QueuePayload is the JSON body sent to the work queue when an order is created.
type QueuePayload struct {
	OrderID  int64       `json:"orderId"`
	UserID   int64       `json:"userId"`
	Email    string      `json:"email"`
	StatusID int64       `json:"statusId"`
	Total    json.Number `json:"total"`
}

// QueuePayload projects the event onto the queue message shape.
func (e Event) QueuePayload() QueuePayload {
	return QueuePayload{
		OrderID:  e.OrderID,
		UserID:   e.UserID,
		Email:    e.Recipient,
		StatusID: e.StatusID,
		Total:    json.Number(e.Total.String()),
	}
}
