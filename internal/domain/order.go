package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a purchase record owned by a user. StatusID is not validated
// against a status catalogue; any value is accepted.
type Order struct {
	ID        int64
	UserID    int64
	StatusID  int64
	Total     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}
