package domain

import "time"

// User is the read-only customer record that owns orders.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
