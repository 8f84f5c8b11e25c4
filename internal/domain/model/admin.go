package model

import "time"

// Admin is an operator allowed to view orders.
type Admin struct {
	ID           int64
	Login        string
	PasswordHash string
	CreatedAt    time.Time
}
