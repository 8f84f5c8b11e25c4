package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// CapacityCalendar is the read-only source of per-day pickup limits.
type CapacityCalendar interface {
	Entries(ctx context.Context) ([]model.CalendarEntry, error)
}
