package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/polkiloo/storefront/internal/capacity"
	"github.com/polkiloo/storefront/internal/config"
	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// CapacityUseCase answers pickup-slot questions and admits pickup orders.
type CapacityUseCase struct {
	calendar repository.CapacityCalendar
	orders   repository.OrderRepository
	mode     config.CapacityMode
	logger   *slog.Logger
}

// NewCapacityUseCase constructs CapacityUseCase.
func NewCapacityUseCase(calendar repository.CapacityCalendar, orders repository.OrderRepository, cfg *config.Config, logger *slog.Logger) *CapacityUseCase {
	mode := cfg.CapacityMode
	if mode == "" {
		mode = config.CapacityAtomic
	}
	return &CapacityUseCase{calendar: calendar, orders: orders, mode: mode, logger: logger}
}

// load fails closed: a calendar that cannot be read admits nothing.
func (u *CapacityUseCase) load(ctx context.Context) (*capacity.Calendar, error) {
	entries, err := u.calendar.Entries(ctx)
	if err != nil {
		u.logger.Error("capacity calendar unavailable", slog.String("error", err.Error()))
		return nil, fmt.Errorf("load capacity calendar: %w", domainErrors.ErrUpstreamUnavailable)
	}
	return capacity.NewCalendar(entries), nil
}

func (u *CapacityUseCase) limit(ctx context.Context, day string) (int, error) {
	cal, err := u.load(ctx)
	if err != nil {
		return 0, err
	}
	limit, ok := cal.Limit(day)
	if !ok {
		return 0, fmt.Errorf("%q: %w", day, domainErrors.ErrUnknownDate)
	}
	return limit, nil
}

// Check reports whether requested items still fit into day.
func (u *CapacityUseCase) Check(ctx context.Context, day string, requested int) (model.CapacityDay, error) {
	snapshot, err := u.Remaining(ctx, day)
	if err != nil {
		return model.CapacityDay{}, err
	}
	return capacity.Evaluate(snapshot.Date, snapshot.Limit, snapshot.Consumed, requested)
}

// Remaining returns the current snapshot of one day.
func (u *CapacityUseCase) Remaining(ctx context.Context, day string) (model.CapacityDay, error) {
	day = capacity.NormalizeKey(day)
	if day == "" {
		return model.CapacityDay{}, domainErrors.Invalid("pickupDay", "is required")
	}
	limit, err := u.limit(ctx, day)
	if err != nil {
		return model.CapacityDay{}, err
	}
	consumed, err := u.orders.ConsumedByDay(ctx, day)
	if err != nil {
		return model.CapacityDay{}, err
	}
	return model.CapacityDay{Date: day, Limit: limit, Consumed: consumed, Remaining: limit - consumed}, nil
}

// Status lists every calendar day with its consumption.
func (u *CapacityUseCase) Status(ctx context.Context) ([]model.CapacityDay, error) {
	cal, err := u.load(ctx)
	if err != nil {
		return nil, err
	}
	consumed, err := u.orders.ConsumedByAllDays(ctx)
	if err != nil {
		return nil, err
	}
	return cal.Status(consumed), nil
}

// Reserve persists a pickup order if its non-exempt items fit into the day.
//
// In atomic mode the store increments a per-day counter only while it stays under
// the limit, inside the insert transaction. In optimistic mode the check reads the
// current sum and inserts afterwards, so two concurrent submissions can both pass
// and overshoot the limit.
func (u *CapacityUseCase) Reserve(ctx context.Context, order *model.Order) (*model.Order, error) {
	day := capacity.NormalizeKey(order.PickupDay)
	order.PickupDay = day

	if u.mode == config.CapacityOptimistic {
		if _, err := u.Check(ctx, day, capacity.NonExemptCount(order.Cart)); err != nil {
			return nil, err
		}
		return u.orders.Create(ctx, order)
	}

	limit, err := u.limit(ctx, day)
	if err != nil {
		return nil, err
	}
	return u.orders.CreateWithinCapacity(ctx, order, limit)
}
