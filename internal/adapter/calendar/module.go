package calendar

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-redis/redis/v8"
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// Module exposes the capacity calendar to fx graph.
var Module = fx.Provide(newCalendar)

type calendarParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newCalendar(p calendarParams) (repository.CapacityCalendar, error) {
	client, err := NewHTTPClient(p.Config.CalendarURL, p.Config.CalendarTimeout, p.Logger)
	if err != nil {
		return nil, err
	}
	if p.Config.RedisURL == "" || p.Config.CalendarCacheTTL <= 0 {
		return client, nil
	}

	opts, err := redis.ParseURL(p.Config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	cache := NewCache(client, redis.NewClient(opts), p.Config.CalendarCacheTTL, p.Logger)
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return cache.Close()
		},
	})
	return cache, nil
}
