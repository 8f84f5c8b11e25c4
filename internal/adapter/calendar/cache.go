package calendar

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

const cacheKey = "storefront:capacity:calendar"

// Cache keeps the last successful calendar download in Redis for a short TTL.
// Redis failures fall through to the source.
type Cache struct {
	source repository.CapacityCalendar
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCache decorates source with a Redis read-through cache.
func NewCache(source repository.CapacityCalendar, client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{source: source, client: client, ttl: ttl, logger: logger}
}

// Entries returns cached entries or refreshes them from the source.
func (c *Cache) Entries(ctx context.Context) ([]model.CalendarEntry, error) {
	raw, err := c.client.Get(ctx, cacheKey).Bytes()
	switch {
	case err == nil:
		var entries []model.CalendarEntry
		if jsonErr := json.Unmarshal(raw, &entries); jsonErr == nil {
			return entries, nil
		}
		c.logger.Warn("discarding corrupt calendar cache entry")
	case err != redis.Nil:
		c.logger.Warn("calendar cache read failed", slog.String("error", err.Error()))
	}

	entries, err := c.source.Entries(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		return entries, nil
	}
	if err := c.client.Set(ctx, cacheKey, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("calendar cache write failed", slog.String("error", err.Error()))
	}
	return entries, nil
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}
