// Package capacity implements pickup-day capacity accounting.
package capacity

import (
	"strings"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

const trailingNoise = ",.;:! \t"

// NormalizeKey trims a date string, collapses inner whitespace and strips trailing punctuation.
func NormalizeKey(s string) string {
	key := strings.Join(strings.Fields(s), " ")
	return strings.TrimRight(key, trailingNoise)
}

// NonExemptCount sums quantities of the items that consume capacity.
func NonExemptCount(items []model.CartItem) int {
	count := 0
	for _, item := range items {
		if !item.Exempt {
			count += item.Quantity
		}
	}
	return count
}

// Evaluate decides whether requested items fit into the day.
// It returns the resulting day snapshot, or a CapacityExceededError.
func Evaluate(day string, limit, consumed, requested int) (model.CapacityDay, error) {
	remaining := limit - consumed
	if requested > remaining {
		return model.CapacityDay{Date: day, Limit: limit, Consumed: consumed, Remaining: remaining},
			&domainErrors.CapacityExceededError{Day: day, Remaining: max(remaining, 0), Requested: requested}
	}
	return model.CapacityDay{
		Date:      day,
		Limit:     limit,
		Consumed:  consumed + requested,
		Remaining: remaining - requested,
	}, nil
}

// Calendar is an index over the published per-day limits.
type Calendar struct {
	order  []string
	limits map[string]int
}

// NewCalendar indexes entries by normalised key. The first entry for a key wins.
func NewCalendar(entries []model.CalendarEntry) *Calendar {
	c := &Calendar{limits: make(map[string]int, len(entries))}
	for _, e := range entries {
		key := NormalizeKey(e.Date)
		if key == "" {
			continue
		}
		if _, exists := c.limits[key]; exists {
			continue
		}
		c.limits[key] = e.Limit
		c.order = append(c.order, key)
	}
	return c
}

// Limit returns the limit of a day, looked up by normalised key.
func (c *Calendar) Limit(day string) (int, bool) {
	limit, ok := c.limits[NormalizeKey(day)]
	return limit, ok
}

// Days returns normalised keys in calendar order.
func (c *Calendar) Days() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Status joins limits with consumption, keyed by normalised day.
func (c *Calendar) Status(consumed map[string]int) []model.CapacityDay {
	normalized := make(map[string]int, len(consumed))
	for day, n := range consumed {
		normalized[NormalizeKey(day)] += n
	}
	out := make([]model.CapacityDay, 0, len(c.order))
	for _, day := range c.order {
		limit := c.limits[day]
		used := normalized[day]
		out = append(out, model.CapacityDay{Date: day, Limit: limit, Consumed: used, Remaining: limit - used})
	}
	return out
}
