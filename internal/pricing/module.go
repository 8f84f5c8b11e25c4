package pricing

import (
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
)

// Module provides the pricing engine built from configured tables.
var Module = fx.Provide(newEngine)

func newEngine(cfg *config.Config) (*Engine, error) {
	tables, err := LoadTables(cfg.PricingFile)
	if err != nil {
		return nil, err
	}
	return NewEngine(tables), nil
}
