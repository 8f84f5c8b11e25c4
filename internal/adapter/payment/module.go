package payment

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
)

// Module exposes the payment gateway to fx graph.
var Module = fx.Provide(newGateway)

type gatewayParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newGateway(p gatewayParams) Gateway {
	if p.Config.StripeSecretKey == "" {
		p.Logger.Warn("stripe secret key is not set; card checkout is disabled")
	}
	return NewStripeGateway(p.Config.StripeSecretKey, p.Config.StripeWebhookSecret, p.Logger)
}
