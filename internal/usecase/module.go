package usecase

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
)

// Module provides core business use cases to the fx container.
var Module = fx.Options(
	fx.Provide(
		NewAdminAuthUseCase,
		NewOrderUseCase,
		NewCapacityUseCase,
		NewCheckoutUseCase,
	),
	fx.Invoke(registerAdminSeed),
)

func registerAdminSeed(lc fx.Lifecycle, auth *AdminAuthUseCase, cfg *config.Config, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			admin, err := auth.EnsureAdmin(ctx, cfg.AdminLogin, cfg.AdminPassword)
			if err != nil {
				return err
			}
			if admin == nil {
				logger.Warn("admin credentials are not configured; admin endpoints are unreachable")
			}
			return nil
		},
	})
}
