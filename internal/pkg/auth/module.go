package auth

import (
	"time"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
)

const adminSessionTTL = 12 * time.Hour

// Module provides authentication primitives via fx.
var Module = fx.Options(
	fx.Provide(newPasswordHasher),
	fx.Provide(newTokenStrategy),
)

func newPasswordHasher() PasswordHasher {
	return NewBcryptHasher(0)
}

type strategyParams struct {
	fx.In

	Config *config.Config
}

func newTokenStrategy(p strategyParams) Strategy {
	return NewHMACStrategy(p.Config.AdminTokenSecret, Options{TTL: adminSessionTTL})
}
