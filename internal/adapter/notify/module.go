package notify

import (
	"log/slog"

	"go.uber.org/fx"
)

// Module provides the confirmation mailer.
var Module = fx.Provide(func(logger *slog.Logger) Mailer { return NewLogMailer(logger) })
