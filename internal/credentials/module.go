package credentials

import (
	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
)

type Config struct {
	// DefaultHostOS is used when a request does not declare its host.
	DefaultHostOS string
}

func Module() fx.Option {
	return fx.Module(
		"credentials",
		logger.WithNamedLogger("credentials"),
		fx.Provide(
			fx.Annotate(
				func(config Config) *StdinDelivery {
					return NewStdinDelivery(config.DefaultHostOS)
				},
				fx.As(new(Delivery)),
			),
		),
	)
}
