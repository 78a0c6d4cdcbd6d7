package events

import (
	"context"

	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module(
		"events",
		logger.WithNamedLogger("events"),
		fx.Provide(NewBroker),
		fx.Invoke(func(lc fx.Lifecycle, broker *Broker) {
			lc.Append(fx.Hook{
				OnStop: func(_ context.Context) error {
					broker.Close()
					return nil
				},
			})
		}),
	)
}
