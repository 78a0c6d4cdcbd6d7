package audit

import (
	"context"

	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module(
		"audit",
		logger.WithNamedLogger("audit"),
		fx.Provide(NewPathResolver, fx.Private),
		fx.Provide(NewLogger),
		fx.Invoke(func(lc fx.Lifecycle, config Config, auditLog *Logger, logger *zap.Logger) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					path, err := auditLog.Path()
					if err != nil {
						logger.Warn("audit log unavailable", zap.Error(err))
						return nil
					}

					if config.TruncateOnStart {
						if resetErr := auditLog.Reset(); resetErr != nil {
							logger.Warn("failed to reset audit log", zap.String("path", path), zap.Error(resetErr))
							return nil
						}
					}

					logger.Info("audit log ready", zap.String("path", path))
					return nil
				},
			})
		}),
	)
}
