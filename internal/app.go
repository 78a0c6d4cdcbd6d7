package internal

import (
	"context"
	"fmt"

	"github.com/apiarycd/svndesk/internal/audit"
	"github.com/apiarycd/svndesk/internal/config"
	"github.com/apiarycd/svndesk/internal/credentials"
	"github.com/apiarycd/svndesk/internal/events"
	"github.com/apiarycd/svndesk/internal/process"
	"github.com/apiarycd/svndesk/internal/server"
	"github.com/apiarycd/svndesk/internal/svn"
	"github.com/capcom6/go-infra-fx/validator"
	"github.com/go-core-fx/fiberfx"
	"github.com/go-core-fx/healthfx"
	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Version is set at build time.
var Version = "0.0.1"

func businessModules() fx.Option {
	return fx.Options(
		config.Module(),
		process.Module(),
		audit.Module(),
		credentials.Module(),
		events.Module(),
		svn.Module(),
	)
}

func Run() {
	fx.New(
		// CORE MODULES
		logger.Module(),
		logger.WithFxDefaultLogger(),
		healthfx.Module(),
		fiberfx.Module(),
		validator.Module,
		//
		// APP MODULES
		server.Module(),
		//
		// BUSINESS MODULES
		fx.Provide(func() healthfx.Version { return healthfx.Version{Version: Version, ReleaseID: 1} }),
		businessModules(),
		//
		// LIFECYCLE MANAGEMENT
		fx.Invoke(func(lc fx.Lifecycle, logger *zap.Logger) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					logger.Info("🚀 svndesk application starting up")
					return nil
				},
				OnStop: func(_ context.Context) error {
					logger.Info("🛑 svndesk application shutting down gracefully")
					return nil
				},
			})
		}),
	).Run()
}

// Invoke builds the business modules without the HTTP server and calls fn
// with its dependencies. The application is never started, so the audit log
// is appended to but not truncated.
func Invoke(fn any) error {
	app := fx.New(
		fx.NopLogger,
		logger.Module(),
		businessModules(),
		fx.Invoke(fn),
	)

	if err := app.Err(); err != nil {
		return fmt.Errorf("failed to run command: %w", err)
	}

	return nil
}
