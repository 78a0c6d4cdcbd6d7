package svn

import (
	"github.com/apiarycd/svndesk/internal/audit"
	"github.com/apiarycd/svndesk/internal/events"
	"github.com/apiarycd/svndesk/internal/workingcopy"
	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module(
		"svn",
		logger.WithNamedLogger("svn"),
		fx.Provide(workingcopy.NewParser, fx.Private),
		fx.Provide(func(l *audit.Logger) Auditor { return l }, fx.Private),
		fx.Provide(func(b *events.Broker) Emitter { return b }, fx.Private),
		fx.Provide(NewService),
	)
}
