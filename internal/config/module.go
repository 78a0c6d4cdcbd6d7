package config

import (
	"fmt"

	"github.com/apiarycd/svndesk/internal/audit"
	"github.com/apiarycd/svndesk/internal/credentials"
	"github.com/apiarycd/svndesk/internal/process"
	"github.com/go-core-fx/fiberfx"
	"github.com/google/shlex"
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module(
		"config",
		fx.Provide(New),
		fx.Provide(func(cfg Config) fiberfx.Config {
			return fiberfx.Config{
				Address:     cfg.HTTP.Address,
				ProxyHeader: cfg.HTTP.ProxyHeader,
				Proxies:     cfg.HTTP.Proxies,
			}
		}),
		fx.Provide(func(cfg Config) (process.Config, error) {
			globalArgs, err := shlex.Split(cfg.SVN.GlobalArgs)
			if err != nil {
				return process.Config{}, fmt.Errorf("failed to parse svn.global_args: %w", err)
			}

			return process.Config{
				Binary:     cfg.SVN.Binary,
				GlobalArgs: globalArgs,
			}, nil
		}),
		fx.Provide(func(cfg Config) credentials.Config {
			return credentials.Config{
				DefaultHostOS: cfg.SVN.HostOS,
			}
		}),
		fx.Provide(func(cfg Config) audit.Config {
			return audit.Config{
				Dir:             cfg.Audit.Dir,
				FileName:        cfg.Audit.FileName,
				TruncateOnStart: cfg.Audit.TruncateOnStart,
			}
		}),
	)
}
