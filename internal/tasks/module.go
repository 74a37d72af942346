package tasks

import (
	"context"

	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module(
		"tasks",
		logger.WithNamedLogger("tasks"),
		fx.Provide(NewRunner),
		fx.Invoke(func(runner *Runner, logger *zap.Logger, lc fx.Lifecycle) {
			lc.Append(fx.Hook{
				OnStop: func(ctx context.Context) error {
					logger.Info("waiting for background tasks")
					return runner.Shutdown(ctx)
				},
			})
		}),
	)
}
