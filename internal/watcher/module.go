package watcher

import (
	"context"

	"github.com/branchguard/branchguard/internal/git"
	"github.com/go-core-fx/logger"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module(
		"watcher",
		logger.WithNamedLogger("watcher"),
		fx.Provide(func(s *git.Service) Probe { return s }, fx.Private),
		fx.Provide(
			func(registerer prometheus.Registerer) *metrics { return newMetrics(registerer) },
			fx.Private,
		),
		fx.Provide(New),
		fx.Invoke(func(w *Watcher, config Config, logger *zap.Logger, lc fx.Lifecycle) {
			if !config.Enabled {
				logger.Info("repository watcher disabled")
				return
			}

			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					// the API stays usable without a watcher
					if err := w.Start(ctx); err != nil {
						logger.Warn("repository watcher not started", zap.Error(err))
					}
					return nil
				},
				OnStop: func(_ context.Context) error {
					return w.Stop()
				},
			})
		}),
	)
}
