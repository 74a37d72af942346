package workspace

import (
	"context"

	"github.com/branchguard/branchguard/internal/git"
	"github.com/go-core-fx/logger"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module(
		"workspace",
		logger.WithNamedLogger("workspace"),
		fx.Provide(func(s *git.Service) Repository { return s }, fx.Private),
		fx.Provide(
			func(registerer prometheus.Registerer) *metrics { return newMetrics(registerer) },
			fx.Private,
		),
		fx.Provide(NewService),
		fx.Invoke(func(s *Service, lc fx.Lifecycle) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					return s.Prepare(ctx)
				},
			})
		}),
	)
}
