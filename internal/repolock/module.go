package repolock

import (
	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module(
		"repolock",
		logger.WithNamedLogger("repolock"),
		fx.Provide(New),
	)
}
