package merge

import (
	"github.com/branchguard/branchguard/internal/git"
	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module(
		"merge",
		logger.WithNamedLogger("merge"),
		fx.Provide(func(c git.Collaborator) Merger { return c }, fx.Private),
		fx.Provide(NewCoordinator),
	)
}
