package divergence

import (
	"github.com/branchguard/branchguard/internal/git"
	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module(
		"divergence",
		logger.WithNamedLogger("divergence"),
		fx.Provide(func(c git.Collaborator) History { return c }, fx.Private),
		fx.Provide(NewAnalyzer),
	)
}
