package changes

import (
	"github.com/branchguard/branchguard/internal/git"
	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module(
		"changes",
		logger.WithNamedLogger("changes"),
		fx.Provide(func(c git.Collaborator) StatusReader { return c }, fx.Private),
		fx.Provide(NewInspector),
	)
}
