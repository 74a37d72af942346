package stash

import (
	"github.com/branchguard/branchguard/internal/changes"
	"github.com/branchguard/branchguard/internal/git"
	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module(
		"stash",
		logger.WithNamedLogger("stash"),
		fx.Provide(func(c git.Collaborator) Shelf { return c }, fx.Private),
		fx.Provide(func(i *changes.Inspector) ChangeSource { return i }, fx.Private),
		fx.Provide(NewManager),
	)
}
