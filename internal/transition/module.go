package transition

import (
	"github.com/branchguard/branchguard/internal/changes"
	"github.com/branchguard/branchguard/internal/divergence"
	"github.com/branchguard/branchguard/internal/git"
	"github.com/branchguard/branchguard/internal/stash"
	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module(
		"transition",
		logger.WithNamedLogger("transition"),
		fx.Provide(func(c git.Collaborator) Branches { return c }, fx.Private),
		fx.Provide(func(i *changes.Inspector) ChangeSource { return i }, fx.Private),
		fx.Provide(func(m *stash.Manager) Stasher { return m }, fx.Private),
		fx.Provide(func(a *divergence.Analyzer) DivergenceDetector { return a }, fx.Private),
		fx.Provide(NewCoordinator),
	)
}
