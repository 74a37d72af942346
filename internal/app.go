package internal

import (
	"context"

	"github.com/branchguard/branchguard/internal/changes"
	"github.com/branchguard/branchguard/internal/config"
	"github.com/branchguard/branchguard/internal/divergence"
	"github.com/branchguard/branchguard/internal/git"
	"github.com/branchguard/branchguard/internal/history"
	"github.com/branchguard/branchguard/internal/merge"
	"github.com/branchguard/branchguard/internal/repolock"
	"github.com/branchguard/branchguard/internal/server"
	"github.com/branchguard/branchguard/internal/stash"
	"github.com/branchguard/branchguard/internal/tasks"
	"github.com/branchguard/branchguard/internal/transition"
	"github.com/branchguard/branchguard/internal/watcher"
	"github.com/branchguard/branchguard/internal/workspace"
	"github.com/branchguard/branchguard/pkg/badgerfx"
	"github.com/capcom6/go-infra-fx/validator"
	"github.com/go-core-fx/fiberfx"
	"github.com/go-core-fx/healthfx"
	"github.com/go-core-fx/logger"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Run() {
	fx.New(
		// CORE MODULES
		logger.Module(),
		logger.WithFxDefaultLogger(),
		badgerfx.Module(),
		healthfx.Module(),
		fiberfx.Module(),
		validator.Module,
		fx.Provide(func() prometheus.Registerer { return prometheus.DefaultRegisterer }),
		//
		// APP MODULES
		config.Module(),
		server.Module(),
		//
		// BUSINESS MODULES
		fx.Provide(func() healthfx.Version { return healthfx.Version{Version: "0.1.0", ReleaseID: 1} }),
		git.Module(),
		changes.Module(),
		stash.Module(),
		divergence.Module(),
		transition.Module(),
		merge.Module(),
		repolock.Module(),
		history.Module(),
		tasks.Module(),
		// workspace prepares the repository on start, so it goes before the watcher
		workspace.Module(),
		watcher.Module(),
		//
		// LIFECYCLE MANAGEMENT
		fx.Invoke(func(lc fx.Lifecycle, logger *zap.Logger) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					logger.Info("branchguard starting up")
					return nil
				},
				OnStop: func(_ context.Context) error {
					logger.Info("branchguard shutting down gracefully")
					return nil
				},
			})
		}),
	).Run()
}
