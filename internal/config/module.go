package config

import (
	"path/filepath"

	"github.com/branchguard/branchguard/internal/changes"
	"github.com/branchguard/branchguard/internal/divergence"
	"github.com/branchguard/branchguard/internal/git"
	"github.com/branchguard/branchguard/internal/repolock"
	"github.com/branchguard/branchguard/internal/tasks"
	"github.com/branchguard/branchguard/internal/watcher"
	"github.com/branchguard/branchguard/internal/workspace"
	"github.com/branchguard/branchguard/pkg/badgerfx"
	"github.com/go-core-fx/fiberfx"
	"go.uber.org/fx"
)

const lockFile = "branchguard.lock"

func Module() fx.Option {
	return fx.Module(
		"config",
		fx.Provide(New),
		fx.Provide(func(cfg Config) fiberfx.Config {
			return fiberfx.Config{
				Address:     cfg.HTTP.Address,
				ProxyHeader: cfg.HTTP.ProxyHeader,
				Proxies:     cfg.HTTP.Proxies,
			}
		}),
		fx.Provide(func(cfg Config) badgerfx.Config {
			return badgerfx.Config{
				Dir:      cfg.Storage.DataDir,
				InMemory: cfg.Storage.InMemory,
			}
		}),
		fx.Provide(func(cfg Config) git.Config {
			return git.Config{
				Path:         cfg.Repository.Path,
				Binary:       cfg.Git.Binary,
				Timeout:      cfg.Git.Timeout,
				MergeMessage: cfg.Git.MergeMessage,
			}
		}),
		fx.Provide(func(cfg Config) changes.Config {
			return changes.Config{
				IgnoredDirs: cfg.Git.IgnoredDirs,
			}
		}),
		fx.Provide(func(cfg Config) divergence.Config {
			return divergence.Config{
				Window:      cfg.Git.DivergenceWindow,
				DiffContext: cfg.Git.DiffContext,
			}
		}),
		fx.Provide(func(cfg Config) repolock.Config {
			path := cfg.Git.LockPath
			if path == "" {
				path = filepath.Join(cfg.Repository.Path, ".git", lockFile)
			}

			return repolock.Config{
				Path:    path,
				Timeout: cfg.Git.LockTimeout,
			}
		}),
		fx.Provide(func(cfg Config) workspace.Config {
			return workspace.Config{
				InitIfMissing:  cfg.Repository.InitIfMissing,
				IgnoreTemplate: cfg.Repository.IgnoreTemplate,
			}
		}),
		fx.Provide(func(cfg Config) watcher.Config {
			return watcher.Config{
				Enabled:  cfg.Watcher.Enabled,
				Debounce: cfg.Watcher.Debounce,
			}
		}),
		fx.Provide(func(cfg Config) tasks.Config {
			return tasks.Config{
				Retention: cfg.Tasks.Retention,
			}
		}),
	)
}
