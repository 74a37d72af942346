package server

import (
	"github.com/branchguard/branchguard/internal/server/handlers/activity"
	"github.com/branchguard/branchguard/internal/server/handlers/branches"
	"github.com/branchguard/branchguard/internal/server/handlers/divergence"
	"github.com/branchguard/branchguard/internal/server/handlers/merge"
	"github.com/branchguard/branchguard/internal/server/handlers/repository"
	"github.com/branchguard/branchguard/internal/server/handlers/stashes"
	"github.com/go-core-fx/fiberfx"
	"github.com/go-core-fx/fiberfx/handler"
	"github.com/go-core-fx/fiberfx/health"
	"github.com/go-core-fx/fiberfx/validation"
	"github.com/go-core-fx/logger"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module(
		"server",
		logger.WithNamedLogger("server"),

		fx.Provide(func(log *zap.Logger) fiberfx.Options {
			opts := fiberfx.Options{}
			opts.WithErrorHandler(fiberfx.NewJSONErrorHandler(log))
			opts.WithMetrics()
			return opts
		}),

		fx.Provide(
			fx.Annotate(health.NewHandler, fx.ResultTags(`name:"health-handler"`)), fx.Private,
			fx.Annotate(branches.NewHandler, fx.ResultTags(`group:"handlers"`)), fx.Private,
			fx.Annotate(divergence.NewHandler, fx.ResultTags(`group:"handlers"`)), fx.Private,
			fx.Annotate(stashes.NewHandler, fx.ResultTags(`group:"handlers"`)), fx.Private,
			fx.Annotate(merge.NewHandler, fx.ResultTags(`group:"handlers"`)), fx.Private,
			fx.Annotate(repository.NewHandler, fx.ResultTags(`group:"handlers"`)), fx.Private,
			fx.Annotate(activity.NewHandler, fx.ResultTags(`group:"handlers"`)), fx.Private,
		),

		fx.Invoke(
			fx.Annotate(
				func(handlers []handler.Handler, healthHandler handler.Handler, app *fiber.App) {
					healthHandler.Register(app)

					v1 := app.Group("/api/v1")
					v1.Use(validation.Middleware)

					for _, h := range handlers {
						h.Register(v1)
					}
				},
				fx.ParamTags(`group:"handlers"`, `name:"health-handler"`),
			),
		),
	)
}
