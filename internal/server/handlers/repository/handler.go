package repository

import (
	"fmt"

	"github.com/branchguard/branchguard/internal/server/handlers/common"
	"github.com/branchguard/branchguard/internal/server/validation"
	"github.com/branchguard/branchguard/internal/workspace"
	"github.com/go-core-fx/fiberfx/handler"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Handler struct {
	workspaceSvc *workspace.Service

	validator *validator.Validate
	logger    *zap.Logger
}

func NewHandler(workspaceSvc *workspace.Service, validator *validator.Validate, logger *zap.Logger) handler.Handler {
	return &Handler{
		workspaceSvc: workspaceSvc,

		validator: validator,
		logger:    logger,
	}
}

// Register implements handler.Handler.
func (h *Handler) Register(r fiber.Router) {
	r.Post("/commit", common.ErrorsHandler, validation.DecorateWithBodyEx(h.validator, h.commit))
	r.Post("/reset", common.ErrorsHandler, validation.DecorateWithBodyEx(h.validator, h.reset))

	sync := r.Group("/sync")
	sync.Use(common.ErrorsHandler)
	sync.Post("/:action", validation.DecorateWithQueryEx(h.validator, h.sync))
}

func (h *Handler) commit(c *fiber.Ctx, req *CommitRequest) error {
	if err := h.workspaceSvc.Commit(c.Context(), req.Message, req.Paths); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return c.SendStatus(fiber.StatusCreated)
}

func (h *Handler) reset(c *fiber.Ctx, req *ResetRequest) error {
	if err := h.workspaceSvc.Reset(c.Context(), req.Hash, req.Mode); err != nil {
		return fmt.Errorf("failed to reset: %w", err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) sync(c *fiber.Ctx, query *SyncQuery) error {
	action := workspace.SyncAction(c.Params("action"))
	if !action.Valid() {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("unknown sync action %q", action))
	}

	if query.Async {
		task, err := h.workspaceSvc.SyncAsync(action)
		if err != nil {
			return fmt.Errorf("failed to schedule %s: %w", action, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(common.NewTaskResponse(task))
	}

	if err := h.workspaceSvc.Sync(c.Context(), action); err != nil {
		return fmt.Errorf("failed to %s: %w", action, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
