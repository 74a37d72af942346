package activity

import (
	"errors"
	"fmt"

	"github.com/branchguard/branchguard/internal/history"
	"github.com/branchguard/branchguard/internal/server/handlers/common"
	"github.com/branchguard/branchguard/internal/server/validation"
	"github.com/branchguard/branchguard/internal/tasks"
	"github.com/branchguard/branchguard/internal/workspace"
	"github.com/go-core-fx/fiberfx/handler"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
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
	r.Get("/history", h.errorsHandler, validation.DecorateWithQueryEx(h.validator, h.history))
	r.Get("/tasks/:id", h.errorsHandler, h.task)
}

func (h *Handler) history(c *fiber.Ctx, query *HistoryQuery) error {
	entries, err := h.workspaceSvc.History(c.Context(), history.Filter{
		Operation: query.Operation,
		Limit:     query.Limit,
	})
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	responses := make([]EntryResponse, len(entries))
	for i, entry := range entries {
		responses[i] = newEntryResponse(entry)
	}

	return c.JSON(responses)
}

func (h *Handler) task(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	task, err := h.workspaceSvc.Task(id)
	if err != nil {
		return fmt.Errorf("failed to get task: %w", err)
	}

	return c.JSON(common.NewTaskResponse(task))
}

func (h *Handler) errorsHandler(c *fiber.Ctx) error {
	err := c.Next()
	if err == nil {
		return nil
	}

	if errors.Is(err, tasks.ErrNotFound) || errors.Is(err, history.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	return common.Translate(err)
}
