package merge

import (
	"errors"
	"fmt"

	"github.com/branchguard/branchguard/internal/merge"
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
	r = r.Group("/merge")

	r.Use(h.errorsHandler)
	r.Get("/", h.state)
	r.Post("/", validation.DecorateWithBodyEx(h.validator, h.merge))
	r.Get("/conflicts", h.conflicts)
	r.Post("/resolve", validation.DecorateWithBodyEx(h.validator, h.resolve))
	r.Post("/continue", h.continueMerge)
	r.Post("/abort", h.abort)
}

func (h *Handler) state(c *fiber.Ctx) error {
	state, err := h.workspaceSvc.MergeState(c.Context())
	if err != nil {
		return fmt.Errorf("failed to get merge state: %w", err)
	}

	files := state.OpenFiles
	if files == nil {
		files = []string{}
	}

	return c.JSON(StateResponse{
		Phase:      state.Phase,
		Branch:     state.Branch,
		InProgress: state.InProgress,
		OpenFiles:  files,
	})
}

func (h *Handler) merge(c *fiber.Ctx, req *MergeRequest) error {
	if req.Async {
		task, err := h.workspaceSvc.MergeAsync(req.Branch)
		if err != nil {
			return fmt.Errorf("failed to schedule merge: %w", err)
		}
		return c.Status(fiber.StatusAccepted).JSON(common.NewTaskResponse(task))
	}

	outcome, err := h.workspaceSvc.Merge(c.Context(), req.Branch)
	if err != nil {
		return fmt.Errorf("failed to merge: %w", err)
	}

	return c.JSON(outcome)
}

func (h *Handler) conflicts(c *fiber.Ctx) error {
	files, err := h.workspaceSvc.Conflicts(c.Context())
	if err != nil {
		return fmt.Errorf("failed to list conflicts: %w", err)
	}
	if files == nil {
		files = []string{}
	}

	return c.JSON(ConflictsResponse{Files: files})
}

func (h *Handler) resolve(c *fiber.Ctx, req *ResolveRequest) error {
	if err := h.workspaceSvc.Resolve(c.Context(), req.Path, req.Side); err != nil {
		return fmt.Errorf("failed to resolve conflict: %w", err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) continueMerge(c *fiber.Ctx) error {
	if err := h.workspaceSvc.ContinueMerge(c.Context()); err != nil {
		return fmt.Errorf("failed to continue merge: %w", err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) abort(c *fiber.Ctx) error {
	if err := h.workspaceSvc.AbortMerge(c.Context()); err != nil {
		return fmt.Errorf("failed to abort merge: %w", err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) errorsHandler(c *fiber.Ctx) error {
	err := c.Next()
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, merge.ErrMergeInProgress),
		errors.Is(err, merge.ErrNoMergeInProgress),
		errors.Is(err, merge.ErrUnresolvedConflicts),
		errors.Is(err, merge.ErrNotConflicted):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, merge.ErrInvalidSide):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return common.Translate(err)
}
