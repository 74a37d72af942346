package branches

import (
	"errors"
	"fmt"

	"github.com/branchguard/branchguard/internal/server/handlers/common"
	"github.com/branchguard/branchguard/internal/server/validation"
	"github.com/branchguard/branchguard/internal/transition"
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
	r.Get("/changes", common.ErrorsHandler, h.changes)

	branches := r.Group("/branches")
	branches.Use(common.ErrorsHandler)
	branches.Get("/", validation.DecorateWithQueryEx(h.validator, h.list))
	branches.Post("/", validation.DecorateWithBodyEx(h.validator, h.create))

	r.Post("/switch", common.ErrorsHandler, h.switchErrors, validation.DecorateWithBodyEx(h.validator, h.switchTo))
}

func (h *Handler) changes(c *fiber.Ctx) error {
	set, err := h.workspaceSvc.Changes(c.Context())
	if err != nil {
		return fmt.Errorf("failed to inspect changes: %w", err)
	}

	return c.JSON(newChangesResponse(set))
}

func (h *Handler) list(c *fiber.Ctx, query *ListQuery) error {
	local, remote := true, false
	if query.Local != nil {
		local = *query.Local
	}
	if query.Remote != nil {
		remote = *query.Remote
	}

	branches, err := h.workspaceSvc.Branches(c.Context(), local, remote)
	if err != nil {
		return fmt.Errorf("failed to list branches: %w", err)
	}

	responses := make([]BranchResponse, len(branches))
	for i, branch := range branches {
		responses[i] = newBranchResponse(branch)
	}

	return c.JSON(responses)
}

func (h *Handler) create(c *fiber.Ctx, req *CreateRequest) error {
	if err := h.workspaceSvc.CreateBranch(c.Context(), req.Name); err != nil {
		return fmt.Errorf("failed to create branch: %w", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"name": req.Name})
}

func (h *Handler) switchTo(c *fiber.Ctx, req *SwitchRequest) error {
	result, err := h.workspaceSvc.Switch(c.Context(), req.Target, transition.Options{
		Force:     req.Force,
		AutoStash: req.AutoStash,
		Analyze:   req.Analyze,
		Window:    req.Window,
	})
	if err != nil {
		return err //nolint:wrapcheck //translated by switchErrors
	}

	response := SwitchResponse{
		Success:           result.Success,
		Message:           result.Message,
		Origin:            result.Origin,
		Target:            result.Target,
		Stashed:           result.Stashed,
		HadPendingChanges: result.HadPendingChanges,
	}
	if result.Divergence != nil {
		report := common.NewDivergenceResponse(*result.Divergence)
		response.Divergence = &report
	}

	return c.JSON(response)
}

// switchErrors renders a refused switch with its classification so the
// caller can offer stash, force or cancel.
func (h *Handler) switchErrors(c *fiber.Ctx) error {
	err := c.Next()
	if err == nil {
		return nil
	}

	var switchErr *transition.SwitchError
	if !errors.As(err, &switchErr) {
		return err
	}

	status := fiber.StatusInternalServerError
	switch switchErr.Kind {
	case transition.KindPendingChanges, transition.KindWouldOverwrite:
		status = fiber.StatusConflict
	case transition.KindBranchNotFound:
		status = fiber.StatusNotFound
	case transition.KindStashFailed, transition.KindUnknown:
	}

	return c.Status(status).JSON(SwitchErrorResponse{
		Kind:              switchErr.Kind,
		Reason:            switchErr.Reason,
		Origin:            switchErr.Origin,
		Target:            switchErr.Target,
		HadPendingChanges: switchErr.HadPendingChanges,
		Pending:           switchErr.Pending,
		Stashed:           switchErr.Stashed,
	})
}
