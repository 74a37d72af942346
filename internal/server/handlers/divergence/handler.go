package divergence

import (
	"errors"
	"fmt"

	"github.com/branchguard/branchguard/internal/divergence"
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
	r.Get("/divergence", h.errorsHandler, validation.DecorateWithQueryEx(h.validator, h.divergence))
	r.Get("/feasibility", h.errorsHandler, validation.DecorateWithQueryEx(h.validator, h.feasibility))
	r.Get("/compare", h.errorsHandler, validation.DecorateWithQueryEx(h.validator, h.compare))
}

func (h *Handler) divergence(c *fiber.Ctx, query *DivergenceQuery) error {
	report, err := h.workspaceSvc.Divergence(c.Context(), query.BranchA, query.BranchB, query.Window)
	if err != nil {
		return fmt.Errorf("failed to detect divergence: %w", err)
	}

	return c.JSON(common.NewDivergenceResponse(report))
}

func (h *Handler) feasibility(c *fiber.Ctx, query *FeasibilityQuery) error {
	result, err := h.workspaceSvc.Feasibility(c.Context(), query.Source)
	if err != nil {
		return fmt.Errorf("failed to check merge feasibility: %w", err)
	}

	return c.JSON(FeasibilityResponse{
		Current:       result.Current,
		Source:        result.Source,
		IsFastForward: result.IsFastForward,
		CommitsAhead:  result.CommitsAhead,
		CommitsBehind: result.CommitsBehind,
		RequiresMerge: result.RequiresMerge,
	})
}

func (h *Handler) compare(c *fiber.Ctx, query *CompareQuery) error {
	result, err := h.workspaceSvc.CompareFile(c.Context(), query.Path, query.BranchA, query.BranchB)
	if err != nil {
		return fmt.Errorf("failed to compare file: %w", err)
	}

	return c.JSON(CompareResponse{
		Path:      result.Path,
		A:         FileVersion(result.A),
		B:         FileVersion(result.B),
		Identical: result.Identical,
		Diff:      result.Diff,
	})
}

func (h *Handler) errorsHandler(c *fiber.Ctx) error {
	err := c.Next()
	if err == nil {
		return nil
	}

	// An unreadable branch is almost always a bad name from the caller.
	if errors.Is(err, divergence.ErrInspectionFailed) || errors.Is(err, divergence.ErrFeasibilityFailed) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	return common.Translate(err)
}
