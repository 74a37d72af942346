package stashes

import (
	"errors"
	"fmt"

	"github.com/branchguard/branchguard/internal/server/handlers/common"
	"github.com/branchguard/branchguard/internal/server/validation"
	"github.com/branchguard/branchguard/internal/stash"
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
	r = r.Group("/stashes")

	r.Use(h.errorsHandler)
	r.Get("/", h.list)
	r.Post("/", validation.DecorateWithBodyEx(h.validator, h.create))
	r.Post("/:index/apply", validation.DecorateWithQueryEx(h.validator, h.apply))
	r.Delete("/:index", h.drop)
}

func (h *Handler) list(c *fiber.Ctx) error {
	entries, err := h.workspaceSvc.Stashes(c.Context())
	if err != nil {
		return fmt.Errorf("failed to list stashes: %w", err)
	}

	responses := make([]StashResponse, len(entries))
	for i, entry := range entries {
		responses[i] = newStashResponse(entry)
	}

	return c.JSON(responses)
}

func (h *Handler) create(c *fiber.Ctx, req *CreateRequest) error {
	outcome, err := h.workspaceSvc.CreateStash(c.Context(), req.Message)
	if err != nil {
		return fmt.Errorf("failed to create stash: %w", err)
	}

	status := fiber.StatusCreated
	if outcome == stash.OutcomeSkipped {
		status = fiber.StatusOK
	}

	return c.Status(status).JSON(CreateResponse{Outcome: outcome})
}

func (h *Handler) apply(c *fiber.Ctx, query *ApplyQuery) error {
	index, err := getIndex(c)
	if err != nil {
		return err
	}

	if applyErr := h.workspaceSvc.ApplyStash(c.Context(), index, query.Remove); applyErr != nil {
		return fmt.Errorf("failed to apply stash: %w", applyErr)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) drop(c *fiber.Ctx) error {
	index, err := getIndex(c)
	if err != nil {
		return err
	}

	if dropErr := h.workspaceSvc.DropStash(c.Context(), index); dropErr != nil {
		return fmt.Errorf("failed to drop stash: %w", dropErr)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) errorsHandler(c *fiber.Ctx) error {
	err := c.Next()
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, stash.ErrInvalidIndex):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, stash.ErrApplyFailed):
		// Typically conflicts with the working tree; the stash is kept.
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}

	return common.Translate(err)
}

func getIndex(c *fiber.Ctx) (int, error) {
	index, err := c.ParamsInt("index", -1)
	if err != nil || index < 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "stash index must be a non-negative integer")
	}
	return index, nil
}
