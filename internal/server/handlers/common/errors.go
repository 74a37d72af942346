package common

import (
	"errors"

	"github.com/branchguard/branchguard/internal/git"
	"github.com/branchguard/branchguard/internal/repolock"
	"github.com/branchguard/branchguard/internal/workspace"
	"github.com/gofiber/fiber/v2"
)

// Translate maps errors shared by every route to HTTP statuses. Anything
// it does not know is returned unchanged and ends up as a 500 carrying the
// collaborator's text.
func Translate(err error) error {
	switch {
	case errors.Is(err, workspace.ErrInvalidArgument), errors.Is(err, git.ErrInvalidArgument):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, git.ErrBranchNotFound), errors.Is(err, git.ErrFileNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, git.ErrDetachedHead):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, repolock.ErrLockTimeout):
		return fiber.NewError(fiber.StatusLocked, err.Error())
	case errors.Is(err, git.ErrRepositoryNotFound):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	}

	return err
}

// ErrorsHandler is a middleware applying Translate.
func ErrorsHandler(c *fiber.Ctx) error {
	err := c.Next()
	if err == nil {
		return nil
	}

	return Translate(err)
}
