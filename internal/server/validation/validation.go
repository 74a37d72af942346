package validation

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// DecorateWithBodyEx parses the JSON body into T, validates it and passes
// it to next. An empty body validates the zero value. Parse and validation
// failures become 400 responses.
func DecorateWithBodyEx[T any](v *validator.Validate, next func(*fiber.Ctx, *T) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := new(T)
		if len(c.Body()) > 0 {
			if err := c.BodyParser(req); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		}

		return validate(c, v, req, next)
	}
}

// DecorateWithQueryEx is DecorateWithBodyEx for query string parameters.
func DecorateWithQueryEx[T any](v *validator.Validate, next func(*fiber.Ctx, *T) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := new(T)
		if err := c.QueryParser(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		return validate(c, v, req, next)
	}
}

func validate[T any](c *fiber.Ctx, v *validator.Validate, req *T, next func(*fiber.Ctx, *T) error) error {
	if err := v.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return next(c, req)
}
