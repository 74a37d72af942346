package validation_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/branchguard/branchguard/internal/server/validation"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type switchBody struct {
	Target string `json:"target" validate:"required"`
}

type compareQuery struct {
	Path string `query:"path" validate:"required"`
}

func newApp() *fiber.App {
	v := validator.New()
	app := fiber.New()

	app.Post("/body", validation.DecorateWithBodyEx(v, func(c *fiber.Ctx, req *switchBody) error {
		return c.SendString(req.Target)
	}))
	app.Get("/query", validation.DecorateWithQueryEx(v, func(c *fiber.Ctx, req *compareQuery) error {
		return c.SendString(req.Path)
	}))

	return app
}

func TestDecorateWithBodyEx(t *testing.T) {
	app := newApp()

	tests := []struct {
		name   string
		body   string
		status int
		text   string
	}{
		{name: "valid", body: `{"target":"dev"}`, status: http.StatusOK, text: "dev"},
		{name: "missing field", body: `{}`, status: http.StatusBadRequest},
		{name: "malformed", body: `{`, status: http.StatusBadRequest},
		{name: "empty body fails required", body: ``, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/body", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.text != "" {
				body, _ := io.ReadAll(resp.Body)
				assert.Equal(t, tt.text, string(body))
			}
		})
	}
}

func TestDecorateWithQueryEx(t *testing.T) {
	app := newApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/query?path=a.txt", nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/query", nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
