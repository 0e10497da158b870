package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csrfApp() *fiber.App {
	app := fiber.New()
	app.Post("/mutate", CSRFMiddleware, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/read", CSRFMiddleware, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestCSRFAllowsMatchingPair(t *testing.T) {
	app := csrfApp()

	token, err := GenerateCSRFToken()
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/mutate", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookie, Value: token})
	req.Header.Set(CSRFHeader, token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCSRFRejectsMismatch(t *testing.T) {
	app := csrfApp()

	token, _ := GenerateCSRFToken()
	other, _ := GenerateCSRFToken()

	req := httptest.NewRequest("POST", "/mutate", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookie, Value: token})
	req.Header.Set(CSRFHeader, other)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestCSRFRejectsMissingHeader(t *testing.T) {
	app := csrfApp()

	token, _ := GenerateCSRFToken()

	req := httptest.NewRequest("POST", "/mutate", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookie, Value: token})

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestCSRFSkipsSafeMethods(t *testing.T) {
	app := csrfApp()

	req := httptest.NewRequest("GET", "/read", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
