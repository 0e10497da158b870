package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"

	"github.com/gofiber/fiber/v2"
)

// CSRFHeader is the request header the frontend copies the CSRF cookie into
const CSRFHeader = "X-CSRF-Token"

// GenerateCSRFToken returns a random 32-byte hex token for the
// double-submit cookie
func GenerateCSRFToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// CSRFMiddleware implements the double-submit check: mutating requests
// must echo the CSRF cookie in the X-CSRF-Token header. Comparison is
// constant-time.
func CSRFMiddleware(c *fiber.Ctx) error {
	switch c.Method() {
	case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
		return c.Next()
	}

	cookie := c.Cookies(CSRFCookie)
	header := c.Get(CSRFHeader)

	if cookie == "" || header == "" {
		return JsonResponse(c, fiber.StatusForbidden, false, "Missing CSRF token!", nil)
	}

	if len(cookie) != len(header) || subtle.ConstantTimeCompare([]byte(cookie), []byte(header)) != 1 {
		return JsonResponse(c, fiber.StatusForbidden, false, "CSRF token mismatch!", nil)
	}

	return c.Next()
}
