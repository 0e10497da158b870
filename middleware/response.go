package middleware

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

func JsonResponse(c *fiber.Ctx, statusCode int, success bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"success": success,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errs map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errs)
}

// errorResponse is the envelope returned by the central error handler
func errorResponse(c *fiber.Ctx, statusCode int, code, message string) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"success": false,
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ErrorHandler maps errors escaping a handler to the uniform JSON
// envelope. Known ORM/JWT errors get specific codes; anything else is
// logged and masked.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return errorResponse(c, fiberErr.Code, "http_error", fiberErr.Message)
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorResponse(c, fiber.StatusNotFound, "not_found", "Record not found!")
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errorResponse(c, fiber.StatusConflict, "duplicate", "Record already exists!")
	}

	var jwtErr *jwt.ValidationError
	if errors.As(err, &jwtErr) {
		return errorResponse(c, fiber.StatusUnauthorized, "invalid_token", "Invalid or expired token!")
	}

	log.Printf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	return errorResponse(c, fiber.StatusInternalServerError, "internal", "Something went wrong!")
}
