package fileValidator

import (
	"strings"

	"osvita/middleware"

	"github.com/gofiber/fiber/v2"
)

// 500 MB upload ceiling
const maxUploadSize = 500 << 20

// FileID parses the :id path param into Locals
func FileID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid file id!", nil)
		}
		c.Locals("fileID", uint(id))
		return c.Next()
	}
}

func RequestUpload() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Name string `json:"name"`
			Mime string `json:"mime"`
			Size int64  `json:"size"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Name) == "" {
			errors["name"] = "File name is required!"
		}

		if reqData.Size <= 0 {
			errors["size"] = "File size must be positive!"
		} else if reqData.Size > maxUploadSize {
			errors["size"] = "File exceeds the 500 MB limit!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedUpload", reqData)
		return c.Next()
	}
}

func ConfirmUpload() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			URL  string `json:"url"`
			Size int64  `json:"size"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.URL) == "" {
			errors["url"] = "The object URL is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedConfirm", reqData)
		return c.Next()
	}
}
