package adminValidator

import (
	"osvita/middleware"
	"osvita/models"

	"github.com/gofiber/fiber/v2"
)

// TargetUserID parses the :id path param into Locals
func TargetUserID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid user id!", nil)
		}
		c.Locals("targetUserID", uint(id))
		return c.Next()
	}
}

// ListQuery validates page/limit query params, defaulting to 1/20
func ListQuery() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page  *int `json:"page"`
			Limit *int `json:"limit"`
		})

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		if reqData.Page == nil || *reqData.Page < 1 {
			page := 1
			reqData.Page = &page
		}
		if reqData.Limit == nil || *reqData.Limit < 1 || *reqData.Limit > 100 {
			limit := 20
			reqData.Limit = &limit
		}

		c.Locals("validatedList", reqData)
		return c.Next()
	}
}

func Role() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Role string `json:"role"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		switch reqData.Role {
		case models.RoleStudent, models.RoleEditor, models.RoleAdmin:
		default:
			return middleware.ValidationErrorResponse(c, map[string]string{
				"role": "Role must be one of: STUDENT, EDITOR, ADMIN!",
			})
		}

		c.Locals("validatedRole", reqData)
		return c.Next()
	}
}

func Block() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Blocked bool `json:"blocked"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		c.Locals("validatedBlock", reqData)
		return c.Next()
	}
}
