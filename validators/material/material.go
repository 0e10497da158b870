package materialValidator

import (
	"strings"

	"osvita/middleware"
	"osvita/models"
	"osvita/utils"

	"github.com/gofiber/fiber/v2"
)

func validKind(kind string) bool {
	switch kind {
	case models.MaterialVideo, models.MaterialPDF, models.MaterialText, models.MaterialLink:
		return true
	}
	return false
}

// MaterialID parses the :id path param into Locals
func MaterialID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid material id!", nil)
		}
		c.Locals("materialID", uint(id))
		return c.Next()
	}
}

// TopicID parses the :topicId path param into Locals
func TopicID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("topicId")
		if err != nil || id < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid topic id!", nil)
		}
		c.Locals("topicID", uint(id))
		return c.Next()
	}
}

func CreateMaterial() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			TopicID    uint   `json:"topic_id"`
			Kind       string `json:"kind"`
			Title      string `json:"title"`
			Body       string `json:"body"`
			URL        string `json:"url"`
			FileID     *uint  `json:"file_id"`
			OrderIndex int    `json:"order_index"`
			XPReward   uint   `json:"xp_reward"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.TopicID == 0 {
			errors["topic_id"] = "Topic is required!"
		}

		if reqData.Kind == "" {
			reqData.Kind = models.MaterialText
		} else if !validKind(reqData.Kind) {
			errors["kind"] = "Kind must be one of: VIDEO, PDF, TEXT, LINK!"
		}

		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Title is required!"
		}

		switch reqData.Kind {
		case models.MaterialLink:
			if strings.TrimSpace(reqData.URL) == "" {
				errors["url"] = "A link material needs a URL!"
			}
		case models.MaterialVideo, models.MaterialPDF:
			if reqData.FileID == nil && strings.TrimSpace(reqData.URL) == "" {
				errors["file_id"] = "A video/PDF material needs a file or a URL!"
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedMaterial", reqData)
		return c.Next()
	}
}

func UpdateMaterial() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Kind        *string `json:"kind"`
			Title       *string `json:"title"`
			Body        *string `json:"body"`
			URL         *string `json:"url"`
			FileID      *uint   `json:"file_id"`
			OrderIndex  *int    `json:"order_index"`
			XPReward    *uint   `json:"xp_reward"`
			IsPublished *bool   `json:"is_published"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Kind != nil && !validKind(*reqData.Kind) {
			errors["kind"] = "Kind must be one of: VIDEO, PDF, TEXT, LINK!"
		}

		if reqData.Title != nil && strings.TrimSpace(*reqData.Title) == "" {
			errors["title"] = "Title cannot be empty!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedMaterialUpdate", reqData)
		return c.Next()
	}
}

// MaterialCache validates a cache-entry upsert for a material
func MaterialCache() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Lang  string  `json:"lang"`
			Title *string `json:"title"`
			Body  *string `json:"body"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Lang = strings.ToLower(strings.TrimSpace(reqData.Lang))
		if !utils.IsSupportedLang(reqData.Lang) {
			errors["lang"] = "Language must be one of: ua, en, pl!"
		}

		if reqData.Title == nil && reqData.Body == nil {
			errors["title"] = "Provide at least one field to localize!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCache", reqData)
		return c.Next()
	}
}
