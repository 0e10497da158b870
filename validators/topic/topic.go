package topicValidator

import (
	"strings"

	"osvita/middleware"
	"osvita/utils"

	"github.com/gofiber/fiber/v2"
)

// slugOK allows lowercase letters, digits and single dashes
func slugOK(slug string) bool {
	if slug == "" || strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") || strings.Contains(slug, "--") {
		return false
	}
	for _, r := range slug {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return false
		}
	}
	return true
}

// TopicID parses the :id path param into Locals
func TopicID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid topic id!", nil)
		}
		c.Locals("topicID", uint(id))
		return c.Next()
	}
}

func CreateTopic() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			ParentID    *uint  `json:"parent_id"`
			Slug        string `json:"slug"`
			Title       string `json:"title"`
			Description string `json:"description"`
			OrderIndex  int    `json:"order_index"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Slug = strings.ToLower(strings.TrimSpace(reqData.Slug))
		if !slugOK(reqData.Slug) {
			errors["slug"] = "Slug must contain only lowercase letters, digits and dashes!"
		}

		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Title is required!"
		} else if len(strings.TrimSpace(reqData.Title)) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedTopic", reqData)
		return c.Next()
	}
}

func UpdateTopic() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			ParentID    *uint   `json:"parent_id"`
			Slug        *string `json:"slug"`
			Title       *string `json:"title"`
			Description *string `json:"description"`
			OrderIndex  *int    `json:"order_index"`
			IsPublished *bool   `json:"is_published"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Slug != nil {
			normalized := strings.ToLower(strings.TrimSpace(*reqData.Slug))
			if !slugOK(normalized) {
				errors["slug"] = "Slug must contain only lowercase letters, digits and dashes!"
			}
			reqData.Slug = &normalized
		}

		if reqData.Title != nil && len(strings.TrimSpace(*reqData.Title)) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedTopicUpdate", reqData)
		return c.Next()
	}
}

// TopicCache validates a cache-entry upsert for a topic
func TopicCache() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Lang        string  `json:"lang"`
			Title       *string `json:"title"`
			Description *string `json:"description"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Lang = strings.ToLower(strings.TrimSpace(reqData.Lang))
		if !utils.IsSupportedLang(reqData.Lang) {
			errors["lang"] = "Language must be one of: ua, en, pl!"
		}

		if reqData.Title == nil && reqData.Description == nil {
			errors["title"] = "Provide at least one field to localize!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCache", reqData)
		return c.Next()
	}
}
