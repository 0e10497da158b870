package quizValidator

import (
	"strings"

	"osvita/middleware"
	"osvita/utils"

	"github.com/gofiber/fiber/v2"
)

// QuizID parses the :id path param into Locals
func QuizID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid quiz id!", nil)
		}
		c.Locals("quizID", uint(id))
		return c.Next()
	}
}

// QuestionID parses the :questionId path param into Locals
func QuestionID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("questionId")
		if err != nil || id < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid question id!", nil)
		}
		c.Locals("questionID", uint(id))
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

func CreateQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			TopicID     uint   `json:"topic_id"`
			Title       string `json:"title"`
			Description string `json:"description"`
			DurationSec int    `json:"duration_sec"`
			PassPercent int    `json:"pass_percent"`
			XPReward    uint   `json:"xp_reward"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.TopicID == 0 {
			errors["topic_id"] = "Topic is required!"
		}

		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Title is required!"
		} else if len(strings.TrimSpace(reqData.Title)) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}

		if reqData.DurationSec <= 0 {
			reqData.DurationSec = 600
		}

		if reqData.PassPercent < 0 || reqData.PassPercent > 100 {
			errors["pass_percent"] = "Pass percent must be between 0 and 100!"
		} else if reqData.PassPercent == 0 {
			reqData.PassPercent = 60
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedQuiz", reqData)
		return c.Next()
	}
}

func UpdateQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title       *string `json:"title"`
			Description *string `json:"description"`
			DurationSec *int    `json:"duration_sec"`
			PassPercent *int    `json:"pass_percent"`
			XPReward    *uint   `json:"xp_reward"`
			IsPublished *bool   `json:"is_published"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Title != nil && len(strings.TrimSpace(*reqData.Title)) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}

		if reqData.DurationSec != nil && *reqData.DurationSec <= 0 {
			errors["duration_sec"] = "Duration must be positive!"
		}

		if reqData.PassPercent != nil && (*reqData.PassPercent < 0 || *reqData.PassPercent > 100) {
			errors["pass_percent"] = "Pass percent must be between 0 and 100!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedQuizUpdate", reqData)
		return c.Next()
	}
}

// QuizCache validates a cache-entry upsert for a quiz
func QuizCache() fiber.Handler {
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
