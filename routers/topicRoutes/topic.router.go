package topicRoutes

import (
	topicController "osvita/controllers/topic"
	"osvita/middleware"
	"osvita/models"
	validators "osvita/validators/topic"

	"github.com/gofiber/fiber/v2"
)

// SetupTopicRoutes sets up public topic browsing and editor CRUD
func SetupTopicRoutes(app *fiber.App) {
	topics := app.Group("/api/topics")

	// Public, localized via ?lang=
	topics.Get("/", topicController.GetTopicTree)
	topics.Get("/slug/:slug", topicController.GetTopicBySlug)

	editor := topics.Group("", middleware.JWTMiddleware, middleware.CSRFMiddleware,
		middleware.RequireRole(models.RoleEditor, models.RoleAdmin))

	editor.Get("/all", topicController.ListTopicsAdmin)
	editor.Post("/", validators.CreateTopic(), topicController.CreateTopic)
	editor.Put("/:id", validators.TopicID(), validators.UpdateTopic(), topicController.UpdateTopic)
	editor.Put("/:id/cache", validators.TopicID(), validators.TopicCache(), topicController.SetTopicCache)
	editor.Delete("/:id", validators.TopicID(), topicController.DeleteTopic)
}
