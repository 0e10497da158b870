package materialRoutes

import (
	materialController "osvita/controllers/material"
	"osvita/middleware"
	"osvita/models"
	validators "osvita/validators/material"

	"github.com/gofiber/fiber/v2"
)

// SetupMaterialRoutes sets up student material viewing and editor CRUD
func SetupMaterialRoutes(app *fiber.App) {
	materials := app.Group("/api/materials", middleware.JWTMiddleware)

	materials.Get("/topic/:topicId", validators.TopicID(), materialController.ListByTopic)
	materials.Get("/:id", validators.MaterialID(), materialController.GetMaterial)
	materials.Post("/:id/view", middleware.CSRFMiddleware, validators.MaterialID(), materialController.MarkViewed)

	editor := materials.Group("", middleware.CSRFMiddleware,
		middleware.RequireRole(models.RoleEditor, models.RoleAdmin))

	editor.Get("/topic/:topicId/all", validators.TopicID(), materialController.ListByTopicAdmin)
	editor.Post("/", validators.CreateMaterial(), materialController.CreateMaterial)
	editor.Put("/:id", validators.MaterialID(), validators.UpdateMaterial(), materialController.UpdateMaterial)
	editor.Put("/:id/cache", validators.MaterialID(), validators.MaterialCache(), materialController.SetMaterialCache)
	editor.Delete("/:id", validators.MaterialID(), materialController.DeleteMaterial)
}
