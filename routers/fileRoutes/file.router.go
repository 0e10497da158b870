package fileRoutes

import (
	fileController "osvita/controllers/file"
	"osvita/middleware"
	"osvita/models"
	validators "osvita/validators/file"

	"github.com/gofiber/fiber/v2"
)

// SetupFileRoutes sets up upload registration and confirmation (editor/admin)
func SetupFileRoutes(app *fiber.App) {
	files := app.Group("/api/files", middleware.JWTMiddleware, middleware.CSRFMiddleware,
		middleware.RequireRole(models.RoleEditor, models.RoleAdmin))

	files.Post("/", validators.RequestUpload(), fileController.RequestUpload)
	files.Post("/:key/upload", fileController.DirectUpload)
	files.Post("/:key/confirm", validators.ConfirmUpload(), fileController.ConfirmUpload)
	files.Delete("/:id", validators.FileID(), fileController.DeleteFile)
}
