package adminRoutes

import (
	adminController "osvita/controllers/admin"
	"osvita/middleware"
	"osvita/models"
	validators "osvita/validators/admin"
	materialValidators "osvita/validators/material"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminRoutes sets up user administration, restore and audit routes
func SetupAdminRoutes(app *fiber.App) {
	admin := app.Group("/api/admin", middleware.JWTMiddleware, middleware.CSRFMiddleware,
		middleware.RequireRole(models.RoleAdmin))

	admin.Get("/dashboard", adminController.Dashboard)

	admin.Get("/users", validators.ListQuery(), adminController.ListUsers)
	admin.Put("/users/:id/role", validators.TargetUserID(), validators.Role(), adminController.ChangeUserRole)
	admin.Put("/users/:id/block", validators.TargetUserID(), validators.Block(), adminController.BlockUser)
	admin.Delete("/users/:id", validators.TargetUserID(), adminController.DeleteUser)
	admin.Post("/users/:id/restore", validators.TargetUserID(), adminController.RestoreUser)

	admin.Post("/materials/:id/restore", materialValidators.MaterialID(), adminController.RestoreMaterial)

	admin.Get("/audit-logs", validators.ListQuery(), adminController.ListAuditLogs)
}
