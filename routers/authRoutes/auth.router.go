package authRoutes

import (
	authController "osvita/controllers/auth"
	"osvita/middleware"
	validators "osvita/validators/auth"

	"github.com/gofiber/fiber/v2"
)

// SetupAuthRoutes sets up signup/login/session routes
func SetupAuthRoutes(app *fiber.App) {
	auth := app.Group("/api/auth")

	auth.Post("/signup", validators.Signup(), authController.Signup)
	auth.Post("/login", validators.Login(), authController.Login)
	auth.Post("/refresh", authController.Refresh)
	auth.Post("/logout", authController.Logout)
	auth.Get("/verify", authController.VerifyEmail)

	auth.Get("/me", middleware.JWTMiddleware, authController.Me)
}
