package main

import (
	"log"

	"osvita/config"
	"osvita/database"
	"osvita/middleware"
	adminRoutes "osvita/routers/adminRoutes"
	authRoutes "osvita/routers/authRoutes"
	fileRoutes "osvita/routers/fileRoutes"
	materialRoutes "osvita/routers/materialRoutes"
	quizRoutes "osvita/routers/quizRoutes"
	topicRoutes "osvita/routers/topicRoutes"
	"osvita/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	scheduler := utils.StartSchedulers()
	defer scheduler.Stop()

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
		BodyLimit:    550 * 1024 * 1024, // direct uploads
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:5173",
		AllowMethods:     "GET,POST,PUT,DELETE",
		AllowHeaders:     "Content-Type," + middleware.CSRFHeader,
		AllowCredentials: true,
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	// Locally stored uploads
	app.Static("/uploads", config.AppConfig.UploadDir)

	authRoutes.SetupAuthRoutes(app)
	topicRoutes.SetupTopicRoutes(app)
	materialRoutes.SetupMaterialRoutes(app)
	quizRoutes.SetupQuizRoutes(app)
	fileRoutes.SetupFileRoutes(app)
	adminRoutes.SetupAdminRoutes(app)

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
