package quizRoutes

import (
	quizController "osvita/controllers/quiz"
	"osvita/middleware"
	"osvita/models"
	validators "osvita/validators/quiz"

	"github.com/gofiber/fiber/v2"
)

// SetupQuizRoutes sets up the student attempt flow and editor quiz CRUD
func SetupQuizRoutes(app *fiber.App) {
	quizzes := app.Group("/api/quizzes", middleware.JWTMiddleware)

	// Student flow
	quizzes.Get("/topic/:topicId", validators.TopicID(), quizController.ListQuizzesByTopic)
	quizzes.Get("/attempts/my", quizController.MyAttempts)
	quizzes.Post("/:id/attempt", middleware.CSRFMiddleware, validators.QuizID(), quizController.StartAttempt)
	quizzes.Post("/:id/submit", middleware.CSRFMiddleware, validators.QuizID(), quizController.SubmitAttempt)

	editor := quizzes.Group("", middleware.CSRFMiddleware,
		middleware.RequireRole(models.RoleEditor, models.RoleAdmin))

	editor.Get("/topic/:topicId/all", validators.TopicID(), quizController.ListByTopicAdmin)
	editor.Get("/:id/full", validators.QuizID(), quizController.GetQuizAdmin)
	editor.Post("/", validators.CreateQuiz(), quizController.CreateQuiz)
	editor.Put("/:id", validators.QuizID(), validators.UpdateQuiz(), quizController.UpdateQuiz)
	editor.Put("/:id/cache", validators.QuizID(), validators.QuizCache(), quizController.SetQuizCache)
	editor.Delete("/:id", validators.QuizID(), quizController.DeleteQuiz)

	editor.Post("/:id/questions", validators.QuizID(), quizController.CreateQuestion)
	editor.Put("/questions/:questionId", validators.QuestionID(), quizController.UpdateQuestion)
	editor.Delete("/questions/:questionId", validators.QuestionID(), quizController.DeleteQuestion)
}
