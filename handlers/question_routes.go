// handlers/question_routes.go
package handlers

import (
	"club-games-system/middleware"
	"club-games-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupQuestionRoutes(app *fiber.App, questions *services.QuestionService) {
	// 🔐 Admin-only question bank management
	admin := app.Group("/admin", middleware.UserContextMiddleware(), func(c *fiber.Ctx) error {
		if !middleware.HasRole(c, "admin") {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin role required"})
		}
		return c.Next()
	})

	admin.Post("/questions", questions.CreateQuestion)
	admin.Get("/questions", questions.ListQuestions)
	admin.Delete("/questions/:id", questions.DeleteQuestion)
}
