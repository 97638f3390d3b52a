package services

import (
	"fmt"
	"strconv"

	"club-games-system/game"
	"club-games-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// QuestionService backs quiz rounds with database content and exposes the
// admin CRUD over the question bank.
type QuestionService struct {
	DB *gorm.DB
}

func NewQuestionService(db *gorm.DB) *QuestionService {
	return &QuestionService{DB: db}
}

// Draw picks a random question and builds its three decoys from other
// answers in the same category, topping up across categories when the
// category is too small.
func (s *QuestionService) Draw() (game.Question, error) {
	var q models.QuizQuestion
	if err := s.DB.Order("RANDOM()").First(&q).Error; err != nil {
		return game.Question{}, fmt.Errorf("failed to draw question: %w", err)
	}

	var decoys []string
	if err := s.DB.Model(&models.QuizQuestion{}).
		Where("category = ? AND answer <> ?", q.Category, q.Answer).
		Order("RANDOM()").Limit(3).
		Distinct("answer").Pluck("answer", &decoys).Error; err != nil {
		return game.Question{}, fmt.Errorf("failed to draw decoys: %w", err)
	}

	if len(decoys) < 3 {
		exclude := append([]string{q.Answer}, decoys...)
		var extra []string
		if err := s.DB.Model(&models.QuizQuestion{}).
			Where("answer NOT IN ?", exclude).
			Order("RANDOM()").Limit(3 - len(decoys)).
			Distinct("answer").Pluck("answer", &extra).Error; err != nil {
			return game.Question{}, fmt.Errorf("failed to top up decoys: %w", err)
		}
		decoys = append(decoys, extra...)
	}
	if len(decoys) < 3 {
		return game.Question{}, fmt.Errorf("question bank too small: only %d decoys for %q", len(decoys), q.Prompt)
	}

	return game.Question{Prompt: q.Prompt, Answer: q.Answer, Decoys: decoys}, nil
}

func (s *QuestionService) CreateQuestion(c *fiber.Ctx) error {
	var body struct {
		Category string `json:"category"`
		Prompt   string `json:"prompt"`
		Answer   string `json:"answer"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.Category == "" || body.Prompt == "" || body.Answer == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "category, prompt and answer are required"})
	}

	q := models.QuizQuestion{Category: body.Category, Prompt: body.Prompt, Answer: body.Answer}
	if err := s.DB.Create(&q).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create question", "details": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(q)
}

func (s *QuestionService) ListQuestions(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil || limit <= 0 || limit > 200 {
		limit = 50
	}

	db := s.DB.Model(&models.QuizQuestion{}).Limit(limit).Order("created_at DESC")
	if category := c.Query("category"); category != "" {
		db = db.Where("category = ?", category)
	}

	var questions []models.QuizQuestion
	if err := db.Find(&questions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list questions", "details": err.Error()})
	}
	return c.JSON(questions)
}

func (s *QuestionService) DeleteQuestion(c *fiber.Ctx) error {
	id := c.Params("id")
	res := s.DB.Delete(&models.QuizQuestion{}, "id = ?", id)
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete question", "details": res.Error.Error()})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "question not found"})
	}
	return c.JSON(fiber.Map{"deleted": id})
}

// SeedDefaultQuestions fills an empty question bank so fresh deployments
// can run quiz matches before any admin adds content.
func (s *QuestionService) SeedDefaultQuestions() error {
	var count int64
	if err := s.DB.Model(&models.QuizQuestion{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	seed := []models.QuizQuestion{
		{Category: "geography", Prompt: "What is the capital of Canada?", Answer: "Ottawa"},
		{Category: "geography", Prompt: "What is the largest ocean on Earth?", Answer: "Pacific"},
		{Category: "geography", Prompt: "Which country has the longest coastline?", Answer: "Canada"},
		{Category: "geography", Prompt: "On which continent is the Atacama Desert?", Answer: "South America"},
		{Category: "science", Prompt: "Which element has the chemical symbol Fe?", Answer: "Iron"},
		{Category: "science", Prompt: "What gas do plants absorb from the atmosphere?", Answer: "Carbon dioxide"},
		{Category: "science", Prompt: "Which planet has the most moons?", Answer: "Saturn"},
		{Category: "science", Prompt: "What particle carries a negative charge?", Answer: "Electron"},
		{Category: "history", Prompt: "In which year did the first moon landing happen?", Answer: "1969"},
		{Category: "history", Prompt: "Which country invented paper?", Answer: "China"},
		{Category: "history", Prompt: "Which empire built the Colosseum?", Answer: "Roman"},
		{Category: "history", Prompt: "Who painted the Mona Lisa?", Answer: "Leonardo da Vinci"},
		{Category: "general", Prompt: "How many strings does a standard violin have?", Answer: "4"},
		{Category: "general", Prompt: "What is the smallest prime number?", Answer: "2"},
		{Category: "general", Prompt: "Which animal is the fastest on land?", Answer: "Cheetah"},
		{Category: "general", Prompt: "How many sides does a hexagon have?", Answer: "6"},
	}
	return s.DB.Create(&seed).Error
}
