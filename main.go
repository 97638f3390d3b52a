package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"club-games-system/game"
	"club-games-system/handlers"
	"club-games-system/middleware"
	"club-games-system/models"
	"club-games-system/services"
	"club-games-system/utils"
	"club-games-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024, // 1MB — payloads here are small JSON events
	})

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Roles, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.GameUser{},
		&models.ClubMembership{},
		&models.QuizQuestion{},
		&models.DrawingArchive{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	identityService := services.NewIdentityService(db)
	questionService := services.NewQuestionService(db)
	archiveService := services.NewDrawingArchiveService(db)

	if err := questionService.SeedDefaultQuestions(); err != nil {
		log.Fatal("failed to seed question bank:", err)
	}

	clubServiceURL := os.Getenv("CLUB_SERVICE_URL")
	if clubServiceURL == "" {
		log.Fatal("CLUB_SERVICE_URL environment variable not set")
	}
	gameServiceToken := os.Getenv("GAME_SERVICE_TOKEN")
	if gameServiceToken == "" {
		log.Fatal("GAME_SERVICE_TOKEN environment variable not set")
	}
	notifyClient := services.NewClubNotifyClient(clubServiceURL, gameServiceToken)

	registry := game.NewRegistry(game.Options{
		Notifier:  notifyClient,
		Archiver:  archiveService,
		Questions: questionService,
	})

	syncServiceURL := os.Getenv("SYNC_SERVICE_URL")
	if syncServiceURL == "" {
		log.Fatal("SYNC_SERVICE_URL environment variable not set")
	}
	syncWorker := workers.NewUserSyncWorker(db, syncServiceURL, "/api/v1/public/profiles", gameServiceToken)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Println("Starting User Sync Worker...")
		syncWorker.Start(ctx)
	}()

	services.StartRoomSweeper(registry)

	// ✅ Setup routes — all behind enforced Gateway auth
	handlers.SetupRoomRoutes(app, registry, identityService)
	handlers.SetupQuestionRoutes(app, questionService)
	handlers.SetupGameSocket(app, registry, identityService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ User Sync Worker running")
	log.Println("✅ Room sweeper running (every 1m)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
