package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"autvision-gamification/handlers"
	"autvision-gamification/middleware"
	"autvision-gamification/models"
	"autvision-gamification/services"
	"autvision-gamification/store"
	"autvision-gamification/utils"
	"autvision-gamification/workers"

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
		BodyLimit: 8 * 1024 * 1024, // icon uploads only
	})

	// Only Gateway requests allowed, no exceptions.
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
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if os.Getenv("CLOUDFLARE_ACCOUNT_ID") != "" {
		if err := utils.InitR2(); err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
	} else {
		log.Println("⚠️  R2 not configured, badge icons will be stored locally")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.UserProfile{},
		&models.Mission{},
		&models.Badge{},
		&models.UserMission{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := utils.EnsureUploadDir(); err != nil {
		log.Fatal("failed to ensure upload dir:", err)
	}

	profileStore := store.NewGormStore(db)
	gamificationService := services.NewGamificationService(profileStore, services.NewLogEmitter())

	// Seed mission/badge catalogs on boot; idempotent.
	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	if err := gamificationService.InitializeDefaults(seedCtx); err != nil {
		log.Printf("⚠️  Catalog seeding failed (will retry via admin endpoint): %v", err)
	}
	cancelSeed()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Identity mirror keeps denormalized email/display_name fresh.
	identityURL := os.Getenv("IDENTITY_SERVICE_URL")
	serviceToken := os.Getenv("GAMIFICATION_SERVICE_TOKEN")
	if identityURL != "" {
		syncWorker := workers.NewProfileSyncWorker(db, identityURL, "/api/v1/public/profiles", serviceToken)
		syncWorker.Start(ctx)
	} else {
		log.Println("⚠️  IDENTITY_SERVICE_URL not set, profile identity mirror disabled")
	}

	gamificationService.StartRankingScheduler(5 * time.Minute)

	handlers.SetupGamificationRoutes(app, gamificationService, profileStore)

	app.Static("/uploads", "./"+utils.UploadDir)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Gamification service running on http://localhost:5300")
	log.Println("✅ Leaderboard refresh scheduler running (every 5m)")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
