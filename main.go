package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Talha3818/gaming-site-sub000/handlers"
	"github.com/Talha3818/gaming-site-sub000/middleware"
	"github.com/Talha3818/gaming-site-sub000/models"
	"github.com/Talha3818/gaming-site-sub000/services"
	"github.com/Talha3818/gaming-site-sub000/utils"

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
		BodyLimit: 10 * 1024 * 1024, // proof screenshots and game logos only
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
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Name, X-User-Roles",
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
		&models.User{},
		&models.Game{},
		&models.Challenge{},
		&models.ChallengeParticipant{},
		&models.WalletTransaction{},
		&models.PlatformSettings{},
		&models.TierPolicy{},
		&models.DepositRequest{},
		&models.WithdrawalRequest{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	settingsService := services.NewSettingsService(db)
	if err := settingsService.Seed(context.Background()); err != nil {
		log.Fatal("failed to seed platform settings:", err)
	}

	ledger := services.NewWalletLedger(db)
	gameService := services.NewGameService(db)
	challengeService := services.NewChallengeService(db, ledger, settingsService)
	adminService := services.NewAdminService(db, ledger, settingsService, challengeService)
	paymentsService := services.NewPaymentsService(db, ledger, settingsService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper := services.NewExpirationSweeper(db, challengeService, time.Minute)
	if err := sweeper.Start(); err != nil {
		log.Fatal("failed to start expiration sweeper:", err)
	}
	defer sweeper.Stop()

	// ✅ Setup routes — all behind enforced Gateway auth
	handlers.SetupChallengeRoutes(app, challengeService, gameService, ledger)
	handlers.SetupWalletRoutes(app, ledger, paymentsService, settingsService)
	handlers.SetupAdminRoutes(app, adminService, challengeService, gameService, paymentsService, settingsService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Expiration sweeper running (every 1m)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
