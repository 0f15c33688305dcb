package main

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"cryptobay/database"
	"cryptobay/handlers"
	"cryptobay/middleware"
	"cryptobay/models"
	"cryptobay/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	// Validate critical environment variables
	validateEnvironment()

	// Initialize database
	database.InitDB()
	defer database.CloseDB()

	// Construct process-scoped services
	db := database.GetDB()
	challengeManager := services.NewChallengeManager(db)
	keyReveal := services.NewKeyRevealManager(db)
	feedHub := services.NewFeedHub()

	// Session storage: Redis when configured, in-memory otherwise
	var sessionStore services.SessionStore
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		sessionStore = services.NewRedisSessionStore(database.InitRedis(redisURL))
		defer database.CloseRedis()
	} else {
		memStore := services.NewMemorySessionStore()
		sessionStore = memStore

		services.InitCleanupService(memStore)
		services.GetCleanupService().Start()
		defer services.GetCleanupService().Stop()
	}

	handlers.InitHandlers(challengeManager, keyReveal, sessionStore, feedHub)

	// Seed the default challenge catalog
	seedChallenges(challengeManager)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    1 * 1024 * 1024, // 1MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	// CORS configuration
	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	// Apply general rate limiting to all routes
	app.Use(middleware.FiberRateLimitMiddleware())

	// API Routes
	api := app.Group("/api")

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/register", handlers.Register)
	authGroup.Post("/login", handlers.Login)

	// Challenge routes (require authentication)
	challengeGroup := api.Group("/challenges")
	challengeGroup.Use(middleware.AuthMiddleware)
	challengeGroup.Get("/", handlers.GetChallenges)
	challengeGroup.Get("/:challengeID", handlers.GetChallenge)
	challengeGroup.Post("/:challengeID/submit", middleware.FlagSubmitRateLimitMiddleware(), handlers.SubmitFlag)
	challengeGroup.Post("/:challengeID/hint", handlers.UseHint)

	// Minigame routes (require authentication)
	minigameGroup := api.Group("/minigames")
	minigameGroup.Use(middleware.AuthMiddleware)
	minigameGroup.Get("/:challengeID", handlers.GetMinigameHub)
	minigameGroup.Post("/:challengeID/:gameType/start", handlers.StartMinigame)
	minigameGroup.Post("/:challengeID/:gameType/complete", handlers.CompleteMinigame)

	// Live solve feed
	app.Get("/ws/feed", middleware.WebSocketAuthMiddleware, handlers.FeedUpgradeCheck, handlers.FeedSocket())

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   "1.0.0",
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("🚀 HTTP server starting on port %s", port)
	log.Printf("📊 Environment: %s", getEnv("APP_ENV", "development"))
	log.Printf("🔐 JWT Secret configured: %v", os.Getenv("JWT_SECRET") != "")
	log.Printf("🌐 Solve feed available at ws://localhost:%s/ws/feed", port)

	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}

// seedChallenges creates the default catalog. Duplicate ids are expected on
// restart and logged without aborting boot.
func seedChallenges(cm *services.ChallengeManager) {
	seeds := []struct {
		id         string
		cipherType string
		difficulty models.ChallengeDifficulty
	}{
		{"caesar_easy", services.CipherCaesar, models.DifficultyEasy},
		{"xor_easy", services.CipherXOR, models.DifficultyEasy},
		{"aes_easy", services.CipherAES, models.DifficultyEasy},
		{"vigenere_medium", services.CipherVigenere, models.DifficultyMedium},
		{"caesar_hard", services.CipherCaesar, models.DifficultyHard},
		{"xor_hard", services.CipherXOR, models.DifficultyHard},
		{"vigenere_hard", services.CipherVigenere, models.DifficultyHard},
		{"aes_hard", services.CipherAES, models.DifficultyHard},
		{"rsa_hard", services.CipherRSA, models.DifficultyHard},
	}

	for _, seed := range seeds {
		if _, err := cm.CreateChallenge(seed.id, seed.cipherType, seed.difficulty); err != nil {
			log.Printf("Challenge creation: %v", err)
		}
	}
}

// validateEnvironment checks for required environment variables
func validateEnvironment() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("FATAL: JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
	}
	if len(jwtSecret) < 32 {
		log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
	}

	appEnv := os.Getenv("APP_ENV")
	if appEnv == "production" {
		corsOrigins := os.Getenv("CORS_ORIGINS")
		if corsOrigins == "" || corsOrigins == "http://localhost:3000" {
			log.Println("WARNING: CORS_ORIGINS not properly configured for production")
		}
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Don't expose internal errors in production
	if os.Getenv("APP_ENV") == "production" && code == 500 {
		message = "An error occurred. Please try again later."
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
