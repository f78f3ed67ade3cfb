package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"droptrack/internal/handlers"
	"droptrack/internal/middleware"
	"droptrack/internal/models"
	"droptrack/internal/repositories"
	"droptrack/internal/services"
	"droptrack/pkg/rabbitmq"

	"github.com/spf13/viper"
)

// openDatabase opens the configured database. A postgres DSN selects the
// postgres driver; anything else (including the empty default) is treated
// as a SQLite file path.
func openDatabase(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = "droptrack.db"
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.Contains(dsn, "host=") {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
}

// newApp wires repositories, services, handlers and routes into a Fiber app.
// mqClient may be nil; progress events are then skipped.
func newApp(db *gorm.DB, mqClient *rabbitmq.Client, sessionSecret string, inviteCodes []string) (*fiber.App, error) {
	err := db.AutoMigrate(
		&models.User{},
		&models.TrackedAccount{},
		&models.CaseItem{},
		&models.ProgressEntry{},
	)
	if err != nil {
		return nil, err
	}

	// --- Initialize Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	accountRepo := repositories.NewGORMAccountRepository(db)
	caseRepo := repositories.NewGORMCaseRepository(db)
	progressRepo := repositories.NewGORMProgressRepository(db)

	// --- Initialize Services ---
	authService := services.NewAuthService(userRepo, sessionSecret, inviteCodes)
	accountService := services.NewAccountService(accountRepo)
	caseService := services.NewCaseService(caseRepo)
	progressService := services.NewProgressService(progressRepo, accountRepo, caseRepo, mqClient)

	// --- Initialize Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	accountHandler := handlers.NewAccountHandler(accountService)
	progressHandler := handlers.NewProgressHandler(progressService, accountService, caseService)
	adminHandler := handlers.NewAdminHandler(caseService)

	app := fiber.New()

	// --- Middleware ---
	app.Use(logger.New())

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Routes ---
	// Public: registration and login.
	authHandler.RegisterRoutes(app)

	// Everything else needs a resolved session.
	protected := app.Group("", middleware.AuthRequired(authService))
	authHandler.RegisterProtectedRoutes(protected)
	accountHandler.RegisterRoutes(protected)
	progressHandler.RegisterRoutes(protected)

	// Admin-only price management.
	admin := protected.Group("", middleware.RoleRequired(models.RoleAdmin))
	adminHandler.RegisterRoutes(admin)

	return app, nil
}

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATABASE_DSN", "")
	viper.SetDefault("SESSION_SECRET", "default_secret_key_change_me")
	viper.SetDefault("INVITE_CODES", "")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")
	sessionSecret := viper.GetString("SESSION_SECRET")
	inviteCodes := strings.Split(viper.GetString("INVITE_CODES"), ",")

	// --- Database ---
	db, err := openDatabase(viper.GetString("DATABASE_DSN"))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// --- RabbitMQ (optional) ---
	var mqClient *rabbitmq.Client
	if mqURL := viper.GetString("RABBITMQ_URL"); mqURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: mqURL})
		if err != nil {
			log.Printf("Warning: RabbitMQ unavailable, progress events disabled: %v", err)
			mqClient = nil
		} else {
			defer mqClient.Close()
		}
	}

	app, err := newApp(db, mqClient, sessionSecret, inviteCodes)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}

	// --- Start RabbitMQ Consumer in a Goroutine ---
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for progress events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received progress event (Tag: %d): %s", msg.DeliveryTag, string(msg.Body))
				return nil
			}
			if consumerErr := mqClient.ConsumeProgressEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}
