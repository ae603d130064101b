package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"kontak/internal/config"
	"kontak/internal/handlers"
	"kontak/internal/middleware"
	"kontak/internal/models"
	"kontak/internal/repositories"
	"kontak/internal/services"
	"kontak/pkg/gravatar"
	"kontak/pkg/imagestore"
	"kontak/pkg/mailer"
	"kontak/pkg/queue"
)

func main() {
	cfg := config.Load()

	// --- Database ---
	// TranslateError makes unique-index violations surface as
	// gorm.ErrDuplicatedKey, which the auth flow maps to 409.
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&models.Role{}, &models.User{}, &models.Contact{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	seedRoles(db)

	// --- External clients ---
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	mqClient, err := queue.NewClient(queue.Config{URL: cfg.RabbitMQ.URL})
	if err != nil {
		log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
	}
	defer mqClient.Close()

	imageStore, err := imagestore.NewS3Store(context.Background(), imagestore.Config{
		Region:        cfg.S3.Region,
		Bucket:        cfg.S3.Bucket,
		Endpoint:      cfg.S3.Endpoint,
		AccessKey:     cfg.S3.AccessKey,
		SecretKey:     cfg.S3.SecretKey,
		PublicBaseURL: cfg.S3.PublicBaseURL,
	})
	if err != nil {
		log.Fatalf("Failed to initialize image store: %v", err)
	}

	mailSender := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		From:     cfg.SMTP.From,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
	})

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	contactRepo := repositories.NewGORMContactRepository(db)

	// --- Services ---
	tokenService := services.NewTokenService(cfg.JWT)
	avatarResolver := gravatar.New(cfg.Gravatar.DefaultURL)
	authService := services.NewAuthService(userRepo, tokenService, mqClient, avatarResolver, cfg.App.BaseURL)
	contactService := services.NewContactService(contactRepo)
	userService := services.NewUserService(userRepo, imageStore)

	// --- Handlers ---
	limiter := middleware.RateLimit(redisClient, 5, 30*time.Second)
	authHandler := handlers.NewAuthHandler(authService, limiter)
	contactHandler := handlers.NewContactHandler(contactService, limiter)
	userHandler := handlers.NewUserHandler(userService, limiter)

	// --- Fiber app ---
	app := fiber.New()
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.AllowOrigins,
		AllowCredentials: true,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Public auth routes; everything else requires a resolved current user.
	authHandler.RegisterRoutes(app)
	protected := app.Group("", middleware.AuthRequired(authService))
	contactHandler.RegisterRoutes(protected)
	userHandler.RegisterRoutes(protected)

	// --- Email delivery consumer ---
	go func() {
		log.Println("Starting email delivery consumer...")
		err := mqClient.ConsumeEmails(func(job queue.EmailJob) error {
			return mailSender.Send(job.To, job.Subject, job.Body)
		})
		if err != nil {
			log.Printf("Failed to start email consumer: %v", err)
		}
	}()

	// --- Start HTTP server ---
	log.Printf("Starting server on port %s", cfg.App.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.App.Port); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// seedRoles makes sure the closed role set exists before any registration
// needs it.
func seedRoles(db *gorm.DB) {
	for _, name := range []string{models.RoleAdmin, models.RoleUser} {
		role := models.Role{Name: name}
		if err := db.Where(models.Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
			log.Printf("Error seeding role %s: %v", name, err)
		} else {
			log.Printf("Seeded role: %s (ID: %d)", name, role.ID)
		}
	}
}
