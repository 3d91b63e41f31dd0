package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/david-crosby/Ripple/internal/adapters/http/middleware"
	"github.com/david-crosby/Ripple/internal/adapters/http/routes"
	"github.com/david-crosby/Ripple/internal/adapters/persistence/models"
	"github.com/david-crosby/Ripple/internal/adapters/persistence/repositories"
	"github.com/david-crosby/Ripple/internal/config"
	"github.com/david-crosby/Ripple/internal/core/services"
	"github.com/david-crosby/Ripple/internal/pkg/logger"
	"github.com/david-crosby/Ripple/internal/pkg/password"
	"github.com/david-crosby/Ripple/internal/pkg/ratelimit"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/david-crosby/Ripple/docs" // Swagger docs
)

// @title Ripple API
// @version 1.0
// @description Donation and fundraising platform API

// @contact.name API Support
// @contact.email support@ripple.example

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if _, err := logger.InitLogger(cfg.Log); err != nil {
		log.Fatalf("failed to initialise logger: %v", err)
	}
	defer logger.Sync()

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		zap.L().Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = config.CloseDatabase(db) }()

	if err := models.AutoMigrate(db); err != nil {
		zap.L().Fatal("failed to auto migrate", zap.Error(err))
	}
	zap.L().Info("database migration completed")

	store := repositories.NewStore(db)

	// Seed the admin account when configured
	seeder := config.NewSeeder(store, password.NewVault(cfg.Security.BcryptCost), cfg.Admin)
	if err := seeder.Run(context.Background()); err != nil {
		zap.L().Warn("failed to seed data", zap.Error(err))
	}

	limiter, closeLimiter := newLimiter(cfg)
	defer closeLimiter()

	// Periodic ledger audit
	cronService, err := services.NewCronService(services.CronConfig{
		AuditSchedule: cfg.Ledger.AuditSchedule,
		JobTimeout:    time.Minute,
	}, services.NewLedgerAuditor(store))
	if err != nil {
		zap.L().Fatal("failed to schedule cron jobs", zap.Error(err))
	}
	cronService.Start()
	defer cronService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Ripple API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes
	if err := routes.Setup(app, db, cfg, limiter); err != nil {
		zap.L().Fatal("failed to set up routes", zap.Error(err))
	}

	// Graceful shutdown
	go gracefulShutdown(app)

	zap.L().Info("server starting", zap.String("port", cfg.Port), zap.String("mode", cfg.AppMode))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zap.L().Error("server stopped", zap.Error(err))
	}
}

// newLimiter picks the rate limiter backend. Redis is used when configured and
// reachable; otherwise counters live in process memory.
func newLimiter(cfg *config.Config) (ratelimit.Limiter, func()) {
	if cfg.RateLimit.Store == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		err := client.Ping(ctx).Err()
		if err == nil {
			var limiter *ratelimit.StoreLimiter
			limiter, err = ratelimit.NewRedisLimiter(client, "ripple:ratelimit")
			if err == nil {
				zap.L().Info("rate limiter using redis", zap.String("addr", cfg.Redis.Addr))
				return limiter, func() { _ = client.Close() }
			}
		}

		zap.L().Warn("redis unreachable, rate limiter falling back to memory", zap.Error(err))
		_ = client.Close()
	}

	return ratelimit.NewMemoryLimiter(), func() {}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zap.L().Error("error during shutdown", zap.Error(err))
	}
	zap.L().Info("server stopped gracefully")
}
