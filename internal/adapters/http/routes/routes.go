package routes

import (
	"time"

	"github.com/david-crosby/Ripple/internal/adapters/http/handlers"
	"github.com/david-crosby/Ripple/internal/adapters/http/middleware"
	"github.com/david-crosby/Ripple/internal/adapters/persistence/repositories"
	"github.com/david-crosby/Ripple/internal/config"
	"github.com/david-crosby/Ripple/internal/core/services"
	"github.com/david-crosby/Ripple/internal/pkg/jwt"
	"github.com/david-crosby/Ripple/internal/pkg/password"
	"github.com/david-crosby/Ripple/internal/pkg/ratelimit"
	"github.com/david-crosby/Ripple/internal/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, limiter ratelimit.Limiter) error {
	// Initialize store and security primitives
	store := repositories.NewStore(db)
	vault := password.NewVault(cfg.Security.BcryptCost)
	tokens, err := jwt.NewService(jwt.Options{
		Secret:    cfg.JWT.Secret,
		Algorithm: cfg.JWT.Algorithm,
		TTL:       cfg.AccessTokenTTL(),
		Issuer:    cfg.JWT.Issuer,
	})
	if err != nil {
		return err
	}
	validate := validator.New()

	// Initialize services
	authService := services.NewAuthService(store, vault, tokens)
	userService := services.NewUserService(store, vault)
	giverService := services.NewGiverService(store)
	campaignService := services.NewCampaignService(store)
	ledger := services.NewLedgerService(store, cfg.Ledger.TxTimeout)
	dashboardService := services.NewDashboardService(db)
	auditor := services.NewLedgerAuditor(store)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, cfg)
	authHandler := handlers.NewAuthHandler(authService, validate, cfg)
	userHandler := handlers.NewUserHandler(userService, validate)
	giverHandler := handlers.NewGiverHandler(giverService, validate)
	campaignHandler := handlers.NewCampaignHandler(campaignService, validate)
	donationHandler := handlers.NewDonationHandler(ledger, giverService, validate)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, auditor)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	requireAuth := middleware.AuthMiddleware(authService)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	setupAuthRoutes(apiV1.Group("/auth"), authHandler, requireAuth, limiter, cfg)
	setupUserRoutes(apiV1.Group("/users", requireAuth), userHandler)
	setupGiverRoutes(apiV1.Group("/givers"), giverHandler, requireAuth)
	setupCampaignRoutes(apiV1.Group("/campaigns"), campaignHandler, requireAuth)
	setupDonationRoutes(apiV1.Group("/donations"), donationHandler, requireAuth)
	setupAdminRoutes(apiV1.Group("/admin", requireAuth, middleware.AdminOnly()), dashboardHandler)

	return nil
}

// setupAuthRoutes configures auth routes; login and register are rate limited per client IP
func setupAuthRoutes(router fiber.Router, h *handlers.AuthHandler, requireAuth fiber.Handler, limiter ratelimit.Limiter, cfg *config.Config) {
	router.Post("/register", middleware.RateLimit(limiter, "register", cfg.RateLimit.Register), h.Register)
	router.Post("/login", middleware.RateLimit(limiter, "login", cfg.RateLimit.Login), h.Login)
	router.Post("/logout", h.Logout)
	router.Get("/me", requireAuth, middleware.NoCacheHeaders(), h.Me)
}

// setupUserRoutes configures self-service and admin user routes
func setupUserRoutes(router fiber.Router, h *handlers.UserHandler) {
	router.Use(middleware.NoCacheHeaders())

	router.Get("/me", h.GetProfile)
	router.Put("/me", h.UpdateProfile)
	router.Put("/me/password", h.ChangePassword)
	router.Get("/me/stats", h.Stats)

	// Admin only
	router.Get("/", middleware.AdminOnly(), h.ListUsers)
	router.Patch("/:id/active", middleware.AdminOnly(), h.SetActive)
}

// setupGiverRoutes configures giver profile routes
func setupGiverRoutes(router fiber.Router, h *handlers.GiverHandler, requireAuth fiber.Handler) {
	router.Get("/me", requireAuth, h.GetMine)
	router.Put("/me", requireAuth, h.UpdateMine)
	router.Get("/leaderboard", middleware.PublicCache(30*time.Second), h.Leaderboard)
	router.Get("/:user_id", h.GetPublic)
}

// setupCampaignRoutes configures campaign routes
func setupCampaignRoutes(router fiber.Router, h *handlers.CampaignHandler, requireAuth fiber.Handler) {
	router.Get("/", h.List)
	router.Get("/my", requireAuth, middleware.PrivateCacheHeaders(0), h.My)
	router.Get("/:id", h.Get)
	router.Post("/", requireAuth, h.Create)
	router.Put("/:id", requireAuth, h.Update)
	router.Patch("/:id/status", requireAuth, h.ChangeStatus)
	router.Delete("/:id", requireAuth, h.Cancel)
}

// setupDonationRoutes configures donation routes
func setupDonationRoutes(router fiber.Router, h *handlers.DonationHandler, requireAuth fiber.Handler) {
	router.Get("/campaign/:id", h.ByCampaign)

	router.Post("/", requireAuth, h.Create)
	router.Get("/my", requireAuth, h.My)
	router.Get("/:id", requireAuth, h.Get)
	router.Patch("/:id/status", requireAuth, h.UpdateStatus)
}

// setupAdminRoutes configures admin-only reporting routes
func setupAdminRoutes(router fiber.Router, h *handlers.DashboardHandler) {
	router.Use(middleware.NoCacheHeaders())

	router.Get("/dashboard", h.GetAdminDashboard)
	router.Get("/ledger/audit", h.AuditLedger)
}
