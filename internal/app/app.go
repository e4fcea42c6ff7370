// Package app wires configuration, storage and handlers into a Fiber app.
package app

import (
	"fmt"
	"log"
	"time"

	"blog/internal/config"
	"blog/internal/handlers"
	"blog/internal/middleware"
	"blog/internal/models"
	"blog/internal/repositories"
	"blog/internal/seed"
	"blog/internal/services"
	"blog/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"gorm.io/gorm"
)

// Deps are the external resources the app runs on. Publisher and
// SessionStorage are optional.
type Deps struct {
	DB             *gorm.DB
	Publisher      services.EventPublisher
	SessionStorage fiber.Storage
}

// NewApp builds the Fiber app with every route registered.
func NewApp(cfg *config.Config, deps Deps) (*fiber.App, *services.AuthService, error) {
	if deps.DB == nil {
		return nil, nil, fmt.Errorf("a database is required")
	}

	v := validation.New(cfg.Locale)

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(deps.DB)
	postRepo := repositories.NewGORMPostRepository(deps.DB)

	// --- Services ---
	authService := services.NewAuthService(userRepo, v, cfg.JWTSecret).
		WithTokenDurations(cfg.TokenDuration, cfg.RememberDuration)
	postService := services.NewPostService(postRepo, v)
	if deps.Publisher != nil {
		authService.WithPublisher(deps.Publisher)
		postService.WithPublisher(deps.Publisher)
	}
	avatarService := services.NewAvatarService(cfg.StaticDir, cfg.AvatarSize)
	if err := avatarService.EnsurePlaceholder(models.DefaultImageFile); err != nil {
		return nil, nil, err
	}
	accountService := services.NewAccountService(userRepo, avatarService, v)

	if cfg.SeedDemo {
		if _, err := seed.Demo(authService, postService, seed.Options{Users: 5, PostsPerUser: 3}); err != nil {
			log.Printf("Demo seeding stopped early: %v", err)
		}
	}

	// --- Handlers ---
	homeHandler := handlers.NewHomeHandler(cfg.SiteTitle, cfg.SiteName)
	authHandler := handlers.NewAuthHandler(authService, v, cfg.IsProduction())
	accountHandler := handlers.NewAccountHandler(accountService, v)
	postHandler := handlers.NewPostHandler(postService, v)

	app := fiber.New(fiber.Config{
		BodyLimit: 16 * 1024 * 1024,
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(logger.New())
	prom := middleware.Metrics("blog")
	app.Use(prom.Middleware)
	// Every route below, static files included, sees the principal.
	app.Use(middleware.CurrentUser(authService))
	prom.RegisterAt(app, "/metrics")

	app.Static("/static", cfg.StaticDir)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"events": deps.Publisher != nil,
		})
	})

	sessionConfig := session.Config{
		Expiration:     24 * time.Hour,
		KeyLookup:      "cookie:session_id",
		CookieHTTPOnly: true,
		CookieSecure:   cfg.IsProduction(),
		CookieSameSite: fiber.CookieSameSiteLaxMode,
	}
	if deps.SessionStorage != nil {
		sessionConfig.Storage = deps.SessionStorage
	}
	app.Use(middleware.Sessions(session.New(sessionConfig)))

	loginRequired := middleware.LoginRequired(v)

	// --- Routes ---
	homeHandler.RegisterRoutes(app)
	authHandler.RegisterRoutes(app)
	accountHandler.RegisterRoutes(app, loginRequired)
	postHandler.RegisterRoutes(app, loginRequired)

	return app, authService, nil
}
