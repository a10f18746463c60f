// Package api wires together all HTTP routes for the cookbook backend.
//
// Route grouping philosophy:
//   - Catalog routes (/api/v1/public/, /, /healthz) are unauthenticated: the
//     public site and link previews must work without credentials.
//   - Administrative routes (/api/v1/recipes, /api/v1/tokens, /api/v1/users/me)
//     require a static token bound to an admin account.
//   - Author routes (/api/v1/author/) require a live session token.
//   - The skill route carries a static token but no admin requirement, so a
//     voice-assistant integration can hold a narrow credential.
package api

import (
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/cookbook/cookbook-backend/internal/api/admin"
	"github.com/cookbook/cookbook-backend/internal/api/authn"
	"github.com/cookbook/cookbook-backend/internal/api/author"
	"github.com/cookbook/cookbook-backend/internal/api/public"
	"github.com/cookbook/cookbook-backend/internal/auth"
	"github.com/cookbook/cookbook-backend/internal/auth/oidc"
	"github.com/cookbook/cookbook-backend/internal/config"
	"github.com/cookbook/cookbook-backend/internal/db/repositories"
	"github.com/cookbook/cookbook-backend/internal/middleware"
	"github.com/cookbook/cookbook-backend/internal/storage"
	"github.com/cookbook/cookbook-backend/internal/storage/local"
	"github.com/cookbook/cookbook-backend/internal/telemetry"

	// Import storage backends to register them
	_ "github.com/cookbook/cookbook-backend/internal/storage/gcs"
	_ "github.com/cookbook/cookbook-backend/internal/storage/s3"
)

// BackgroundServices holds resources that must be stopped during graceful
// shutdown. The caller (cmd/server) calls Shutdown() after the HTTP server
// has drained.
type BackgroundServices struct {
	rateLimiters []*middleware.RateLimiter
}

// Shutdown stops all background goroutines.
func (bg *BackgroundServices) Shutdown() {
	for _, rl := range bg.rateLimiters {
		rl.Stop()
	}
	slog.Info("all background services stopped")
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, db *sql.DB) (*gin.Engine, *BackgroundServices) {
	router := gin.New()

	// Initialize storage backend
	blobs, err := storage.NewStorage(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage backend: %v", err)
	}
	slog.Info("initialized storage backend", "backend", cfg.Storage.DefaultBackend)

	// Initialize repositories
	accountRepo := repositories.NewAccountRepository(db)
	recipeRepo := repositories.NewRecipeRepository(db)

	// Wrap *sql.DB with sqlx for the token and page repositories
	sqlxDB := sqlx.NewDb(db, "postgres")
	staticTokenRepo := repositories.NewStaticTokenRepository(sqlxDB)
	sessionTokenRepo := repositories.NewSessionTokenRepository(sqlxDB)
	pageRepo := repositories.NewPageRepository(sqlxDB)

	// Initialize services
	staticTokens := auth.NewStaticTokenService(staticTokenRepo, cfg.Auth.TokenSecret)
	sessionTokens := auth.NewSessionTokenService(sessionTokenRepo, cfg.Auth.TokenSecret, cfg.Auth.SessionTTL)
	binder := auth.NewIdentityBinder(accountRepo)

	provider, err := oidc.New(&cfg.Auth.Google)
	if err != nil {
		log.Fatalf("Failed to initialize identity provider: %v", err)
	}

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(LoggerMiddleware(cfg))
	router.Use(CORSMiddleware(cfg))
	// The landing page and /images serve HTML and pictures, so the default
	// header set applies globally; the JSON surface tightens it below.
	router.Use(middleware.SecurityHeadersMiddleware(middleware.DefaultSecurityHeadersConfig()))

	// Rate limiters: the auth endpoints get a stricter budget because each
	// login fans out to the identity provider, and uploads get their own so a
	// bulk image import cannot starve reads.
	defaultLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimitConfig())
	authLimiter := middleware.NewRateLimiter(middleware.AuthRateLimitConfig())
	uploadLimiter := middleware.NewRateLimiter(middleware.UploadRateLimitConfig())
	bg := &BackgroundServices{rateLimiters: []*middleware.RateLimiter{defaultLimiter, authLimiter, uploadLimiter}}

	router.Use(middleware.RateLimitMiddleware(defaultLimiter))

	// Handlers
	adminRecipes := admin.NewRecipeHandlers(recipeRepo, blobs)
	adminTokens := admin.NewTokenHandlers(staticTokens)
	authorRecipes := author.NewRecipeHandlers(recipeRepo, blobs, cfg.Uploads.MaxImageBytes())
	publicRecipes := public.NewRecipeHandlers(recipeRepo)
	pages := public.NewPageHandlers(cfg, pageRepo)
	authnHandlers := authn.NewHandlers(provider, binder, sessionTokens)

	// Landing and health
	router.GET("/", pages.IndexHandler())
	router.GET("/healthz", public.HealthzHandler())

	// Local storage serves its files directly; remote backends embed their
	// own public URLs in recipe rows.
	if ls, ok := blobs.(*local.LocalStorage); ok {
		router.Static("/images", ls.BasePath())
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.SecurityHeadersMiddleware(middleware.APISecurityHeadersConfig()))

	// Authn: no auth middleware, see package authn
	authGroup := v1.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(authLimiter))
	{
		authGroup.GET("/login", authnHandlers.LoginHandler())
		authGroup.GET("/logout", authnHandlers.LogoutHandler())
	}

	// Public catalog
	publicGroup := v1.Group("/public")
	{
		publicGroup.GET("/recipes", publicRecipes.ListHandler())
		publicGroup.GET("/recipes/:id", publicRecipes.GetHandler())
		publicGroup.GET("/recipes/:id/meta", publicRecipes.MetaHandler())
	}

	// Skill: static token, no admin requirement
	skillGroup := v1.Group("/skill")
	skillGroup.Use(middleware.StaticTokenAuth(staticTokens))
	{
		skillGroup.GET("/recipes", publicRecipes.SkillHandler())
	}

	// Administrative surface: static token bound to an admin account
	adminAuth := middleware.AdminTokenAuth(staticTokens, accountRepo)

	recipesGroup := v1.Group("/recipes")
	recipesGroup.Use(adminAuth)
	{
		recipesGroup.GET("", adminRecipes.ListHandler())
		recipesGroup.POST("", adminRecipes.CreateHandler())
		recipesGroup.GET("/:id", adminRecipes.GetHandler())
		recipesGroup.PUT("/:id", adminRecipes.UpdateHandler())
		recipesGroup.DELETE("/:id", adminRecipes.DeleteHandler())
		recipesGroup.PATCH("/:id/publish", adminRecipes.PublishHandler())
		recipesGroup.PATCH("/:id/unpublish", adminRecipes.UnpublishHandler())
		recipesGroup.PATCH("/:id/image", middleware.RateLimitMiddleware(uploadLimiter), adminRecipes.ImageHandler())
	}

	tokensGroup := v1.Group("/tokens")
	tokensGroup.Use(adminAuth)
	{
		tokensGroup.GET("", adminTokens.ListHandler())
		tokensGroup.POST("", adminTokens.CreateHandler())
		tokensGroup.DELETE("/:id", adminTokens.DeleteHandler())
		tokensGroup.GET("/echo", adminTokens.EchoHandler())
	}

	v1.GET("/users/me", adminAuth, admin.MeHandler())

	// Author surface: session token
	sessionAuth := middleware.SessionAuth(sessionTokens)

	authorGroup := v1.Group("/author/recipes")
	authorGroup.Use(sessionAuth)
	{
		authorGroup.GET("", authorRecipes.ListHandler())
		authorGroup.POST("", authorRecipes.CreateHandler())
		authorGroup.GET("/:id", authorRecipes.GetHandler())
		authorGroup.PUT("/:id", authorRecipes.UpdateHandler())
		authorGroup.DELETE("/:id", authorRecipes.DeleteHandler())
		authorGroup.PATCH("/:id/review", authorRecipes.ReviewHandler())
		authorGroup.PATCH("/:id/unreview", authorRecipes.UnreviewHandler())
		authorGroup.PATCH("/:id/unpublish", authorRecipes.UnpublishHandler())
		authorGroup.PATCH("/:id/image", middleware.RateLimitMiddleware(uploadLimiter), authorRecipes.ImageHandler())
	}

	v1.GET("/users/me/public", sessionAuth, author.MeHandler(accountRepo))

	// Keep the connection-pool gauge fresh while the process runs
	telemetry.StartDBStatsCollector(db)

	return router, bg
}

// LoggerMiddleware provides structured request logging
func LoggerMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		requestID, _ := c.Get(middleware.RequestIDKey)
		slog.LogAttrs(
			c.Request.Context(),
			slog.LevelInfo,
			"http request",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.Int("status", c.Writer.Status()),
			slog.Int("size", c.Writer.Size()),
			slog.Duration("latency", latency),
			slog.String("ip", c.ClientIP()),
			slog.String("request_id", fmt.Sprintf("%v", requestID)),
			slog.String("user_agent", c.Request.UserAgent()),
		)
	}
}

// CORSMiddleware handles CORS
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowed := false
		for _, allowedOrigin := range cfg.Server.CORS.AllowedOrigins {
			if allowedOrigin == "*" || allowedOrigin == origin {
				allowed = true
				break
			}
		}

		if allowed {
			if origin == "" {
				c.Header("Access-Control-Allow-Origin", "*")
			} else {
				c.Header("Access-Control-Allow-Origin", origin)
			}
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Requested-With")
			c.Header("Access-Control-Max-Age", "3600")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
