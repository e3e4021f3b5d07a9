package http

import (
	"html/template"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/accesslearn/internal/auth"
)

// contextKeySpeechStream marks requests whose pages should open the
// announcement stream.
const contextKeySpeechStream = "speech_stream"

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		router.Use(auth.DisabledAuthHandler())
	}

	// Routes registered before the device profile middleware never create
	// a profile, so health checks and asset fetches stay out of the store cache.
	health := NewHealthController(cfg.Database, cfg.Version, cfg.HealthChecks...)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	if cfg.Telemetry != nil {
		router.GET("/metrics", gin.WrapH(cfg.Telemetry.Handler()))
	}
	router.Static("/static", cfg.StaticPath)

	devices, err := NewDeviceProfiles(cfg)
	if err != nil {
		return nil, err
	}
	router.Use(devices.Handler())

	// Inject auth data for templates
	router.Use(AuthContextMiddleware(cfg.AuthConfig.Mode))

	streaming := cfg.Hub != nil
	router.Use(func(c *gin.Context) {
		c.Set(contextKeySpeechStream, streaming)
		c.Next()
	})

	// Load HTML templates with custom functions
	tmpl, err := template.New("").Funcs(templateFuncs).ParseGlob(filepath.Join(cfg.TemplatesPath, "*.html"))
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(tmpl)

	// Register auth routes if learners have accounts
	if cfg.AuthService != nil && cfg.AuthService.IsAuthEnabled() {
		authController := auth.NewAuthController(cfg.AuthService, cfg.SessionManager, cfg.AuthConfig, Announce)
		authController.RegisterRoutes(router)
	}

	uiController := NewUIController(cfg.Catalog, cfg.Progress)

	// Pages and APIs open to every device
	router.GET("/", uiController.HomePage)
	NewSettingsController().RegisterRoutes(router)
	NewPreferencesController().RegisterRoutes(router)
	NewAnnouncementsController(cfg.Hub).RegisterRoutes(router)

	// Learner-only routes
	learner := router.Group("", auth.RequireAuth())
	NewModuleController(cfg.Catalog, cfg.Progress, cfg.Telemetry).RegisterRoutes(learner)
	if cfg.Tasks != nil {
		NewTasksController(cfg.Tasks, cfg.ProfileRetention).RegisterRoutes(learner)
	}

	router.NoRoute(uiController.NotFound)

	return router, nil
}
