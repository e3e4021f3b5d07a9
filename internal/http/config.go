package http

import (
	"time"

	"github.com/mrlokans/accesslearn/internal/auth"
	"github.com/mrlokans/accesslearn/internal/config"
	"github.com/mrlokans/accesslearn/internal/database"
	"github.com/mrlokans/accesslearn/internal/learning"
	"github.com/mrlokans/accesslearn/internal/prefs"
	"github.com/mrlokans/accesslearn/internal/speech"
	"github.com/mrlokans/accesslearn/internal/telemetry"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database
	Catalog  *learning.Catalog
	Registry *prefs.Registry
	Progress ProgressStore
	Profiles ProfileToucher

	// Speech. Hub is set only when pages speak through the browser stream.
	Speech speech.Provider
	Hub    *speech.Hub

	// Device profile cookie
	DeviceCookieName string
	DeviceCookieTTL  time.Duration

	// Authentication
	AuthConfig     config.Auth
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager
	CSRFSecret     []byte
	SecureCookies  bool

	// UI paths
	TemplatesPath string
	StaticPath    string

	// Operations
	Version      string
	Telemetry    *telemetry.Telemetry
	HealthChecks []HealthCheck

	// Task queue (optional)
	Tasks            TaskQueue
	ProfileRetention time.Duration
}
