package config

import (
	"time"

	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // Single anonymous learner, no login
	AuthModeLocal AuthMode = "local" // Local user database with sessions (default)
)

type (
	Config struct {
		HTTP
		Global
		Database
		UI
		Auth
		Speech
		Preferences
		Profiles
		Tasks
		Telemetry
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	UI struct {
		TemplatesPath string
		StaticPath    string
	}
	Auth struct {
		Mode              AuthMode
		SessionSecret     string
		SessionLifetime   time.Duration
		BcryptCost        int
		MinPasswordLength int
		SecureCookies     bool // Set to false for local dev without HTTPS

		// Rate limiting configuration
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
	Speech struct {
		Backend     string // browser, exec, nats or none
		Command     string // Synthesizer command for the exec backend, reads text on stdin
		NATSURL     string
		NATSSubject string // Subject prefix; ".say" and ".cancel" are appended

		// Embedded NATS server for single-host deployments; NATSURL is ignored when set
		NATSEmbedded     bool
		NATSEmbeddedHost string
		NATSEmbeddedPort int

		// How long a browser mailbox outlives its last listener, so announcements
		// made right before a page navigation reach the next page
		StreamGrace time.Duration
	}
	Preferences struct {
		CacheSize        int    // Number of profile stores kept in memory
		DeviceCookieName string // Cookie carrying the device profile id
		DeviceCookieTTL  time.Duration
	}
	Profiles struct {
		PruneEnabled  bool
		PruneSchedule string        // Cron format: "30 3 * * *" = daily at 03:30
		Retention     time.Duration // Profiles untouched for longer are pruned
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Telemetry struct {
		MetricsEnabled bool
		ServiceName    string
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("templates_path", "./templates")
	v.SetDefault("static_path", "./static")

	// Auth defaults
	v.SetDefault("auth_mode", "local")
	v.SetDefault("auth_session_secret", "")      // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h") // 24 hours
	v.SetDefault("auth_bcrypt_cost", 12)         // bcrypt cost factor
	v.SetDefault("auth_min_password_length", 12)
	v.SetDefault("auth_secure_cookies", true)     // HTTPS-only cookies
	v.SetDefault("auth_max_login_attempts", 5)    // Max failed attempts
	v.SetDefault("auth_rate_limit_window", "15m") // Window for counting attempts
	v.SetDefault("auth_lockout_duration", "30m")  // Lockout duration

	// Speech defaults
	v.SetDefault("speech_backend", SpeechBackendBrowser)
	v.SetDefault("speech_command", "espeak-ng --stdin")
	v.SetDefault("speech_nats_url", "nats://127.0.0.1:4222")
	v.SetDefault("speech_nats_subject", "accesslearn.speech")
	v.SetDefault("speech_nats_embedded", false)
	v.SetDefault("speech_nats_embedded_host", "127.0.0.1")
	v.SetDefault("speech_nats_embedded_port", 4222)
	v.SetDefault("speech_stream_grace", "10s")

	// Preference store defaults
	v.SetDefault("preferences_cache_size", 1024)
	v.SetDefault("device_cookie_name", DefaultDeviceCookieName)
	v.SetDefault("device_cookie_ttl", "8760h") // One year

	// Profile retention defaults
	v.SetDefault("profile_prune_enabled", true)
	v.SetDefault("profile_prune_schedule", "30 3 * * *")
	v.SetDefault("profile_retention", "2160h") // 90 days

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	// Telemetry defaults
	v.SetDefault("metrics_enabled", true)
	v.SetDefault("service_name", "accesslearn")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		UI: UI{
			TemplatesPath: v.GetString("TEMPLATES_PATH"),
			StaticPath:    v.GetString("STATIC_PATH"),
		},
		Auth: Auth{
			Mode:              AuthMode(v.GetString("AUTH_MODE")),
			SessionSecret:     v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:   v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:        v.GetInt("AUTH_BCRYPT_COST"),
			MinPasswordLength: v.GetInt("AUTH_MIN_PASSWORD_LENGTH"),
			SecureCookies:     v.GetBool("AUTH_SECURE_COOKIES"),
			MaxLoginAttempts:  v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:   v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:   v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Speech: Speech{
			Backend:     v.GetString("SPEECH_BACKEND"),
			Command:     v.GetString("SPEECH_COMMAND"),
			NATSURL:     v.GetString("SPEECH_NATS_URL"),
			NATSSubject: v.GetString("SPEECH_NATS_SUBJECT"),

			NATSEmbedded:     v.GetBool("SPEECH_NATS_EMBEDDED"),
			NATSEmbeddedHost: v.GetString("SPEECH_NATS_EMBEDDED_HOST"),
			NATSEmbeddedPort: v.GetInt("SPEECH_NATS_EMBEDDED_PORT"),

			StreamGrace: v.GetDuration("SPEECH_STREAM_GRACE"),
		},
		Preferences: Preferences{
			CacheSize:        v.GetInt("PREFERENCES_CACHE_SIZE"),
			DeviceCookieName: v.GetString("DEVICE_COOKIE_NAME"),
			DeviceCookieTTL:  v.GetDuration("DEVICE_COOKIE_TTL"),
		},
		Profiles: Profiles{
			PruneEnabled:  v.GetBool("PROFILE_PRUNE_ENABLED"),
			PruneSchedule: v.GetString("PROFILE_PRUNE_SCHEDULE"),
			Retention:     v.GetDuration("PROFILE_RETENTION"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Telemetry: Telemetry{
			MetricsEnabled: v.GetBool("METRICS_ENABLED"),
			ServiceName:    v.GetString("SERVICE_NAME"),
		},
	}
}
