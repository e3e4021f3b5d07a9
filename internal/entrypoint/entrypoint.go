package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/accesslearn/internal/auth"
	"github.com/mrlokans/accesslearn/internal/bus"
	"github.com/mrlokans/accesslearn/internal/config"
	"github.com/mrlokans/accesslearn/internal/database"
	"github.com/mrlokans/accesslearn/internal/database/profiles"
	"github.com/mrlokans/accesslearn/internal/database/progress"
	"github.com/mrlokans/accesslearn/internal/database/settings"
	http_controllers "github.com/mrlokans/accesslearn/internal/http"
	"github.com/mrlokans/accesslearn/internal/learning"
	"github.com/mrlokans/accesslearn/internal/prefs"
	"github.com/mrlokans/accesslearn/internal/scheduler"
	"github.com/mrlokans/accesslearn/internal/speech"
	"github.com/mrlokans/accesslearn/internal/tasks"
	"github.com/mrlokans/accesslearn/internal/telemetry"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Close announcement streams and stop workers before the server drains
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// speechSetup is the announcement backend chosen by SPEECH_BACKEND.
type speechSetup struct {
	provider speech.Provider
	hub      *speech.Hub
	check    *http_controllers.HealthCheck
	close    func()
}

func newSpeech(cfg config.Speech) (*speechSetup, error) {
	switch cfg.Backend {
	case config.SpeechBackendBrowser, "":
		hub := speech.NewHub(cfg.StreamGrace)
		log.Printf("Speech backend: browser (stream grace %s)", cfg.StreamGrace)
		return &speechSetup{provider: hub, hub: hub}, nil

	case config.SpeechBackendExec:
		backend, err := speech.NewExecBackend(cfg.Command)
		if err != nil {
			return nil, err
		}
		if !backend.Available() {
			log.Printf("WARNING: speech command %q not found, announcements will be silent", cfg.Command)
		}
		log.Printf("Speech backend: exec (%s)", cfg.Command)
		return &speechSetup{
			provider: speech.Shared{B: backend},
			close:    backend.CancelCurrent,
		}, nil

	case config.SpeechBackendNATS:
		url := cfg.NATSURL
		var embedded *bus.EmbeddedServer
		if cfg.NATSEmbedded {
			var err error
			embedded, err = bus.StartEmbedded(cfg.NATSEmbeddedHost, cfg.NATSEmbeddedPort)
			if err != nil {
				return nil, err
			}
			url = embedded.ClientURL()
		}

		client, err := bus.Connect(url, "accesslearn", 5*time.Second)
		if err != nil {
			embedded.Shutdown()
			return nil, err
		}
		log.Printf("Speech backend: nats (subject prefix %s)", cfg.NATSSubject)

		return &speechSetup{
			provider: speech.NewNATSProvider(client, cfg.NATSSubject),
			check: &http_controllers.HealthCheck{
				Name: "speech",
				Check: func() error {
					if !client.Healthy() {
						return bus.ErrNotConnected
					}
					return nil
				},
			},
			close: func() {
				client.Close()
				embedded.Shutdown()
			},
		}, nil

	case config.SpeechBackendNone:
		log.Printf("Speech backend: none")
		return &speechSetup{provider: speech.None{}}, nil
	}

	return nil, fmt.Errorf("unknown speech backend %q", cfg.Backend)
}

// authSetup carries the pieces needed for learner accounts.
type authSetup struct {
	service    *auth.Service
	middleware *auth.Middleware
	sessions   *auth.SessionManager
	csrfSecret []byte
}

func newAuth(db *database.Database, cfg config.Auth) (*authSetup, error) {
	if cfg.Mode != config.AuthModeLocal {
		log.Printf("Authentication mode: none (single anonymous learner)")
		return &authSetup{}, nil
	}
	log.Printf("Authentication mode: local")

	service := auth.NewService(db.DB, cfg)

	sqlDB, err := db.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB for sessions: %w", err)
	}
	sessions, err := auth.NewSessionManager(sqlDB, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session manager: %w", err)
	}

	var csrfSecret []byte
	if cfg.SessionSecret != "" {
		csrfSecret, err = hex.DecodeString(cfg.SessionSecret)
		if err != nil {
			// Not hex, use as raw bytes
			csrfSecret = []byte(cfg.SessionSecret)
		}
	} else {
		secret, err := auth.GenerateSessionSecret()
		if err != nil {
			return nil, fmt.Errorf("failed to generate CSRF secret: %w", err)
		}
		csrfSecret, _ = hex.DecodeString(secret)
		log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	}

	if count, _ := service.GetUserCount(); count == 0 {
		log.Printf("No learners registered yet. Visit / to create an account.")
	}

	return &authSetup{
		service:    service,
		middleware: auth.NewMiddleware(service, sessions, cfg),
		sessions:   sessions,
		csrfSecret: csrfSecret,
	}, nil
}

// inlinePruner prunes immediately when the task queue is disabled.
type inlinePruner struct {
	repo     tasks.ProfilePruner
	onPruned func(profiles.PruneResult)
}

func (p inlinePruner) EnqueuePruneProfiles(retention time.Duration) (string, error) {
	result, err := p.repo.Prune(retention)
	if err != nil {
		return "", err
	}
	log.Printf("Profiles: pruned %d profiles (%d settings, %d progress rows)",
		result.Profiles, result.Settings, result.Progress)
	p.onPruned(result)
	return "inline", nil
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting AccessLearn v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	catalog, err := learning.DefaultCatalog()
	if err != nil {
		log.Fatalf("Failed to load module catalog: %v", err)
	}
	log.Printf("Loaded %d learning modules", len(catalog.All()))

	var metrics *telemetry.Telemetry
	if cfg.Telemetry.MetricsEnabled {
		metrics, err = telemetry.New(cfg.Telemetry.ServiceName)
		if err != nil {
			log.Fatalf("Failed to initialize telemetry: %v", err)
		}
	}

	settingsRepo := settings.NewRepository(db.DB)
	profilesRepo := profiles.NewRepository(db.DB)
	progressRepo := progress.NewRepository(db.DB)

	registry, err := prefs.NewRegistry(cfg.Preferences.CacheSize, func(profileID string) prefs.Storage {
		return settingsRepo.ForProfile(profileID)
	})
	if err != nil {
		log.Fatalf("Failed to initialize preference registry: %v", err)
	}
	if metrics != nil {
		registry.SetMetrics(metrics)
	}
	registry.OnLoad(func(profileID string) {
		log.Printf("Preferences: loaded profile %s from storage", profileID)
	})

	sp, err := newSpeech(cfg.Speech)
	if err != nil {
		log.Fatalf("Failed to initialize speech backend: %v", err)
	}

	accounts, err := newAuth(db, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize authentication: %v", err)
	}

	onPruned := func(result profiles.PruneResult) {
		registry.Forget(result.IDs...)
		if metrics != nil {
			metrics.ProfilesPruned(result.Profiles)
		}
	}

	// Task queue runs the prune in the background when enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var enqueuer scheduler.PruneEnqueuer = inlinePruner{repo: profilesRepo, onPruned: onPruned}
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		})
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(tasks.NewPruneProfilesQueue(profilesRepo, onPruned))

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
		enqueuer = taskClient
	}

	var pruneScheduler *scheduler.ProfilePruneScheduler
	if cfg.Profiles.PruneEnabled {
		pruneScheduler = scheduler.NewProfilePruneScheduler(enqueuer, cfg.Profiles.PruneSchedule, cfg.Profiles.Retention)
		if err := pruneScheduler.Start(context.Background()); err != nil {
			log.Printf("WARNING: profile pruning disabled: %v", err)
			pruneScheduler = nil
		}
	}

	routerCfg := http_controllers.RouterConfig{
		Database:         db,
		Catalog:          catalog,
		Registry:         registry,
		Progress:         progressRepo,
		Profiles:         profilesRepo,
		Speech:           sp.provider,
		Hub:              sp.hub,
		DeviceCookieName: cfg.Preferences.DeviceCookieName,
		DeviceCookieTTL:  cfg.Preferences.DeviceCookieTTL,
		AuthConfig:       cfg.Auth,
		AuthService:      accounts.service,
		AuthMiddleware:   accounts.middleware,
		SessionManager:   accounts.sessions,
		CSRFSecret:       accounts.csrfSecret,
		SecureCookies:    cfg.Auth.SecureCookies,
		TemplatesPath:    cfg.UI.TemplatesPath,
		StaticPath:       cfg.UI.StaticPath,
		Version:          version,
		Telemetry:        metrics,
		ProfileRetention: cfg.Profiles.Retention,
	}
	if sp.check != nil {
		routerCfg.HealthChecks = append(routerCfg.HealthChecks, *sp.check)
	}
	// A nil *tasks.Client must not become a non-nil TaskQueue
	if taskClient != nil {
		routerCfg.Tasks = taskClient
	}

	router, err := http_controllers.NewRouter(routerCfg)
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	onShutdown := func(ctx context.Context) {
		if pruneScheduler != nil {
			pruneScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		if sp.close != nil {
			sp.close()
		}
		if metrics != nil {
			if err := metrics.Shutdown(ctx); err != nil {
				log.Printf("Error shutting down telemetry: %v", err)
			}
		}
	}

	Serve(router, cfg, onShutdown)
}
