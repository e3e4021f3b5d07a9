// Package auth identifies learners and guards the learner-only pages.
//
// It supports two modes:
//   - "local": learner accounts with bcrypt passwords and session cookies (default)
//   - "none": no accounts, every request is the anonymous learner
//
// # Configuration
//
//	AUTH_MODE=local
//	AUTH_SESSION_SECRET=<base64-32-bytes>  # CSRF key, generated if empty
//	AUTH_SESSION_LIFETIME=24h
//	AUTH_BCRYPT_COST=12
//	AUTH_SECURE_COOKIES=true               # HTTPS-only cookies
//	AUTH_MAX_LOGIN_ATTEMPTS=5
//
// # Usage
//
//	svc := auth.NewService(db, cfg.Auth)
//	sm, _ := auth.NewSessionManager(sqlDB, cfg.Auth)
//	router.Use(sm.SessionLoadSave())
//	router.Use(auth.NewMiddleware(svc, sm, cfg.Auth).Handler())
//	auth.NewAuthController(svc, sm, cfg.Auth, announce).RegisterRoutes(router)
//	learner := router.Group("/", auth.RequireAuth())
//
// The login and registration forms live on the landing page. Each outcome
// is spoken through the announce hook and answered with a redirect.
package auth
