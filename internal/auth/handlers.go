package auth

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/accesslearn/internal/config"
)

// Spoken outcomes of the auth forms.
const (
	AnnounceLoginSuccess        = "Login Successful. You have been logged in."
	AnnounceLoginFailed         = "Login Failed. Please check your credentials and try again."
	AnnounceLoginLocked         = "Login Failed. Too many login attempts. Please try again later."
	AnnounceRegisterSuccess     = "Registration Successful. Your account has been created."
	AnnounceRegisterMismatch    = "Registration Failed. Passwords do not match."
	AnnounceRegisterFailed      = "Registration Failed. There was an error creating your account."
	AnnounceLoggedOut           = "You have been logged out"
	FormLogin                   = "login"
	FormRegister                = "register"
	loginFailedMessage          = "Please check your credentials and try again."
	loginLockedMessage          = "Too many login attempts. Please try again later."
	registerFailedMessage       = "There was an error creating your account."
	registerSessionErrorMessage = "Your account was created but you could not be logged in. Please log in."
)

// AnnounceFunc speaks text to the learner behind c.
type AnnounceFunc func(c *gin.Context, text string)

// isLocalPath reports whether path is safe to redirect to.
func isLocalPath(path string) bool {
	if path == "" || !strings.HasPrefix(path, "/") {
		return false
	}
	// Protocol-relative, absolute and backslash tricks
	if strings.HasPrefix(path, "//") || strings.Contains(path, "://") || strings.Contains(path, "\\") {
		return false
	}
	return true
}

// SanitizeRedirectPath returns path when it stays on this site, else "/".
func SanitizeRedirectPath(path string) string {
	if isLocalPath(path) {
		return path
	}
	return "/"
}

// AuthController handles the login, registration and logout forms. The forms
// live on the landing page; every outcome redirects back to it or onwards.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	rateLimiter    *RateLimiter
	announce       AnnounceFunc
}

func NewAuthController(service *Service, sessionManager *SessionManager, cfg config.Auth, announce AnnounceFunc) *AuthController {
	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		rateLimiter: NewRateLimiter(RateLimitConfig{
			MaxAttempts:     cfg.MaxLoginAttempts,
			WindowDuration:  cfg.RateLimitWindow,
			LockoutDuration: cfg.LockoutDuration,
		}),
		announce: announce,
	}
}

func (ac *AuthController) RegisterRoutes(router gin.IRoutes) {
	router.GET("/auth", ac.formRedirect(FormLogin))
	router.GET("/login", ac.formRedirect(FormLogin))
	router.GET("/register", ac.formRedirect(FormRegister))
	router.POST("/login", ac.Login)
	router.POST("/register", ac.Register)
	router.POST("/logout", ac.Logout)
	router.GET("/logout", ac.Logout)
}

// Stop cleans up the rate limiter goroutine.
func (ac *AuthController) Stop() {
	if ac.rateLimiter != nil {
		ac.rateLimiter.Stop()
	}
}

func (ac *AuthController) formRedirect(form string) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := url.Values{"form": {form}}
		if next := c.Query("next"); isLocalPath(next) {
			q.Set("next", next)
		}
		c.Redirect(http.StatusFound, "/?"+q.Encode())
	}
}

func (ac *AuthController) Login(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	next := SanitizeRedirectPath(c.PostForm("next"))
	clientIP := c.ClientIP()

	if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, email); !allowed {
		c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
		ac.speak(c, AnnounceLoginLocked)
		ac.backToForm(c, FormLogin, loginLockedMessage, email, next)
		return
	}

	user, err := ac.service.Authenticate(email, password)
	if err != nil {
		ac.rateLimiter.RecordFailure(clientIP, email)
		if !errors.Is(err, ErrUserNotFound) && !errors.Is(err, ErrInvalidPassword) && !errors.Is(err, ErrAccountLocked) {
			log.Printf("Auth: login failed for %s: %v", clientIP, err)
		}

		msg, spoken := loginFailedMessage, AnnounceLoginFailed
		if errors.Is(err, ErrAccountLocked) {
			msg, spoken = loginLockedMessage, AnnounceLoginLocked
		}
		ac.speak(c, spoken)
		ac.backToForm(c, FormLogin, msg, email, next)
		return
	}

	ac.rateLimiter.RecordSuccess(clientIP, email)

	if ac.sessionManager != nil {
		if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
			log.Printf("Auth: failed to create session: %v", err)
			ac.speak(c, AnnounceLoginFailed)
			ac.backToForm(c, FormLogin, "Failed to create session", email, next)
			return
		}
	}

	ac.speak(c, AnnounceLoginSuccess)
	c.Redirect(http.StatusFound, next)
}

func (ac *AuthController) Register(c *gin.Context) {
	name := c.PostForm("name")
	email := strings.TrimSpace(c.PostForm("email"))

	user, err := ac.service.Register(name, email, c.PostForm("password"), c.PostForm("confirm_password"))
	if err != nil {
		spoken := AnnounceRegisterFailed
		if errors.Is(err, ErrPasswordMismatch) {
			spoken = AnnounceRegisterMismatch
		}
		ac.speak(c, spoken)
		ac.backToForm(c, FormRegister, registrationErrorMessage(err), email, "")
		return
	}

	ac.speak(c, AnnounceRegisterSuccess)

	if ac.sessionManager != nil {
		if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
			log.Printf("Auth: failed to create session after registration: %v", err)
			ac.backToForm(c, FormLogin, registerSessionErrorMessage, email, "")
			return
		}
	}

	c.Redirect(http.StatusFound, "/")
}

func (ac *AuthController) Logout(c *gin.Context) {
	if ac.sessionManager != nil {
		_ = ac.sessionManager.DestroySession(c.Request)
	}
	ac.speak(c, AnnounceLoggedOut)
	c.Redirect(http.StatusFound, "/")
}

func (ac *AuthController) speak(c *gin.Context, text string) {
	if ac.announce != nil {
		ac.announce(c, text)
	}
}

func (ac *AuthController) backToForm(c *gin.Context, form, message, email, next string) {
	q := url.Values{"form": {form}, "error": {message}}
	if email != "" {
		q.Set("email", email)
	}
	if next != "" && next != "/" {
		q.Set("next", next)
	}
	c.Redirect(http.StatusSeeOther, "/?"+q.Encode())
}

func registrationErrorMessage(err error) string {
	var short *PasswordTooShortError
	if errors.As(err, &short) {
		return fmt.Sprintf("Password must be at least %d characters.", short.Min)
	}

	switch {
	case errors.Is(err, ErrPasswordMismatch):
		return "Passwords do not match."
	case errors.Is(err, ErrPasswordTooLong):
		return "Password exceeds maximum length of 72 characters."
	case errors.Is(err, ErrPasswordRequired):
		return "Password is required."
	case errors.Is(err, ErrNameRequired):
		return "Name is required."
	case errors.Is(err, ErrNameTooLong):
		return "Name is too long."
	case errors.Is(err, ErrEmailRequired):
		return "Email is required."
	case errors.Is(err, ErrEmailInvalid):
		return "Invalid email format."
	case errors.Is(err, ErrUserExists):
		return "An account with this email already exists."
	}
	log.Printf("Auth: registration failed: %v", err)
	return registerFailedMessage
}
