package auth

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/accesslearn/internal/config"
	"github.com/mrlokans/accesslearn/internal/entities"
)

// Context keys for user data
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyUserName = "auth_user_name"
	ContextKeyAuthType = "auth_type"
)

// AuthType indicates how the request's learner was identified.
type AuthType string

const (
	AuthTypeGuest    AuthType = "guest"    // Not logged in
	AuthTypeSession  AuthType = "session"  // Logged in with a session cookie
	AuthTypeDisabled AuthType = "disabled" // AUTH_MODE=none, everyone is the anonymous learner
)

// DefaultUserID is used for guests and when authentication is disabled.
const DefaultUserID = uint(0)

// AnonymousLearnerName greets the learner when authentication is disabled.
const AnonymousLearnerName = "Learner"

// Middleware identifies the learner behind each request.
type Middleware struct {
	service        *Service
	sessionManager *SessionManager
	config         config.Auth
}

func NewMiddleware(service *Service, sessionManager *SessionManager, cfg config.Auth) *Middleware {
	return &Middleware{
		service:        service,
		sessionManager: sessionManager,
		config:         cfg,
	}
}

// Handler stores the learner in the gin context. It never rejects a request;
// RequireAuth guards the routes that need a learner.
func (m *Middleware) Handler() gin.HandlerFunc {
	if m.config.Mode == config.AuthModeNone {
		return DisabledAuthHandler()
	}

	return func(c *gin.Context) {
		if user := m.trySessionAuth(c); user != nil {
			c.Set(ContextKeyUserID, user.ID)
			c.Set(ContextKeyUserName, user.Name)
			c.Set(ContextKeyAuthType, AuthTypeSession)
		} else {
			c.Set(ContextKeyUserID, DefaultUserID)
			c.Set(ContextKeyAuthType, AuthTypeGuest)
		}
		c.Next()
	}
}

// DisabledAuthHandler treats every request as the anonymous learner.
func DisabledAuthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyUserID, DefaultUserID)
		c.Set(ContextKeyUserName, AnonymousLearnerName)
		c.Set(ContextKeyAuthType, AuthTypeDisabled)
		c.Next()
	}
}

func (m *Middleware) trySessionAuth(c *gin.Context) *entities.User {
	if m.sessionManager == nil {
		return nil
	}

	userID := m.sessionManager.GetUserID(c.Request)
	if userID == 0 {
		return nil
	}

	user, err := m.service.GetUserByID(userID)
	if err != nil {
		return nil
	}

	return user
}

// RequireAuth rejects guests: API requests get 401, pages redirect to the
// landing page's login form.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsAuthenticated(c) {
			c.Next()
			return
		}

		if isAPIRequest(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": ErrAuthRequired.Error(),
			})
			return
		}

		c.Redirect(http.StatusFound, "/?form=login&next="+url.QueryEscape(c.Request.URL.RequestURI()))
		c.Abort()
	}
}

func isAPIRequest(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

// GetUserID returns DefaultUserID for guests and when auth is disabled.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return DefaultUserID
}

func GetUserName(c *gin.Context) string {
	if name, exists := c.Get(ContextKeyUserName); exists {
		if userName, ok := name.(string); ok {
			return userName
		}
	}
	return ""
}

func GetAuthType(c *gin.Context) AuthType {
	if t, exists := c.Get(ContextKeyAuthType); exists {
		if authType, ok := t.(AuthType); ok {
			return authType
		}
	}
	return AuthTypeGuest
}

// IsAuthenticated reports whether the request may use learner-only pages.
func IsAuthenticated(c *gin.Context) bool {
	switch GetAuthType(c) {
	case AuthTypeSession, AuthTypeDisabled:
		return true
	}
	return false
}
