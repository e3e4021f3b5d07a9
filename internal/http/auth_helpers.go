package http

import (
	"unicode"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/accesslearn/internal/auth"
	"github.com/mrlokans/accesslearn/internal/config"
)

// AuthTemplateData holds authentication info for templates.
type AuthTemplateData struct {
	Enabled   bool   // Whether learners have accounts (AuthModeLocal)
	LoggedIn  bool   // Whether the learner may open modules
	Name      string // Learner's display name
	CSRFToken string // CSRF token for forms (empty when CSRF is off)
}

// Initial returns the upper-cased first letter of the learner's name for
// the header avatar.
func (a AuthTemplateData) Initial() string {
	for _, r := range a.Name {
		return string(unicode.ToUpper(r))
	}
	return ""
}

// AuthContextMiddleware injects authentication data into the Gin context for
// templates.
func AuthContextMiddleware(authMode config.AuthMode) gin.HandlerFunc {
	authEnabled := authMode == config.AuthModeLocal

	return func(c *gin.Context) {
		c.Set("auth_template_data", AuthTemplateData{
			Enabled:   authEnabled,
			LoggedIn:  auth.IsAuthenticated(c),
			Name:      auth.GetUserName(c),
			CSRFToken: auth.GetCSRFToken(c),
		})
		c.Next()
	}
}

// GetAuthTemplateData retrieves auth data from context for use in templates.
func GetAuthTemplateData(c *gin.Context) AuthTemplateData {
	if data, exists := c.Get("auth_template_data"); exists {
		if authData, ok := data.(AuthTemplateData); ok {
			return authData
		}
	}
	return AuthTemplateData{}
}
