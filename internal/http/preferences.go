package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/accesslearn/internal/prefs"
)

var errNoProfile = errors.New("no device profile")

// Presentation is the document root state derived from the preferences.
type Presentation struct {
	Class   string   `json:"class"`
	Style   string   `json:"style"`
	Classes []string `json:"classes"`
}

// PreferencesResponse is returned by the preferences API.
type PreferencesResponse struct {
	Preferences  prefs.PreferenceSet `json:"preferences"`
	Presentation Presentation        `json:"presentation"`
	// Persisted is false when the last write could not reach storage.
	Persisted bool `json:"persisted"`
}

// PreferencesController exposes the device profile's preferences as JSON
// for scripts that restyle the page without a reload.
type PreferencesController struct{}

func NewPreferencesController() *PreferencesController {
	return &PreferencesController{}
}

func (controller *PreferencesController) RegisterRoutes(router gin.IRoutes) {
	router.GET("/api/preferences", controller.GetPreferences)
	router.PUT("/api/preferences", controller.UpdatePreferences)
	router.DELETE("/api/preferences", controller.ResetPreferences)
}

// GetPreferences handles GET /api/preferences
func (controller *PreferencesController) GetPreferences(c *gin.Context) {
	profile := CurrentProfile(c)
	if profile == nil {
		respondInternalError(c, errNoProfile, "get preferences")
		return
	}
	c.JSON(http.StatusOK, preferencesResponse(profile))
}

// UpdatePreferences handles PUT /api/preferences
// Fields left out of the body keep their value. Nothing changes when any
// field is invalid.
func (controller *PreferencesController) UpdatePreferences(c *gin.Context) {
	profile := CurrentProfile(c)
	if profile == nil {
		respondInternalError(c, errNoProfile, "update preferences")
		return
	}

	var patch prefs.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if err := profile.Store.Update(patch); err != nil {
		var ve *prefs.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   ve.Error(),
				Code:    "invalid_preference",
				Details: gin.H{"field": ve.Field, "value": ve.Value},
			})
			return
		}
		respondInternalError(c, err, "update preferences")
		return
	}

	c.JSON(http.StatusOK, preferencesResponse(profile))
}

// ResetPreferences handles DELETE /api/preferences
func (controller *PreferencesController) ResetPreferences(c *gin.Context) {
	profile := CurrentProfile(c)
	if profile == nil {
		respondInternalError(c, errNoProfile, "reset preferences")
		return
	}
	profile.Store.Reset()
	c.JSON(http.StatusOK, preferencesResponse(profile))
}

func preferencesResponse(profile *prefs.Profile) PreferencesResponse {
	return PreferencesResponse{
		Preferences: profile.Store.Get(),
		Presentation: Presentation{
			Class:   profile.Document.ClassAttr(),
			Style:   profile.Document.StyleAttr(),
			Classes: profile.Document.Classes(),
		},
		Persisted: profile.Store.PersistenceErr() == nil,
	}
}
