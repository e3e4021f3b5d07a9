package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/accesslearn/internal/prefs"
)

// Settings page announcements
const (
	AnnounceSettingsOpened = "Accessibility settings opened"
	AnnounceSettingsReset  = "Accessibility settings reset to defaults"
	TestSpeechPhrase       = "This is a test of the text to speech functionality. If you can hear this, it's working correctly."
)

// SettingsSections are the tabs of the settings page.
var SettingsSections = []string{"display", "text", "audio", "navigation"}

// settingSection maps each preference to the settings tab that shows it.
var settingSection = map[string]string{
	prefs.KeyColorMode:          "display",
	prefs.KeyMotionReduced:      "display",
	prefs.KeyFontSize:           "text",
	prefs.KeyTextToSpeech:       "audio",
	prefs.KeyKeyboardNavigation: "navigation",
}

// SettingsController serves the accessibility settings page. Every device
// profile may change its settings, signed in or not.
type SettingsController struct{}

func NewSettingsController() *SettingsController {
	return &SettingsController{}
}

func (controller *SettingsController) RegisterRoutes(router gin.IRoutes) {
	router.GET("/settings", controller.SettingsPage)
	router.POST("/settings", controller.SaveSetting)
	router.POST("/settings/test-speech", controller.TestSpeech)
	router.POST("/settings/reset", controller.ResetSettings)
}

func (controller *SettingsController) SettingsPage(c *gin.Context) {
	section := c.DefaultQuery("section", SettingsSections[0])
	if !validSection(section) {
		section = SettingsSections[0]
	}

	if c.Query("nav") == "open" {
		Announce(c, AnnounceSettingsOpened)
	}

	data := gin.H{
		"Title":      "Accessibility Settings",
		"Section":    section,
		"Sections":   SettingsSections,
		"FontSizes":  prefs.FontSizes,
		"ColorModes": prefs.ColorModes,
		"Saved":      c.Query("saved") != "",
		"Error":      c.Query("error"),
	}
	if profile := CurrentProfile(c); profile != nil {
		if err := profile.Store.PersistenceErr(); err != nil {
			data["PersistenceWarning"] = "Settings could not be saved and will last until the server restarts."
		}
	}
	render(c, http.StatusOK, "settings", data)
}

// SaveSetting applies one preference from the key and value form fields.
func (controller *SettingsController) SaveSetting(c *gin.Context) {
	key := c.PostForm("key")
	value := c.PostForm("value")

	section, known := settingSection[key]
	if !known {
		section = SettingsSections[0]
	}

	profile := CurrentProfile(c)
	if profile == nil {
		c.String(http.StatusInternalServerError, "Device profile unavailable")
		return
	}

	if err := profile.Store.Set(key, value); err != nil {
		message := "Invalid setting."
		var ve *prefs.ValidationError
		if errors.As(err, &ve) {
			message = "Invalid value for " + ve.Field + "."
		} else if errors.Is(err, prefs.ErrUnknownPreference) {
			message = "Unknown setting."
		}
		redirectWith(c, "/settings", url.Values{"section": {section}, "error": {message}})
		return
	}

	redirectWith(c, "/settings", url.Values{"section": {section}, "saved": {key}})
}

// TestSpeech speaks a fixed phrase so the learner can check their audio.
func (controller *SettingsController) TestSpeech(c *gin.Context) {
	Announce(c, TestSpeechPhrase)
	redirectWith(c, "/settings", url.Values{"section": {"audio"}})
}

func (controller *SettingsController) ResetSettings(c *gin.Context) {
	profile := CurrentProfile(c)
	if profile == nil {
		c.String(http.StatusInternalServerError, "Device profile unavailable")
		return
	}
	profile.Store.Reset()
	Announce(c, AnnounceSettingsReset)
	redirectWith(c, "/settings", url.Values{"saved": {"all"}})
}

func validSection(s string) bool {
	for _, v := range SettingsSections {
		if v == s {
			return true
		}
	}
	return false
}
