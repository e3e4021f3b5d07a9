package http

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/accesslearn/internal/auth"
	"github.com/mrlokans/accesslearn/internal/speech"
)

// Footer link announcements
const (
	AnnouncePrivacy = "Privacy Policy page would open here"
	AnnounceTerms   = "Terms of Service page would open here"
)

// streamHeartbeat keeps idle streams open through proxies.
const streamHeartbeat = 25 * time.Second

// AnnounceRequest is the body of POST /api/announcements.
type AnnounceRequest struct {
	Text string `json:"text" form:"text"`
	// Return is where form posts are sent back to. Must be a local path.
	Return string `json:"-" form:"return"`
}

// AnnouncementsController lets pages speak UI text and, when speech runs in
// the browser, streams announcements to them.
type AnnouncementsController struct {
	hub *speech.Hub
}

func NewAnnouncementsController(hub *speech.Hub) *AnnouncementsController {
	return &AnnouncementsController{hub: hub}
}

func (controller *AnnouncementsController) RegisterRoutes(router gin.IRoutes) {
	router.POST("/api/announcements", controller.Announce)
	router.DELETE("/api/announcements", controller.Stop)
	if controller.hub != nil {
		router.GET("/api/announcements/stream", controller.Stream)
	}
}

// Announce handles POST /api/announcements
// JSON callers get 202. Form posts are redirected to their return path.
func (controller *AnnouncementsController) Announce(c *gin.Context) {
	var req AnnounceRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondBadRequest(c, "text is required")
		return
	}

	Announce(c, req.Text)

	if c.ContentType() == gin.MIMEJSON {
		respondAccepted(c, "announcement queued", nil)
		return
	}
	c.Redirect(http.StatusSeeOther, auth.SanitizeRedirectPath(req.Return))
}

// Stop handles DELETE /api/announcements
// It silences the current announcement.
func (controller *AnnouncementsController) Stop(c *gin.Context) {
	CurrentAnnouncer(c).Stop()
	c.Status(http.StatusNoContent)
}

// Stream handles GET /api/announcements/stream
// Server-sent events named "announce" and "cancel" are delivered to the page
// until it goes away.
func (controller *AnnouncementsController) Stream(c *gin.Context) {
	profile := CurrentProfile(c)
	if profile == nil {
		respondInternalError(c, errNoProfile, "announcement stream")
		return
	}

	events, unsubscribe := controller.hub.Subscribe(profile.ID)
	defer unsubscribe()

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case ev := <-events:
			c.SSEvent(ev.Kind, ev)
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", "")
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
