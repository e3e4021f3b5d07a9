package http

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mrlokans/accesslearn/internal/prefs"
	"github.com/mrlokans/accesslearn/internal/speech"
)

// Context keys for the device profile
const (
	ContextKeyProfile   = "device_profile"
	ContextKeyAnnouncer = "announcer"
)

// touchInterval limits last-seen updates to one per profile per interval.
const touchInterval = time.Hour

// DeviceProfiles identifies the browser behind each request by a long-lived
// cookie and attaches that profile's preferences and announcer.
type DeviceProfiles struct {
	registry   *prefs.Registry
	speech     speech.Provider
	metrics    speech.Metrics
	profiles   ProfileToucher
	cookieName string
	cookieTTL  time.Duration
	secure     bool

	touched *lru.Cache[string, time.Time]
	now     func() time.Time
}

func NewDeviceProfiles(cfg RouterConfig) (*DeviceProfiles, error) {
	touched, err := lru.New[string, time.Time](4096)
	if err != nil {
		return nil, err
	}

	provider := cfg.Speech
	if provider == nil {
		provider = speech.None{}
	}

	name := cfg.DeviceCookieName
	if name == "" {
		name = "accesslearn_device"
	}

	d := &DeviceProfiles{
		registry:   cfg.Registry,
		speech:     provider,
		profiles:   cfg.Profiles,
		cookieName: name,
		cookieTTL:  cfg.DeviceCookieTTL,
		secure:     cfg.SecureCookies,
		touched:    touched,
		now:        time.Now,
	}
	if cfg.Telemetry != nil {
		d.metrics = cfg.Telemetry
	}
	return d, nil
}

func (d *DeviceProfiles) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(d.cookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
		}
		// Refresh the cookie so active devices keep their profile
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(d.cookieName, id, int(d.cookieTTL.Seconds()), "/", "", d.secure, true)

		profile := d.registry.Open(id)
		d.touch(id)

		c.Set(ContextKeyProfile, profile)
		c.Set(ContextKeyAnnouncer, speech.NewAnnouncer(profile.Store, d.speech.Backend(id), d.metrics))
		c.Next()
	}
}

func (d *DeviceProfiles) touch(id string) {
	if d.profiles == nil {
		return
	}
	now := d.now()
	if last, ok := d.touched.Get(id); ok && now.Sub(last) < touchInterval {
		return
	}
	if err := d.profiles.Touch(id); err != nil {
		log.Printf("Profiles: failed to record visit of %s: %v", id, err)
		return
	}
	d.touched.Add(id, now)
}

// CurrentProfile returns the request's device profile. It is nil only when
// DeviceProfiles did not run.
func CurrentProfile(c *gin.Context) *prefs.Profile {
	if v, ok := c.Get(ContextKeyProfile); ok {
		if p, ok := v.(*prefs.Profile); ok {
			return p
		}
	}
	return nil
}

// CurrentAnnouncer returns the request's announcer. The result may be nil,
// which is still safe to Speak on.
func CurrentAnnouncer(c *gin.Context) *speech.Announcer {
	if v, ok := c.Get(ContextKeyAnnouncer); ok {
		if a, ok := v.(*speech.Announcer); ok {
			return a
		}
	}
	return nil
}

// Announce speaks text to the learner behind c.
func Announce(c *gin.Context, text string) {
	CurrentAnnouncer(c).Speak(text)
}
