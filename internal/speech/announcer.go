// Package speech announces UI text to the user when text-to-speech is
// enabled. Announcements are fire-and-forget and the newest one pre-empts any
// utterance still playing.
package speech

import (
	"strings"

	"github.com/mrlokans/accesslearn/internal/prefs"
)

// Outcomes reported to Metrics.Announced.
const (
	OutcomeSpoken      = "spoken"
	OutcomeDisabled    = "disabled"
	OutcomeUnavailable = "unavailable"
	OutcomeEmpty       = "empty"
)

type Metrics interface {
	Announced(outcome string)
}

// Preferences is the part of the preference store the Announcer reads.
type Preferences interface {
	Get() prefs.PreferenceSet
}

type Announcer struct {
	prefs   Preferences
	backend Backend
	metrics Metrics
}

// NewAnnouncer returns an Announcer gated by p. A nil backend makes every
// Speak a no-op.
func NewAnnouncer(p Preferences, backend Backend, metrics Metrics) *Announcer {
	return &Announcer{prefs: p, backend: backend, metrics: metrics}
}

// Speak cancels whatever is playing and starts speaking text. It does
// nothing when text-to-speech is off, text is blank or no backend is
// available.
func (a *Announcer) Speak(text string) {
	if a == nil {
		return
	}
	if a.prefs == nil || !a.prefs.Get().TextToSpeechEnabled {
		a.record(OutcomeDisabled)
		return
	}
	if strings.TrimSpace(text) == "" {
		a.record(OutcomeEmpty)
		return
	}
	if a.backend == nil || !a.backend.Available() {
		a.record(OutcomeUnavailable)
		return
	}

	a.backend.CancelCurrent()
	a.backend.SpeakAsync(text)
	a.record(OutcomeSpoken)
}

// Stop cancels the current utterance without starting another.
func (a *Announcer) Stop() {
	if a == nil || a.backend == nil || !a.backend.Available() {
		return
	}
	a.backend.CancelCurrent()
}

func (a *Announcer) record(outcome string) {
	if a.metrics != nil {
		a.metrics.Announced(outcome)
	}
}
