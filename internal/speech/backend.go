package speech

import "errors"

// ErrSpeechUnavailable is reported by backends that cannot speak right now.
// The Announcer never surfaces it.
var ErrSpeechUnavailable = errors.New("speech unavailable")

// Backend is a speech synthesis facility. SpeakAsync and CancelCurrent must
// return without waiting for playback.
type Backend interface {
	Available() bool
	CancelCurrent()
	SpeakAsync(text string)
}

// Provider resolves the backend that speaks to a device profile.
type Provider interface {
	Backend(profileID string) Backend
}

// Shared serves one backend to every profile, e.g. a kiosk's local synthesizer.
type Shared struct {
	B Backend
}

func (s Shared) Backend(string) Backend {
	return s.B
}

// None is a provider whose backend is never available.
type None struct{}

func (None) Backend(string) Backend {
	return noneBackend{}
}

type noneBackend struct{}

func (noneBackend) Available() bool   { return false }
func (noneBackend) CancelCurrent()    {}
func (noneBackend) SpeakAsync(string) {}
