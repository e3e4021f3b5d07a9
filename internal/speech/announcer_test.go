package speech

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/accesslearn/internal/prefs"
)

// fakeBackend plays one utterance at a time until finish is called.
type fakeBackend struct {
	mu        sync.Mutex
	available bool
	calls     []string
	playing   string
	cancelled []string
	completed []string
}

func (f *fakeBackend) Available() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.available
}

func (f *fakeBackend) CancelCurrent() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "cancel")
	if f.playing != "" {
		f.cancelled = append(f.cancelled, f.playing)
		f.playing = ""
	}
}

func (f *fakeBackend) SpeakAsync(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "speak:"+text)
	f.playing = text
}

func (f *fakeBackend) finish() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.playing != "" {
		f.completed = append(f.completed, f.playing)
		f.playing = ""
	}
}

type staticPrefs struct {
	tts bool
}

func (s staticPrefs) Get() prefs.PreferenceSet {
	p := prefs.Defaults()
	p.TextToSpeechEnabled = s.tts
	return p
}

type outcomeCounter struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (o *outcomeCounter) Announced(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.outcomes == nil {
		o.outcomes = make(map[string]int)
	}
	o.outcomes[outcome]++
}

func TestAnnouncer_NewestPreemptsPrevious(t *testing.T) {
	backend := &fakeBackend{available: true}
	a := NewAnnouncer(staticPrefs{tts: true}, backend, nil)

	a.Speak("A")
	a.Speak("B")
	backend.finish()

	assert.Equal(t, []string{"cancel", "speak:A", "cancel", "speak:B"}, backend.calls)
	assert.Equal(t, []string{"A"}, backend.cancelled)
	assert.Equal(t, []string{"B"}, backend.completed)
}

func TestAnnouncer_DisabledIsNoop(t *testing.T) {
	backend := &fakeBackend{available: true}
	metrics := &outcomeCounter{}
	a := NewAnnouncer(staticPrefs{tts: false}, backend, metrics)

	a.Speak("Hello")

	assert.Empty(t, backend.calls)
	assert.Equal(t, 1, metrics.outcomes[OutcomeDisabled])
}

func TestAnnouncer_BlankTextIsNoop(t *testing.T) {
	backend := &fakeBackend{available: true}
	metrics := &outcomeCounter{}
	a := NewAnnouncer(staticPrefs{tts: true}, backend, metrics)

	a.Speak("")
	a.Speak("   \n\t")

	assert.Empty(t, backend.calls)
	assert.Equal(t, 2, metrics.outcomes[OutcomeEmpty])
}

func TestAnnouncer_UnavailableBackendIsNoop(t *testing.T) {
	backend := &fakeBackend{available: false}
	metrics := &outcomeCounter{}
	a := NewAnnouncer(staticPrefs{tts: true}, backend, metrics)

	a.Speak("Hello")
	a.Stop()

	assert.Empty(t, backend.calls)
	assert.Equal(t, 1, metrics.outcomes[OutcomeUnavailable])
}

func TestAnnouncer_NilBackendAndNilAnnouncer(t *testing.T) {
	assert.NotPanics(t, func() {
		NewAnnouncer(staticPrefs{tts: true}, nil, nil).Speak("Hello")
		NewAnnouncer(nil, nil, nil).Speak("Hello")

		var a *Announcer
		a.Speak("Hello")
		a.Stop()
	})
}

func TestAnnouncer_FollowsLivePreference(t *testing.T) {
	store := prefs.NewStore(prefs.NewMemoryStorage(), nil)
	backend := &fakeBackend{available: true}
	metrics := &outcomeCounter{}
	a := NewAnnouncer(store, backend, metrics)

	a.Speak("before")
	assert.NoError(t, store.SetTextToSpeechEnabled(true))
	a.Speak("after")

	assert.Equal(t, []string{"cancel", "speak:after"}, backend.calls)
	assert.Equal(t, 1, metrics.outcomes[OutcomeSpoken])
	assert.Equal(t, 1, metrics.outcomes[OutcomeDisabled])
}

func TestAnnouncer_Stop(t *testing.T) {
	backend := &fakeBackend{available: true}
	a := NewAnnouncer(staticPrefs{tts: true}, backend, nil)

	a.Speak("Long text")
	a.Stop()
	backend.finish()

	assert.Equal(t, []string{"Long text"}, backend.cancelled)
	assert.Empty(t, backend.completed)
}

func TestProviders(t *testing.T) {
	backend := &fakeBackend{available: true}
	assert.Same(t, backend, Shared{B: backend}.Backend("any"))

	none := None{}.Backend("any")
	assert.False(t, none.Available())
	assert.NotPanics(t, func() {
		none.CancelCurrent()
		none.SpeakAsync("x")
	})
}
