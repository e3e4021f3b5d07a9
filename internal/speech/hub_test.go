package speech

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_UnavailableWithoutListener(t *testing.T) {
	hub := NewHub(0)
	b := hub.Backend("device-1")

	assert.False(t, b.Available())
	b.SpeakAsync("nobody hears this")

	events, unsubscribe := hub.Subscribe("device-1")
	defer unsubscribe()
	assert.Empty(t, events)
}

func TestHub_LatestAnnouncementWins(t *testing.T) {
	hub := NewHub(0)
	events, unsubscribe := hub.Subscribe("device-1")
	defer unsubscribe()

	a := NewAnnouncer(staticPrefs{tts: true}, hub.Backend("device-1"), nil)
	a.Speak("A")
	a.Speak("B")

	require.Len(t, events, 1)
	ev := <-events
	assert.Equal(t, EventAnnounce, ev.Kind)
	assert.Equal(t, "B", ev.Text)
	assert.NotEmpty(t, ev.ID)
}

func TestHub_StopDeliversCancel(t *testing.T) {
	hub := NewHub(0)
	events, unsubscribe := hub.Subscribe("device-1")
	defer unsubscribe()

	a := NewAnnouncer(staticPrefs{tts: true}, hub.Backend("device-1"), nil)
	a.Speak("A")
	a.Stop()

	ev := <-events
	assert.Equal(t, EventCancel, ev.Kind)
	assert.Empty(t, events)
}

func TestHub_ProfilesAreIsolated(t *testing.T) {
	hub := NewHub(0)
	one, unsub1 := hub.Subscribe("device-1")
	defer unsub1()
	two, unsub2 := hub.Subscribe("device-2")
	defer unsub2()

	hub.Backend("device-1").SpeakAsync("for one")

	assert.Len(t, one, 1)
	assert.Empty(t, two)
}

func TestHub_ListenersShareMailbox(t *testing.T) {
	hub := NewHub(0)
	first, unsub1 := hub.Subscribe("device-1")
	second, unsub2 := hub.Subscribe("device-1")
	assert.Equal(t, 2, hub.Listeners())

	hub.Backend("device-1").SpeakAsync("once")
	assert.Equal(t, 1, len(first)+len(second))

	unsub1()
	unsub1()
	assert.True(t, hub.Listening("device-1"))

	unsub2()
	assert.False(t, hub.Listening("device-1"))
	assert.Equal(t, 0, hub.Listeners())
}

func TestHub_MailboxSurvivesNavigation(t *testing.T) {
	hub := NewHub(10 * time.Second)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	hub.now = func() time.Time { return now }

	_, leave := hub.Subscribe("device-1")
	leave()
	assert.True(t, hub.Listening("device-1"))

	a := NewAnnouncer(staticPrefs{tts: true}, hub.Backend("device-1"), nil)
	a.Speak("Login Successful. You have been logged in.")

	events, unsubscribe := hub.Subscribe("device-1")
	defer unsubscribe()
	ev := <-events
	assert.Equal(t, "Login Successful. You have been logged in.", ev.Text)

	unsubscribe()
	now = now.Add(11 * time.Second)
	assert.False(t, hub.Listening("device-1"))
	hub.Backend("device-1").SpeakAsync("too late")

	_, again := hub.Subscribe("device-1")
	defer again()
	assert.Equal(t, 1, hub.Listeners())
}
