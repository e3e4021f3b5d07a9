package speech

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/accesslearn/internal/bus"
)

type published struct {
	subject string
	data    []byte
}

type fakePublisher struct {
	mu      sync.Mutex
	healthy bool
	err     error
	msgs    []published
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, published{subject, data})
	return f.err
}

func (f *fakePublisher) Healthy() bool { return f.healthy }

func TestNATSProvider_Payloads(t *testing.T) {
	pub := &fakePublisher{healthy: true}
	provider := NewNATSProvider(pub, "accesslearn.speech")
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	provider.now = func() time.Time { return fixed }

	a := NewAnnouncer(staticPrefs{tts: true}, provider.Backend("device-1"), nil)
	a.Speak("Quiz tab selected")

	require.Len(t, pub.msgs, 2)
	assert.Equal(t, "accesslearn.speech.cancel", pub.msgs[0].subject)
	assert.JSONEq(t, `{"profile_id":"device-1","timestamp":"2026-01-02T03:04:05Z"}`, string(pub.msgs[0].data))
	assert.Equal(t, "accesslearn.speech.say", pub.msgs[1].subject)
	assert.JSONEq(t, `{"profile_id":"device-1","text":"Quiz tab selected","timestamp":"2026-01-02T03:04:05Z"}`, string(pub.msgs[1].data))
}

func TestNATSProvider_UnhealthyIsUnavailable(t *testing.T) {
	pub := &fakePublisher{healthy: false}
	a := NewAnnouncer(staticPrefs{tts: true}, NewNATSProvider(pub, "x").Backend("device-1"), nil)

	a.Speak("Hello")
	assert.Empty(t, pub.msgs)

	assert.False(t, NewNATSProvider(nil, "x").Backend("d").Available())
}

func TestNATSProvider_PublishErrorIsSwallowed(t *testing.T) {
	pub := &fakePublisher{healthy: true, err: errors.New("boom")}
	a := NewAnnouncer(staticPrefs{tts: true}, NewNATSProvider(pub, "x").Backend("device-1"), nil)

	assert.NotPanics(t, func() { a.Speak("Hello") })
	assert.Len(t, pub.msgs, 2)
}

func TestNATSProvider_OverEmbeddedServer(t *testing.T) {
	srv, err := bus.StartEmbedded("127.0.0.1", -1)
	require.NoError(t, err)
	defer srv.Shutdown()

	client, err := bus.Connect(srv.ClientURL(), "speech-test", time.Second)
	require.NoError(t, err)
	defer client.Close()

	says := make(chan *nats.Msg, 1)
	sub, err := client.Conn().ChanSubscribe("accesslearn.speech.say", says)
	require.NoError(t, err)
	defer sub.Unsubscribe()
	require.NoError(t, client.Conn().Flush())

	a := NewAnnouncer(staticPrefs{tts: true}, NewNATSProvider(client, "accesslearn.speech").Backend("device-9"), nil)
	a.Speak("Section: Introduction")

	select {
	case msg := <-says:
		var got sayMessage
		require.NoError(t, json.Unmarshal(msg.Data, &got))
		assert.Equal(t, "device-9", got.ProfileID)
		assert.Equal(t, "Section: Introduction", got.Text)
	case <-time.After(2 * time.Second):
		t.Fatal("say message not received")
	}
}
