package speech

import (
	"encoding/json"
	"log"
	"time"
)

// Publisher is the message bus connection used by NATSProvider.
type Publisher interface {
	Publish(subject string, data []byte) error
	Healthy() bool
}

type sayMessage struct {
	ProfileID string    `json:"profile_id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type cancelMessage struct {
	ProfileID string    `json:"profile_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NATSProvider hands announcements to an external audio agent by publishing
// them on "<prefix>.say" and "<prefix>.cancel".
type NATSProvider struct {
	pub    Publisher
	prefix string
	now    func() time.Time
}

func NewNATSProvider(pub Publisher, prefix string) *NATSProvider {
	return &NATSProvider{pub: pub, prefix: prefix, now: time.Now}
}

func (p *NATSProvider) Backend(profileID string) Backend {
	return &natsBackend{provider: p, profileID: profileID}
}

func (p *NATSProvider) publish(subject string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Speech: failed to encode %s message: %v", subject, err)
		return
	}
	if err := p.pub.Publish(subject, data); err != nil {
		log.Printf("Speech: failed to publish %s: %v", subject, err)
	}
}

type natsBackend struct {
	provider  *NATSProvider
	profileID string
}

func (b *natsBackend) Available() bool {
	return b.provider.pub != nil && b.provider.pub.Healthy()
}

func (b *natsBackend) CancelCurrent() {
	b.provider.publish(b.provider.prefix+".cancel", cancelMessage{
		ProfileID: b.profileID,
		Timestamp: b.provider.now().UTC(),
	})
}

func (b *natsBackend) SpeakAsync(text string) {
	b.provider.publish(b.provider.prefix+".say", sayMessage{
		ProfileID: b.profileID,
		Text:      text,
		Timestamp: b.provider.now().UTC(),
	})
}
