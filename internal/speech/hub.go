package speech

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event kinds delivered to stream listeners.
const (
	EventAnnounce = "announce"
	EventCancel   = "cancel"
)

// Event is one instruction for a listening page.
type Event struct {
	Kind string `json:"-"`
	ID   string `json:"id,omitempty"`
	Text string `json:"text,omitempty"`
}

// Hub delivers announcements to pages listening on a stream. Each profile has
// a mailbox holding at most one undelivered event; a newer event replaces it,
// so a page that falls behind only ever hears the latest announcement. Pages
// of the same profile share the mailbox and each event reaches one of them.
//
// A mailbox outlives its last listener by the grace period, so an
// announcement made just before a navigation is picked up by the next page.
type Hub struct {
	mu    sync.Mutex
	boxes map[string]*mailbox
	grace time.Duration
	now   func() time.Time
}

type mailbox struct {
	ch        chan Event
	listeners int
	idleSince time.Time
}

func NewHub(grace time.Duration) *Hub {
	return &Hub{boxes: make(map[string]*mailbox), grace: grace, now: time.Now}
}

// Backend returns the backend that speaks to profileID's pages.
func (h *Hub) Backend(profileID string) Backend {
	return &hubBackend{hub: h, profileID: profileID}
}

// Subscribe registers a listener for profileID. The returned function must be
// called when the listener goes away.
func (h *Hub) Subscribe(profileID string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sweepLocked()

	box, ok := h.boxes[profileID]
	if !ok {
		box = &mailbox{ch: make(chan Event, 1)}
		h.boxes[profileID] = box
	}
	box.listeners++

	var once sync.Once
	return box.ch, func() {
		once.Do(func() { h.unsubscribe(profileID, box) })
	}
}

func (h *Hub) unsubscribe(profileID string, box *mailbox) {
	h.mu.Lock()
	defer h.mu.Unlock()

	box.listeners--
	if box.listeners > 0 || h.boxes[profileID] != box {
		return
	}
	if h.grace <= 0 {
		delete(h.boxes, profileID)
		return
	}
	box.idleSince = h.now()
}

// Listening reports whether a page of profileID is subscribed or the last one
// left within the grace period.
func (h *Hub) Listening(profileID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	box, ok := h.boxes[profileID]
	return ok && h.liveLocked(box)
}

func (h *Hub) liveLocked(box *mailbox) bool {
	return box.listeners > 0 || h.now().Sub(box.idleSince) < h.grace
}

// sweepLocked drops mailboxes whose grace period ran out.
func (h *Hub) sweepLocked() {
	for id, box := range h.boxes {
		if !h.liveLocked(box) {
			delete(h.boxes, id)
		}
	}
}

// Listeners returns the number of subscribed pages across all profiles.
func (h *Hub) Listeners() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, box := range h.boxes {
		n += box.listeners
	}
	return n
}

// post replaces the pending event of profileID's mailbox with ev.
func (h *Hub) post(profileID string, ev Event) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	box, ok := h.boxes[profileID]
	if !ok || !h.liveLocked(box) {
		return false
	}
	select {
	case <-box.ch:
	default:
	}
	select {
	case box.ch <- ev:
	default:
	}
	return true
}

type hubBackend struct {
	hub       *Hub
	profileID string
}

func (b *hubBackend) Available() bool {
	return b.hub.Listening(b.profileID)
}

func (b *hubBackend) CancelCurrent() {
	b.hub.post(b.profileID, Event{Kind: EventCancel})
}

func (b *hubBackend) SpeakAsync(text string) {
	b.hub.post(b.profileID, Event{Kind: EventAnnounce, ID: uuid.NewString(), Text: text})
}
