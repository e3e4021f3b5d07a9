package prefs

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mrlokans/accesslearn/internal/presentation"
)

// Profile is the live state of one device profile: its store and the
// document the store presents to.
type Profile struct {
	ID       string
	Store    *Store
	Document *presentation.Document
}

// Registry keeps recently used profiles in memory so that every request for
// a profile shares one Store. Evicted profiles are reloaded from storage.
type Registry struct {
	mu         sync.Mutex
	cache      *lru.Cache[string, *Profile]
	storageFor func(profileID string) Storage
	metrics    Metrics
	onLoad     func(profileID string)
}

func NewRegistry(size int, storageFor func(profileID string) Storage) (*Registry, error) {
	cache, err := lru.New[string, *Profile](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile cache: %w", err)
	}
	return &Registry{cache: cache, storageFor: storageFor}, nil
}

// SetMetrics sets the metrics sink given to stores loaded afterwards.
func (r *Registry) SetMetrics(m Metrics) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics = m
}

// OnLoad registers a hook called whenever a profile is loaded from storage.
func (r *Registry) OnLoad(fn func(profileID string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onLoad = fn
}

// Open returns the profile for id, loading it on first use.
func (r *Registry) Open(id string) *Profile {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.cache.Get(id); ok {
		return p
	}

	var storage Storage
	if r.storageFor != nil {
		storage = r.storageFor(id)
	}
	doc := presentation.NewDocument()
	store := NewStore(storage, doc)
	if r.metrics != nil {
		store.SetMetrics(r.metrics)
	}

	p := &Profile{ID: id, Store: store, Document: doc}
	r.cache.Add(id, p)

	if r.onLoad != nil {
		r.onLoad(id)
	}
	return p
}

// Forget drops the in-memory state of the given profiles.
func (r *Registry) Forget(ids ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		r.cache.Remove(id)
	}
}

func (r *Registry) Len() int {
	return r.cache.Len()
}
