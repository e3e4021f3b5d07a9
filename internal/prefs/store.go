package prefs

import (
	"fmt"
	"log"
	"sync"
)

// Metrics receives store events. Implementations must be safe for concurrent use.
type Metrics interface {
	PreferenceChanged(field string)
	PersistenceFailed()
}

// Store owns one profile's PreferenceSet.
type Store struct {
	mu         sync.RWMutex
	storage    Storage
	presenter  Presenter
	metrics    Metrics
	current    PreferenceSet
	persistErr error
}

// NewStore loads the preferences from storage, falling back to the default of
// each field that is missing or unreadable, and applies them to presenter once.
// A nil storage gives a session-only store; a nil presenter skips presentation.
func NewStore(storage Storage, presenter Presenter) *Store {
	s := &Store{
		storage:   storage,
		presenter: presenter,
	}
	s.current = s.load()
	Apply(s.current, s.presenter)
	return s
}

// SetMetrics attaches a metrics sink. Call before the store is shared.
func (s *Store) SetMetrics(m Metrics) {
	s.metrics = m
}

// Get returns the current preferences.
func (s *Store) Get() PreferenceSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// PersistenceErr returns the last storage failure, or nil when the most
// recent write succeeded. A non-nil value means changes are session-only.
func (s *Store) PersistenceErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persistErr
}

func (s *Store) SetFontSize(size FontSize) error {
	if !size.Valid() {
		return &ValidationError{Field: KeyFontSize, Value: string(size)}
	}
	s.update(func(p *PreferenceSet) { p.FontSize = size }, KeyFontSize)
	return nil
}

func (s *Store) SetColorMode(mode ColorMode) error {
	if !mode.Valid() {
		return &ValidationError{Field: KeyColorMode, Value: string(mode)}
	}
	s.update(func(p *PreferenceSet) { p.ColorMode = mode }, KeyColorMode)
	return nil
}

func (s *Store) SetMotionReduced(reduced bool) error {
	s.update(func(p *PreferenceSet) { p.MotionReduced = reduced }, KeyMotionReduced)
	return nil
}

func (s *Store) SetTextToSpeechEnabled(enabled bool) error {
	s.update(func(p *PreferenceSet) { p.TextToSpeechEnabled = enabled }, KeyTextToSpeech)
	return nil
}

func (s *Store) SetKeyboardNavigationEnhanced(enabled bool) error {
	s.update(func(p *PreferenceSet) { p.KeyboardNavigationEnhanced = enabled }, KeyKeyboardNavigation)
	return nil
}

// Set parses value in its persisted form and applies it to the preference
// named by key, e.g. Set("font-size", "large").
func (s *Store) Set(key, value string) error {
	switch key {
	case KeyFontSize:
		return s.SetFontSize(FontSize(value))
	case KeyColorMode:
		return s.SetColorMode(ColorMode(value))
	case KeyMotionReduced, KeyTextToSpeech, KeyKeyboardNavigation:
		b, ok := parseBool(value)
		if !ok {
			return &ValidationError{Field: key, Value: value}
		}
		switch key {
		case KeyMotionReduced:
			return s.SetMotionReduced(b)
		case KeyTextToSpeech:
			return s.SetTextToSpeechEnabled(b)
		default:
			return s.SetKeyboardNavigationEnhanced(b)
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownPreference, key)
}

// Update applies every non-nil field of patch as one change. Nothing is
// applied when any field is invalid.
func (s *Store) Update(patch Patch) error {
	if patch.FontSize != nil && !patch.FontSize.Valid() {
		return &ValidationError{Field: KeyFontSize, Value: string(*patch.FontSize)}
	}
	if patch.ColorMode != nil && !patch.ColorMode.Valid() {
		return &ValidationError{Field: KeyColorMode, Value: string(*patch.ColorMode)}
	}
	if patch.Empty() {
		return nil
	}

	s.update(patch.applyTo, patch.fields()...)
	return nil
}

// Reset restores every preference to its default.
func (s *Store) Reset() {
	s.update(func(p *PreferenceSet) { *p = Defaults() }, Keys...)
}

// update mutates, persists and re-applies under the write lock so a Get that
// follows a setter observes the new value with its presentation applied.
// Only the named fields are written; another Store sharing the storage keeps
// its own writes to the rest.
func (s *Store) update(mutate func(*PreferenceSet), fields ...string) {
	s.mu.Lock()
	mutate(&s.current)
	s.persistErr = s.persist(s.current, fields)
	Apply(s.current, s.presenter)
	s.mu.Unlock()

	if s.metrics != nil {
		for _, f := range fields {
			s.metrics.PreferenceChanged(f)
		}
	}
}

func (s *Store) persist(p PreferenceSet, fields []string) error {
	if s.storage == nil {
		return ErrPersistenceUnavailable
	}
	encoded := p.Encode()
	for _, key := range fields {
		if err := s.storage.WriteString(StorageKey(key), encoded[key]); err != nil {
			err = fmt.Errorf("%w: write %s: %v", ErrPersistenceUnavailable, key, err)
			log.Printf("Preferences: %v (keeping session value)", err)
			if s.metrics != nil {
				s.metrics.PersistenceFailed()
			}
			return err
		}
	}
	return nil
}

func (s *Store) load() PreferenceSet {
	p := Defaults()
	if s.storage == nil {
		return p
	}

	read := func(key string) (string, bool) {
		value, ok, err := s.storage.ReadString(StorageKey(key))
		if err != nil {
			log.Printf("Preferences: %v: read %s: %v (using default)", ErrPersistenceUnavailable, key, err)
			return "", false
		}
		return value, ok
	}

	if v, ok := read(KeyFontSize); ok {
		if size := FontSize(v); size.Valid() {
			p.FontSize = size
		} else {
			log.Printf("Preferences: ignoring invalid %s value %q", KeyFontSize, v)
		}
	}
	if v, ok := read(KeyColorMode); ok {
		if mode := ColorMode(v); mode.Valid() {
			p.ColorMode = mode
		} else {
			log.Printf("Preferences: ignoring invalid %s value %q", KeyColorMode, v)
		}
	}
	p.MotionReduced = s.loadBool(read, KeyMotionReduced)
	p.TextToSpeechEnabled = s.loadBool(read, KeyTextToSpeech)
	p.KeyboardNavigationEnhanced = s.loadBool(read, KeyKeyboardNavigation)

	return p
}

func (s *Store) loadBool(read func(string) (string, bool), key string) bool {
	v, ok := read(key)
	if !ok {
		return false
	}
	b, valid := parseBool(v)
	if !valid {
		log.Printf("Preferences: ignoring invalid %s value %q", key, v)
	}
	return b
}
