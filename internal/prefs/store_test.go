package prefs

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/accesslearn/internal/presentation"
)

type failingStorage struct {
	readErr  error
	writeErr error
	writes   int
}

func (f *failingStorage) ReadString(string) (string, bool, error) {
	return "", false, f.readErr
}

func (f *failingStorage) WriteString(string, string) error {
	f.writes++
	return f.writeErr
}

type countingMetrics struct {
	mu       sync.Mutex
	changed  map[string]int
	failures int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{changed: make(map[string]int)}
}

func (m *countingMetrics) PreferenceChanged(field string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changed[field]++
}

func (m *countingMetrics) PersistenceFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures++
}

func TestNewStore_EmptyStorageUsesDefaults(t *testing.T) {
	doc := presentation.NewDocument()
	store := NewStore(NewMemoryStorage(), doc)

	assert.Equal(t, Defaults(), store.Get())
	assert.Equal(t, "--font-size: 1rem; --line-height: 1.5", doc.StyleAttr())
	assert.Empty(t, doc.Classes())
}

func TestNewStore_NilStorage(t *testing.T) {
	store := NewStore(nil, nil)

	require.NoError(t, store.SetFontSize(FontSizeLarge))
	assert.Equal(t, FontSizeLarge, store.Get().FontSize)
	assert.ErrorIs(t, store.PersistenceErr(), ErrPersistenceUnavailable)
}

func TestStore_FontSizeTiers(t *testing.T) {
	tests := []struct {
		size       FontSize
		fontSize   string
		lineHeight string
	}{
		{FontSizeNormal, "1rem", "1.5"},
		{FontSizeLarge, "1.2rem", "1.7"},
		{FontSizeXLarge, "1.4rem", "1.8"},
	}

	for _, tt := range tests {
		t.Run(string(tt.size), func(t *testing.T) {
			doc := presentation.NewDocument()
			store := NewStore(NewMemoryStorage(), doc)

			require.NoError(t, store.SetFontSize(tt.size))

			fs, _ := doc.Property(PropertyFontSize)
			lh, _ := doc.Property(PropertyLineHeight)
			assert.Equal(t, tt.fontSize, fs)
			assert.Equal(t, tt.lineHeight, lh)
		})
	}
}

func TestStore_ColorModesAreMutuallyExclusive(t *testing.T) {
	doc := presentation.NewDocument()
	store := NewStore(NewMemoryStorage(), doc)

	sequence := []ColorMode{
		ColorModeDark, ColorModeHighContrast, ColorModeDark,
		ColorModeDefault, ColorModeHighContrast, ColorModeDefault,
	}
	for _, mode := range sequence {
		require.NoError(t, store.SetColorMode(mode))

		dark := doc.HasClass(ClassDark)
		hc := doc.HasClass(ClassHighContrast)
		assert.False(t, dark && hc, "both color classes present after %s", mode)
		assert.Equal(t, mode == ColorModeDark, dark)
		assert.Equal(t, mode == ColorModeHighContrast, hc)
	}
}

func TestStore_ToggleClasses(t *testing.T) {
	doc := presentation.NewDocument()
	store := NewStore(NewMemoryStorage(), doc)

	require.NoError(t, store.SetMotionReduced(true))
	require.NoError(t, store.SetKeyboardNavigationEnhanced(true))
	assert.True(t, doc.HasClass(ClassMotionReduce))
	assert.True(t, doc.HasClass(ClassKeyboardNav))

	require.NoError(t, store.SetMotionReduced(false))
	require.NoError(t, store.SetKeyboardNavigationEnhanced(false))
	assert.False(t, doc.HasClass(ClassMotionReduce))
	assert.False(t, doc.HasClass(ClassKeyboardNav))
}

func TestStore_TextToSpeechHasNoVisualEffect(t *testing.T) {
	doc := presentation.NewDocument()
	store := NewStore(NewMemoryStorage(), doc)
	before := doc.ClassAttr() + "|" + doc.StyleAttr()

	require.NoError(t, store.SetTextToSpeechEnabled(true))

	assert.True(t, store.Get().TextToSpeechEnabled)
	assert.Equal(t, before, doc.ClassAttr()+"|"+doc.StyleAttr())
}

func TestStore_SetterIsIdempotent(t *testing.T) {
	storage := NewMemoryStorage()
	doc := presentation.NewDocument()
	store := NewStore(storage, doc)

	require.NoError(t, store.SetColorMode(ColorModeDark))
	first := doc.ClassAttr()
	v1, _, _ := storage.ReadString("a11y-color-mode")

	require.NoError(t, store.SetColorMode(ColorModeDark))
	v2, _, _ := storage.ReadString("a11y-color-mode")

	assert.Equal(t, first, doc.ClassAttr())
	assert.Equal(t, v1, v2)
	assert.Equal(t, "dark", v2)
}

func TestStore_RoundTrip(t *testing.T) {
	storage := NewMemoryStorage()
	store := NewStore(storage, nil)

	want := PreferenceSet{
		FontSize:                   FontSizeXLarge,
		ColorMode:                  ColorModeHighContrast,
		MotionReduced:              true,
		TextToSpeechEnabled:        true,
		KeyboardNavigationEnhanced: true,
	}
	require.NoError(t, store.SetFontSize(want.FontSize))
	require.NoError(t, store.SetColorMode(want.ColorMode))
	require.NoError(t, store.SetMotionReduced(true))
	require.NoError(t, store.SetTextToSpeechEnabled(true))
	require.NoError(t, store.SetKeyboardNavigationEnhanced(true))
	assert.NoError(t, store.PersistenceErr())

	reloaded := NewStore(storage, presentation.NewDocument())
	assert.Equal(t, want, reloaded.Get())
}

func TestStore_PersistsUnderNamespacedKeys(t *testing.T) {
	storage := NewMemoryStorage()
	store := NewStore(storage, nil)

	require.NoError(t, store.SetMotionReduced(true))

	got, ok, err := storage.ReadString("a11y-motion-reduced")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", got)

	for _, key := range []string{"a11y-font-size", "a11y-color-mode", "a11y-text-to-speech", "a11y-keyboard-navigation"} {
		_, ok, err := storage.ReadString(key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}

	store.Reset()
	for _, key := range Keys {
		_, ok, _ := storage.ReadString(StorageKey(key))
		assert.True(t, ok, key)
	}
}

func TestStore_SharedStorageKeepsOtherWriters(t *testing.T) {
	storage := NewMemoryStorage()
	stale := NewStore(storage, nil)
	fresh := NewStore(storage, nil)

	require.NoError(t, stale.SetFontSize(FontSizeXLarge))
	require.NoError(t, fresh.SetColorMode(ColorModeDark))

	size, _, _ := storage.ReadString("a11y-font-size")
	mode, _, _ := storage.ReadString("a11y-color-mode")
	assert.Equal(t, "x-large", size)
	assert.Equal(t, "dark", mode)

	require.NoError(t, fresh.Update(Patch{MotionReduced: boolPtr(true)}))
	size, _, _ = storage.ReadString("a11y-font-size")
	assert.Equal(t, "x-large", size)

	reloaded := NewStore(storage, nil).Get()
	assert.Equal(t, FontSizeXLarge, reloaded.FontSize)
	assert.Equal(t, ColorModeDark, reloaded.ColorMode)
	assert.True(t, reloaded.MotionReduced)
}

func TestStore_ValidationRetainsPreviousValue(t *testing.T) {
	storage := NewMemoryStorage()
	store := NewStore(storage, nil)
	require.NoError(t, store.SetFontSize(FontSizeLarge))

	err := store.SetFontSize("huge")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "huge")
	assert.Equal(t, FontSizeLarge, store.Get().FontSize)

	err = store.SetColorMode("sepia")
	assert.True(t, IsValidationError(err))
	assert.Equal(t, ColorModeDefault, store.Get().ColorMode)

	v, _, _ := storage.ReadString("a11y-font-size")
	assert.Equal(t, "large", v)
}

func TestStore_CorruptStoredValuesFallBack(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.WriteString("a11y-font-size", "gigantic"))
	require.NoError(t, storage.WriteString("a11y-color-mode", "dark"))
	require.NoError(t, storage.WriteString("a11y-motion-reduced", "yes"))
	require.NoError(t, storage.WriteString("a11y-text-to-speech", "true"))

	store := NewStore(storage, nil)

	got := store.Get()
	assert.Equal(t, FontSizeNormal, got.FontSize)
	assert.Equal(t, ColorModeDark, got.ColorMode)
	assert.False(t, got.MotionReduced)
	assert.True(t, got.TextToSpeechEnabled)
	assert.False(t, got.KeyboardNavigationEnhanced)
}

func TestStore_ReadFailureUsesDefaults(t *testing.T) {
	store := NewStore(&failingStorage{readErr: errors.New("disk gone")}, nil)
	assert.Equal(t, Defaults(), store.Get())
}

func TestStore_WriteFailureKeepsSessionValue(t *testing.T) {
	storage := &failingStorage{writeErr: errors.New("quota exceeded")}
	metrics := newCountingMetrics()
	doc := presentation.NewDocument()
	store := NewStore(storage, doc)
	store.SetMetrics(metrics)

	err := store.SetColorMode(ColorModeDark)

	require.NoError(t, err)
	assert.Equal(t, ColorModeDark, store.Get().ColorMode)
	assert.True(t, doc.HasClass(ClassDark))
	assert.ErrorIs(t, store.PersistenceErr(), ErrPersistenceUnavailable)
	assert.Equal(t, 1, metrics.failures)
	assert.Equal(t, 1, storage.writes)

	storage.writeErr = nil
	require.NoError(t, store.SetFontSize(FontSizeLarge))
	assert.NoError(t, store.PersistenceErr())
}

func TestStore_SetByKey(t *testing.T) {
	store := NewStore(NewMemoryStorage(), nil)

	require.NoError(t, store.Set(KeyFontSize, "x-large"))
	require.NoError(t, store.Set(KeyColorMode, "high-contrast"))
	require.NoError(t, store.Set(KeyMotionReduced, "true"))
	require.NoError(t, store.Set(KeyTextToSpeech, "true"))
	require.NoError(t, store.Set(KeyKeyboardNavigation, "true"))

	assert.Equal(t, PreferenceSet{
		FontSize:                   FontSizeXLarge,
		ColorMode:                  ColorModeHighContrast,
		MotionReduced:              true,
		TextToSpeechEnabled:        true,
		KeyboardNavigationEnhanced: true,
	}, store.Get())

	assert.True(t, IsValidationError(store.Set(KeyMotionReduced, "on")))
	assert.ErrorIs(t, store.Set("volume", "11"), ErrUnknownPreference)
}

func TestStore_UpdateIsAllOrNothing(t *testing.T) {
	store := NewStore(NewMemoryStorage(), nil)
	size := FontSizeLarge
	bad := ColorMode("neon")
	on := true

	err := store.Update(Patch{FontSize: &size, ColorMode: &bad, MotionReduced: &on})
	assert.True(t, IsValidationError(err))
	assert.Equal(t, Defaults(), store.Get())

	mode := ColorModeDark
	metrics := newCountingMetrics()
	store.SetMetrics(metrics)
	require.NoError(t, store.Update(Patch{FontSize: &size, ColorMode: &mode}))

	got := store.Get()
	assert.Equal(t, FontSizeLarge, got.FontSize)
	assert.Equal(t, ColorModeDark, got.ColorMode)
	assert.False(t, got.MotionReduced)
	assert.Equal(t, 1, metrics.changed[KeyFontSize])
	assert.Equal(t, 1, metrics.changed[KeyColorMode])
	assert.Zero(t, metrics.changed[KeyMotionReduced])

	require.NoError(t, store.Update(Patch{}))
}

func TestStore_Reset(t *testing.T) {
	storage := NewMemoryStorage()
	doc := presentation.NewDocument()
	store := NewStore(storage, doc)
	require.NoError(t, store.SetColorMode(ColorModeHighContrast))
	require.NoError(t, store.SetMotionReduced(true))

	store.Reset()

	assert.Equal(t, Defaults(), store.Get())
	assert.Empty(t, doc.Classes())
	assert.Equal(t, Defaults(), NewStore(storage, nil).Get())
}

func TestStore_LargeFontScenario(t *testing.T) {
	storage := NewMemoryStorage()
	doc := presentation.NewDocument()
	store := NewStore(storage, doc)
	require.Equal(t, PreferenceSet{FontSize: FontSizeNormal, ColorMode: ColorModeDefault}, store.Get())

	require.NoError(t, store.SetFontSize(FontSizeXLarge))

	fs, _ := doc.Property(PropertyFontSize)
	lh, _ := doc.Property(PropertyLineHeight)
	assert.Equal(t, "1.4rem", fs)
	assert.Equal(t, "1.8", lh)

	v, ok, err := storage.ReadString("a11y-font-size")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "x-large", v)
}

func TestStore_ConcurrentSetters(t *testing.T) {
	doc := presentation.NewDocument()
	store := NewStore(NewMemoryStorage(), doc)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.SetColorMode(ColorModes[i%len(ColorModes)])
			_ = store.SetFontSize(FontSizes[i%len(FontSizes)])
			_ = store.Get()
		}(i)
	}
	wg.Wait()

	assert.False(t, doc.HasClass(ClassDark) && doc.HasClass(ClassHighContrast))
	fs, _ := doc.Property(PropertyFontSize)
	assert.Equal(t, store.Get().FontSize.Tier().FontSize, fs)
}

func boolPtr(b bool) *bool { return &b }
