package prefs

type FontSize string

const (
	FontSizeNormal FontSize = "normal"
	FontSizeLarge  FontSize = "large"
	FontSizeXLarge FontSize = "x-large"
)

// FontSizes lists the allowed values in display order.
var FontSizes = []FontSize{FontSizeNormal, FontSizeLarge, FontSizeXLarge}

func (f FontSize) Valid() bool {
	switch f {
	case FontSizeNormal, FontSizeLarge, FontSizeXLarge:
		return true
	}
	return false
}

type ColorMode string

const (
	ColorModeDefault      ColorMode = "default"
	ColorModeDark         ColorMode = "dark"
	ColorModeHighContrast ColorMode = "high-contrast"
)

// ColorModes lists the allowed values in display order.
var ColorModes = []ColorMode{ColorModeDefault, ColorModeDark, ColorModeHighContrast}

func (m ColorMode) Valid() bool {
	switch m {
	case ColorModeDefault, ColorModeDark, ColorModeHighContrast:
		return true
	}
	return false
}

// Preference keys. Stored under the KeyNamespace prefix.
const (
	KeyNamespace          = "a11y-"
	KeyFontSize           = "font-size"
	KeyColorMode          = "color-mode"
	KeyMotionReduced      = "motion-reduced"
	KeyTextToSpeech       = "text-to-speech"
	KeyKeyboardNavigation = "keyboard-navigation"
)

// Keys lists every preference key in persistence order.
var Keys = []string{
	KeyFontSize,
	KeyColorMode,
	KeyMotionReduced,
	KeyTextToSpeech,
	KeyKeyboardNavigation,
}

// StorageKey returns the namespaced key a preference is persisted under.
func StorageKey(key string) string {
	return KeyNamespace + key
}

// PreferenceSet is a snapshot of one profile's accessibility preferences.
type PreferenceSet struct {
	FontSize                   FontSize  `json:"font_size"`
	ColorMode                  ColorMode `json:"color_mode"`
	MotionReduced              bool      `json:"motion_reduced"`
	TextToSpeechEnabled        bool      `json:"text_to_speech"`
	KeyboardNavigationEnhanced bool      `json:"keyboard_navigation"`
}

// Defaults returns the preferences of a profile that never saved anything.
func Defaults() PreferenceSet {
	return PreferenceSet{
		FontSize:  FontSizeNormal,
		ColorMode: ColorModeDefault,
	}
}

// Encode returns the persisted string form of every field, keyed by preference key.
func (p PreferenceSet) Encode() map[string]string {
	return map[string]string{
		KeyFontSize:           string(p.FontSize),
		KeyColorMode:          string(p.ColorMode),
		KeyMotionReduced:      formatBool(p.MotionReduced),
		KeyTextToSpeech:       formatBool(p.TextToSpeechEnabled),
		KeyKeyboardNavigation: formatBool(p.KeyboardNavigationEnhanced),
	}
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	FontSize                   *FontSize  `json:"font_size,omitempty"`
	ColorMode                  *ColorMode `json:"color_mode,omitempty"`
	MotionReduced              *bool      `json:"motion_reduced,omitempty"`
	TextToSpeechEnabled        *bool      `json:"text_to_speech,omitempty"`
	KeyboardNavigationEnhanced *bool      `json:"keyboard_navigation,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.FontSize == nil && p.ColorMode == nil && p.MotionReduced == nil &&
		p.TextToSpeechEnabled == nil && p.KeyboardNavigationEnhanced == nil
}

// fields lists the keys of the non-nil fields.
func (p Patch) fields() []string {
	var keys []string
	if p.FontSize != nil {
		keys = append(keys, KeyFontSize)
	}
	if p.ColorMode != nil {
		keys = append(keys, KeyColorMode)
	}
	if p.MotionReduced != nil {
		keys = append(keys, KeyMotionReduced)
	}
	if p.TextToSpeechEnabled != nil {
		keys = append(keys, KeyTextToSpeech)
	}
	if p.KeyboardNavigationEnhanced != nil {
		keys = append(keys, KeyKeyboardNavigation)
	}
	return keys
}

func (p Patch) applyTo(set *PreferenceSet) {
	if p.FontSize != nil {
		set.FontSize = *p.FontSize
	}
	if p.ColorMode != nil {
		set.ColorMode = *p.ColorMode
	}
	if p.MotionReduced != nil {
		set.MotionReduced = *p.MotionReduced
	}
	if p.TextToSpeechEnabled != nil {
		set.TextToSpeechEnabled = *p.TextToSpeechEnabled
	}
	if p.KeyboardNavigationEnhanced != nil {
		set.KeyboardNavigationEnhanced = *p.KeyboardNavigationEnhanced
	}
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// parseBool accepts only the two persisted spellings.
func parseBool(s string) (bool, bool) {
	switch s {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}
