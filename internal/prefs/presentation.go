package prefs

// Presentation tokens written to the document root.
const (
	PropertyFontSize   = "--font-size"
	PropertyLineHeight = "--line-height"

	ClassDark         = "dark"
	ClassHighContrast = "high-contrast"
	ClassMotionReduce = "motion-reduce"
	ClassKeyboardNav  = "keyboard-nav"
)

// Presenter is the document-level surface that accepts presentation tokens.
type Presenter interface {
	SetProperty(name, value string)
	AddClass(names ...string)
	RemoveClass(names ...string)
}

// FontTier is the base font size and line height for a FontSize.
type FontTier struct {
	FontSize   string
	LineHeight string
}

var fontTiers = map[FontSize]FontTier{
	FontSizeNormal: {FontSize: "1rem", LineHeight: "1.5"},
	FontSizeLarge:  {FontSize: "1.2rem", LineHeight: "1.7"},
	FontSizeXLarge: {FontSize: "1.4rem", LineHeight: "1.8"},
}

// Tier returns the presentation tier of f. Unknown sizes get the normal tier.
func (f FontSize) Tier() FontTier {
	if tier, ok := fontTiers[f]; ok {
		return tier
	}
	return fontTiers[FontSizeNormal]
}

// Apply writes the presentation derived from p to presenter.
// TextToSpeechEnabled has no visual effect.
func Apply(p PreferenceSet, presenter Presenter) {
	if presenter == nil {
		return
	}

	tier := p.FontSize.Tier()
	presenter.SetProperty(PropertyFontSize, tier.FontSize)
	presenter.SetProperty(PropertyLineHeight, tier.LineHeight)

	presenter.RemoveClass(ClassDark, ClassHighContrast)
	switch p.ColorMode {
	case ColorModeDark:
		presenter.AddClass(ClassDark)
	case ColorModeHighContrast:
		presenter.AddClass(ClassHighContrast)
	}

	if p.MotionReduced {
		presenter.AddClass(ClassMotionReduce)
	} else {
		presenter.RemoveClass(ClassMotionReduce)
	}

	if p.KeyboardNavigationEnhanced {
		presenter.AddClass(ClassKeyboardNav)
	} else {
		presenter.RemoveClass(ClassKeyboardNav)
	}
}
