// Package prefs owns the accessibility preferences of a device profile.
//
// A Store is the single source of truth for one profile's PreferenceSet. Every
// setter validates its input, re-persists all five values to Storage and
// re-applies the derived presentation (font tier, color mode classes, motion
// and keyboard-navigation flags) to the profile's Presenter before returning.
//
// Storage failures never reach the caller: they are logged, counted through
// Metrics and the in-memory value stays authoritative for as long as the
// Store lives.
//
// # Usage
//
//	registry, _ := prefs.NewRegistry(1024, func(id string) prefs.Storage {
//		return settingsRepo.ForProfile(id)
//	})
//	profile := registry.Open(deviceID)
//	_ = profile.Store.SetFontSize(prefs.FontSizeLarge)
//	profile.Document.StyleAttr() // "--font-size: 1.2rem; --line-height: 1.7"
package prefs
