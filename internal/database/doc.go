// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── settings/        # Profile-scoped key/value settings (preference storage)
//	├── profiles/        # Device profile bookkeeping and pruning
//	└── progress/        # Learning module progress per profile
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	// Initialize database connection
//	db, err := database.NewDatabase("./accesslearn.db")
//
//	// Create domain-specific repositories
//	settingsRepo := settings.NewRepository(db.DB)
//	progressRepo := progress.NewRepository(db.DB)
//
//	// Preference storage for one device profile
//	storage := settingsRepo.ForProfile(profileID)
//
// # Interface Implementations
//
//   - settings.ProfileStorage: implements prefs.Storage
//   - progress.Repository: implements http.ProgressStore
//   - profiles.Repository: implements tasks.ProfilePruner
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Implement the required interface
//  5. Add compile-time interface check: var _ SomeInterface = (*Repository)(nil)
package database
