// Package settings provides database operations for profile-scoped settings.
//
// # Usage
//
//	repo := settings.NewRepository(db)
//	storage := repo.ForProfile(profileID)
//	value, ok, err := storage.ReadString("a11y-font-size")
package settings

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/accesslearn/internal/entities"
	"github.com/mrlokans/accesslearn/internal/prefs"
)

// Repository handles all settings database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new settings repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetSetting retrieves a setting of a profile by key.
func (r *Repository) GetSetting(profileID, key string) (*entities.Setting, error) {
	var setting entities.Setting
	err := r.db.Where("profile_id = ? AND key = ?", profileID, key).First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// GetSettings returns every setting of a profile.
func (r *Repository) GetSettings(profileID string) ([]entities.Setting, error) {
	var result []entities.Setting
	err := r.db.Where("profile_id = ?", profileID).Order("key").Find(&result).Error
	return result, err
}

// SetSetting creates or updates a setting.
func (r *Repository) SetSetting(profileID, key, value string) error {
	var setting entities.Setting
	result := r.db.Where("profile_id = ? AND key = ?", profileID, key).First(&setting)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		setting = entities.Setting{
			ProfileID: profileID,
			Key:       key,
			Value:     value,
		}
		return r.db.Create(&setting).Error
	} else if result.Error != nil {
		return result.Error
	}

	setting.Value = value
	return r.db.Save(&setting).Error
}

// DeleteSetting removes a setting by key.
func (r *Repository) DeleteSetting(profileID, key string) error {
	return r.db.Where("profile_id = ? AND key = ?", profileID, key).Delete(&entities.Setting{}).Error
}

// ForProfile returns the durable preference storage of one device profile.
func (r *Repository) ForProfile(profileID string) *ProfileStorage {
	return &ProfileStorage{repo: r, profileID: profileID}
}

// ProfileStorage adapts the settings table to prefs.Storage for a single profile.
type ProfileStorage struct {
	repo      *Repository
	profileID string
}

var _ prefs.Storage = (*ProfileStorage)(nil)

// ReadString returns the stored value, or ok=false when the key was never written.
func (s *ProfileStorage) ReadString(key string) (string, bool, error) {
	setting, err := s.repo.GetSetting(s.profileID, key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return setting.Value, true, nil
}

func (s *ProfileStorage) WriteString(key, value string) error {
	return s.repo.SetSetting(s.profileID, key, value)
}
