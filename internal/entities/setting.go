package entities

import (
	"time"
)

// Setting is a single key/value pair owned by a device profile.
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProfileID string    `gorm:"uniqueIndex:idx_settings_profile_key;size:64" json:"profile_id"`
	Key       string    `gorm:"uniqueIndex:idx_settings_profile_key;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}
