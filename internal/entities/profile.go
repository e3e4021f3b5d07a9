package entities

import "time"

// DeviceProfile is a browser profile identified by the device cookie.
// Preferences and module progress hang off its ID.
type DeviceProfile struct {
	ID         string    `gorm:"primaryKey;size:64" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `gorm:"index" json:"last_seen_at"`
}

// ModuleProgress tracks a profile's position and quiz state in one learning module.
type ModuleProgress struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	ProfileID     string      `gorm:"uniqueIndex:idx_progress_profile_module;size:64" json:"profile_id"`
	ModuleID      string      `gorm:"uniqueIndex:idx_progress_profile_module;size:64" json:"module_id"`
	Progress      int         `json:"progress"`
	Section       int         `json:"section"`
	Answers       map[int]int `gorm:"serializer:json" json:"answers"`
	QuizSubmitted bool        `json:"quiz_submitted"`
	Score         int         `json:"score"`
	Correct       int         `json:"correct"`
	Total         int         `json:"total"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func (ModuleProgress) TableName() string {
	return "module_progress"
}
