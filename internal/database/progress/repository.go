// Package progress persists learners' module progress per device profile.
package progress

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/accesslearn/internal/entities"
	"github.com/mrlokans/accesslearn/internal/learning"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the profile's progress in a module. A module never opened
// yields the zero Progress.
func (r *Repository) Get(profileID, moduleID string) (learning.Progress, error) {
	var row entities.ModuleProgress
	err := r.db.Where("profile_id = ? AND module_id = ?", profileID, moduleID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return learning.Progress{}, nil
	}
	if err != nil {
		return learning.Progress{}, err
	}
	return toProgress(row), nil
}

// Save creates or replaces the profile's progress in a module.
func (r *Repository) Save(profileID, moduleID string, p learning.Progress) error {
	var row entities.ModuleProgress
	result := r.db.Where("profile_id = ? AND module_id = ?", profileID, moduleID).First(&row)
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}

	row.ProfileID = profileID
	row.ModuleID = moduleID
	row.Progress = p.Value
	row.Section = p.Section
	row.Answers = p.Answers
	row.QuizSubmitted = p.Submitted
	row.Score = p.Result.Score
	row.Correct = p.Result.Correct
	row.Total = p.Result.Total

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return r.db.Create(&row).Error
	}
	return r.db.Save(&row).Error
}

// Values returns the progress percentage of every module the profile opened.
func (r *Repository) Values(profileID string) (map[string]int, error) {
	var rows []entities.ModuleProgress
	if err := r.db.Where("profile_id = ?", profileID).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.ModuleID] = row.Progress
	}
	return out, nil
}

// Reset forgets the profile's progress in a module.
func (r *Repository) Reset(profileID, moduleID string) error {
	return r.db.Where("profile_id = ? AND module_id = ?", profileID, moduleID).
		Delete(&entities.ModuleProgress{}).Error
}

func toProgress(row entities.ModuleProgress) learning.Progress {
	p := learning.Progress{
		Value:     row.Progress,
		Section:   row.Section,
		Answers:   row.Answers,
		Submitted: row.QuizSubmitted,
	}
	if row.QuizSubmitted {
		p.Result = learning.Result{Score: row.Score, Correct: row.Correct, Total: row.Total}
	}
	return p
}
