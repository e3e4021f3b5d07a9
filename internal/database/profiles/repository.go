// Package profiles tracks device profiles and removes the ones that went quiet.
package profiles

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/accesslearn/internal/entities"
)

type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Touch records that the profile was used now, creating it when needed.
func (r *Repository) Touch(profileID string) error {
	now := r.now().UTC()
	profile := entities.DeviceProfile{ID: profileID, CreatedAt: now, LastSeenAt: now}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_seen_at"}),
	}).Create(&profile).Error
}

func (r *Repository) Get(profileID string) (*entities.DeviceProfile, error) {
	var profile entities.DeviceProfile
	if err := r.db.First(&profile, "id = ?", profileID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.DeviceProfile{}).Count(&count).Error
	return count, err
}

// ListStale returns the ids of profiles not seen since before.
func (r *Repository) ListStale(before time.Time) ([]string, error) {
	var ids []string
	err := r.db.Model(&entities.DeviceProfile{}).
		Where("last_seen_at < ?", before.UTC()).
		Order("last_seen_at").
		Pluck("id", &ids).Error
	return ids, err
}

// PruneResult counts the rows removed by Prune.
type PruneResult struct {
	Profiles int64
	Settings int64
	Progress int64
	IDs      []string
}

// Prune deletes profiles not seen for longer than retention, together with
// their settings and module progress.
func (r *Repository) Prune(retention time.Duration) (PruneResult, error) {
	var result PruneResult
	cutoff := r.now().Add(-retention)

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Model(&entities.DeviceProfile{}).
			Where("last_seen_at < ?", cutoff.UTC()).
			Pluck("id", &ids).Error; err != nil {
			return fmt.Errorf("failed to list stale profiles: %w", err)
		}
		if len(ids) == 0 {
			return nil
		}
		result.IDs = ids

		res := tx.Where("profile_id IN ?", ids).Delete(&entities.Setting{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete settings: %w", res.Error)
		}
		result.Settings = res.RowsAffected

		res = tx.Where("profile_id IN ?", ids).Delete(&entities.ModuleProgress{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete progress: %w", res.Error)
		}
		result.Progress = res.RowsAffected

		res = tx.Where("id IN ?", ids).Delete(&entities.DeviceProfile{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete profiles: %w", res.Error)
		}
		result.Profiles = res.RowsAffected
		return nil
	})
	if err != nil {
		return PruneResult{}, err
	}
	return result, nil
}
