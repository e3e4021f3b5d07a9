package http

import (
	"context"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/accesslearn/internal/learning"
)

// Each controller depends on the narrowest interface it needs.

// ProgressStore persists module progress per device profile.
type ProgressStore interface {
	Get(profileID, moduleID string) (learning.Progress, error)
	Save(profileID, moduleID string, p learning.Progress) error
	Values(profileID string) (map[string]int, error)
	Reset(profileID, moduleID string) error
}

// ProfileToucher records that a device profile was seen.
type ProfileToucher interface {
	Touch(profileID string) error
}

// QuizMetrics counts graded quizzes.
type QuizMetrics interface {
	QuizSubmitted(moduleID string)
}

// TaskQueue enqueues maintenance tasks and reports their status.
type TaskQueue interface {
	EnqueuePruneProfiles(retention time.Duration) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}
