package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/accesslearn/internal/database/profiles"
)

// PruneProfilesQueue is the queue name of PruneProfilesTask.
const PruneProfilesQueue = "prune_profiles"

// ProfilePruner deletes device profiles that have not been seen recently.
type ProfilePruner interface {
	Prune(retention time.Duration) (profiles.PruneResult, error)
}

// PruneProfilesTask removes device profiles idle for longer than Retention,
// along with their preferences and module progress.
type PruneProfilesTask struct {
	Retention time.Duration `json:"retention"`
}

func (t PruneProfilesTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        PruneProfilesQueue,
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// PruneProfilesProcessor runs PruneProfilesTask. onPruned, if set, sees
// every non-empty result so cached profiles can be dropped.
func PruneProfilesProcessor(pruner ProfilePruner, onPruned func(profiles.PruneResult)) backlite.QueueProcessor[PruneProfilesTask] {
	return func(ctx context.Context, task PruneProfilesTask) error {
		if pruner == nil {
			return fmt.Errorf("profile pruner not configured")
		}
		if task.Retention <= 0 {
			return fmt.Errorf("invalid retention %s", task.Retention)
		}

		result, err := pruner.Prune(task.Retention)
		if err != nil {
			return fmt.Errorf("prune profiles: %w", err)
		}

		log.Printf("Tasks: pruned %d profiles (%d settings, %d progress rows) idle for more than %s",
			result.Profiles, result.Settings, result.Progress, task.Retention)

		if onPruned != nil && result.Profiles > 0 {
			onPruned(result)
		}
		return nil
	}
}

func NewPruneProfilesQueue(pruner ProfilePruner, onPruned func(profiles.PruneResult)) backlite.Queue {
	return backlite.NewQueue(PruneProfilesProcessor(pruner, onPruned))
}
