// Package scheduler runs periodic maintenance on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// PruneEnqueuer starts a profile prune, usually by adding it to the task queue.
type PruneEnqueuer interface {
	EnqueuePruneProfiles(retention time.Duration) (string, error)
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// ProfilePruneScheduler enqueues the removal of idle device profiles.
type ProfilePruneScheduler struct {
	enqueuer  PruneEnqueuer
	schedule  string
	retention time.Duration

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

func NewProfilePruneScheduler(enqueuer PruneEnqueuer, schedule string, retention time.Duration) *ProfilePruneScheduler {
	return &ProfilePruneScheduler{
		enqueuer:  enqueuer,
		schedule:  schedule,
		retention: retention,
		cron:      cron.New(cron.WithParser(parser)),
	}
}

// Start schedules the prune job. It stops by itself when ctx is cancelled.
func (s *ProfilePruneScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if s.retention <= 0 {
		return fmt.Errorf("invalid profile retention %s", s.retention)
	}
	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		_ = s.RunNow()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule prune job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Profile prune scheduler: started with schedule '%s', retention %s. Next run: %v",
		s.schedule, s.retention, s.cron.Entry(entryID).Next)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running job and stops the schedule.
func (s *ProfilePruneScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}
	s.isRunning = false

	log.Printf("Profile prune scheduler: stopped")
}

// RunNow enqueues a prune immediately.
func (s *ProfilePruneScheduler) RunNow() error {
	id, err := s.enqueuer.EnqueuePruneProfiles(s.retention)
	if err != nil {
		log.Printf("Profile prune scheduler: %v", err)
		return err
	}
	log.Printf("Profile prune scheduler: enqueued task %s", id)
	return nil
}

func (s *ProfilePruneScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns nil when the scheduler is stopped.
func (s *ProfilePruneScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	next := s.cron.Entry(s.entryID).Next
	if next.IsZero() {
		return nil
	}
	return &next
}
