// Package scheduler provides automated preparation scheduling and staleness
// monitoring for the prepd daemon. It runs the fetch+compact pipeline at the
// configured daily times using dependency injection.
package scheduler

import (
	"fmt"
	"time"

	"github.com/giygas/drugdb-prep/interfaces"
	"github.com/giygas/drugdb-prep/logging"
	"github.com/go-co-op/gocron"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler runs preparation cycles on a daily schedule.
type Scheduler struct {
	preparer     interfaces.Preparer
	refreshTimes string
	scheduler    *gocron.Scheduler
	monitorStop  chan struct{}
}

// NewScheduler creates a new scheduler instance with injected dependencies.
// refreshTimes is a ";"-separated list of HH:MM times.
func NewScheduler(preparer interfaces.Preparer, refreshTimes string) *Scheduler {
	return &Scheduler{
		preparer:     preparer,
		refreshTimes: refreshTimes,
		scheduler:    gocron.NewScheduler(time.Local),
		monitorStop:  make(chan struct{}),
	}
}

// Start runs an initial preparation, schedules the daily refreshes and
// starts staleness monitoring.
func (s *Scheduler) Start() error {
	// Initial run
	if err := s.preparer.Run(); err != nil {
		logging.Error("Failed to perform initial preparation", "error", err)
		return fmt.Errorf("initial preparation failed: %w", err)
	}

	_, err := s.scheduler.Every(1).Days().At(s.refreshTimes).Do(func() {
		if err := s.preparer.Run(); err != nil {
			logging.Error("Failed to refresh databases", "error", err)
		}
	})

	if err != nil {
		logging.Error("Failed to schedule refreshes", "error", err)
		return fmt.Errorf("failed to schedule refreshes: %w", err)
	}

	s.scheduler.StartAsync()
	s.startStalenessMonitoring()

	return nil
}

// Stop stops the scheduler and the staleness monitor
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	close(s.monitorStop)
}

// startStalenessMonitoring warns when no preparation has completed recently
func (s *Scheduler) startStalenessMonitoring() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-s.monitorStop:
				return
			case <-ticker.C:
				lastRun := s.preparer.LastRun()
				if time.Since(lastRun) > 25*time.Hour {
					logging.Warn("Databases haven't been refreshed in over 25 hours")
				}
			}
		}
	}()
}
