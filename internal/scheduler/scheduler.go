// Package scheduler runs the service's periodic jobs: the optional daily
// habit reset and the expired-session purge.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	// PurgeSchedule is when expired sessions are deleted.
	PurgeSchedule = "@hourly"

	jobTimeout = time.Minute
)

// Resetter marks every user's habits incomplete.
type Resetter interface {
	ResetAll(ctx context.Context) (int64, error)
}

// Purger deletes expired sessions.
type Purger interface {
	PurgeExpired(ctx context.Context) error
}

type Scheduler struct {
	cron     *cron.Cron
	habits   Resetter
	sessions Purger
}

// New registers the jobs. resetSpec is a standard five-field cron spec or a
// descriptor such as "@midnight"; empty disables the daily reset.
func New(habits Resetter, sessions Purger, resetSpec string) (*Scheduler, error) {
	s := &Scheduler{cron: cron.New(), habits: habits, sessions: sessions}

	if resetSpec != "" {
		if _, err := s.cron.AddFunc(resetSpec, s.resetAll); err != nil {
			return nil, fmt.Errorf("reset schedule %q: %w", resetSpec, err)
		}
	}
	if _, err := s.cron.AddFunc(PurgeSchedule, s.purgeSessions); err != nil {
		return nil, fmt.Errorf("purge schedule: %w", err)
	}
	return s, nil
}

// Start runs the jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs, or for ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) resetAll() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.habits.ResetAll(ctx)
	if err != nil {
		log.Printf("scheduler: reset habits: %v", err)
		return
	}
	log.Printf("scheduler: reset %d habits for the new day", n)
}

func (s *Scheduler) purgeSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.sessions.PurgeExpired(ctx); err != nil {
		log.Printf("scheduler: purge sessions: %v", err)
	}
}
