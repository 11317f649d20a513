// Package scheduler triggers a job once a day at a fixed wall-clock time.
package scheduler

import (
	"context"
	"time"

	"github.com/ksyq12/certbot-runner/internal/logger"
)

// Job is the work run at each occurrence
type Job func(ctx context.Context)

// Scheduler runs Job daily at Hour:Minute local time
type Scheduler struct {
	Hour   int
	Minute int
	Job    Job

	now   func() time.Time
	after func(d time.Duration) <-chan time.Time
	log   *logger.Logger
}

// New creates a Scheduler for hour:minute
func New(hour, minute int, job Job) *Scheduler {
	return &Scheduler{
		Hour:   hour,
		Minute: minute,
		Job:    job,
		now:    time.Now,
		after:  time.After,
		log:    logger.Named("scheduler"),
	}
}

// NextRun returns the first hour:minute in now's location strictly after now
func NextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	for !next.After(now) {
		next = time.Date(next.Year(), next.Month(), next.Day()+1, hour, minute, 0, 0, now.Location())
	}
	return next
}

// Run waits for each occurrence and runs the job, until ctx is cancelled.
// The wait is recomputed from the current time before every cycle.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			s.log.Info("Stopped")
			return err
		}

		now := s.now()
		next := NextRun(now, s.Hour, s.Minute)
		wait := next.Sub(now)
		s.log.InfoFields("Waiting for next renewal", logger.Fields{
			"at":   next.Format(time.RFC3339),
			"wait": wait.Round(time.Second),
		})

		select {
		case <-ctx.Done():
			s.log.Info("Stopped")
			return ctx.Err()
		case <-s.after(wait):
		}

		s.Job(ctx)
	}
}
