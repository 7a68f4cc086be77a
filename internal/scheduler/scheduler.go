// Package scheduler runs fundwatch's background jobs on cron schedules.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a schedulable unit of background work. Run receives a context so
// an immediate invocation can carry the caller's deadline; scheduled
// invocations run against the background context.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler wraps a cron runner with per-job logging.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// New creates a scheduler. Schedules use the standard five-field cron
// format plus descriptors like "@daily" and "@every 12h".
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		log:  log.With().Str("component", "scheduler").Logger(),
	}
}

// Start begins running registered jobs on their schedules.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
}

// Stop stops the scheduler and waits for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a job on a cron schedule and returns its entry ID so a
// caller can later remove it.
func (s *Scheduler) AddJob(schedule string, job Job) (cron.EntryID, error) {
	id, err := s.cron.AddFunc(schedule, func() {
		s.run(context.Background(), job)
	})
	if err != nil {
		return 0, err
	}

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Int("entry_id", int(id)).
		Msg("Job registered")

	return id, nil
}

// Remove unregisters a scheduled job.
func (s *Scheduler) Remove(id cron.EntryID) {
	s.cron.Remove(id)
}

// RunNow executes a job immediately, outside its schedule, under the
// caller's context.
func (s *Scheduler) RunNow(ctx context.Context, job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("Running job immediately")
	return s.run(ctx, job)
}

func (s *Scheduler) run(ctx context.Context, job Job) error {
	start := time.Now()
	err := job.Run(ctx)
	elapsed := time.Since(start)

	if err != nil {
		s.log.Error().
			Err(err).
			Str("job", job.Name()).
			Dur("elapsed", elapsed).
			Msg("Job failed")
		return err
	}

	s.log.Debug().
		Str("job", job.Name()).
		Dur("elapsed", elapsed).
		Msg("Job completed")
	return nil
}
