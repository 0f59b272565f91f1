package scrape

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs recurring scrape passes, one cron entry per source.
type Scheduler struct {
	cron *cron.Cron
	log  *slog.Logger
}

// NewScheduler creates a Scheduler over the given runners. Each runner
// gets its own interval, so sources can be paced independently.
func NewScheduler(runners map[*Runner]time.Duration, log *slog.Logger) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron: c,
		log:  log,
	}

	for runner, interval := range runners {
		r := runner
		if _, err := c.AddFunc("@every "+interval.String(), func() {
			s.runPass(r)
		}); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Start begins running scheduled passes.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started")
	s.cron.Start()
}

// Stop gracefully stops the scheduler, waiting for running passes to
// finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *Scheduler) runPass(r *Runner) {
	ctx := context.Background()
	s.log.Info("scheduled pass starting", "source", r.scraper.Source())
	if _, err := r.RunPass(ctx); err != nil {
		s.log.Error("scheduled pass failed",
			"source", r.scraper.Source(),
			"error", err,
		)
	}
}
