// Package worker runs periodic maintenance jobs.
package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"realestate/internal/repository"
)

// OrphanCleaner deletes child rows whose listing is gone.
type OrphanCleaner interface {
	DeleteOrphans(ctx context.Context) (repository.OrphanReport, error)
}

// OrphanSweeper removes images, features and favorites left behind by
// listings deleted outside the API, and detaches their messages.
type OrphanSweeper struct {
	cleaner OrphanCleaner
	cron    *cron.Cron
	timeout time.Duration
}

// NewOrphanSweeper runs the sweep on schedule, a standard cron expression
// or descriptor such as "@hourly".
func NewOrphanSweeper(cleaner OrphanCleaner, schedule string) (*OrphanSweeper, error) {
	s := &OrphanSweeper{
		cleaner: cleaner,
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		timeout: time.Minute,
	}
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("schedule orphan sweep %q: %w", schedule, err)
	}
	return s, nil
}

// Start runs the schedule in the background.
func (s *OrphanSweeper) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *OrphanSweeper) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce performs a single sweep.
func (s *OrphanSweeper) RunOnce(ctx context.Context) (repository.OrphanReport, error) {
	report, err := s.cleaner.DeleteOrphans(ctx)
	if err != nil {
		return report, fmt.Errorf("sweep orphans: %w", err)
	}
	if report.Total() > 0 {
		log.Printf("orphan sweep: images=%d features=%d favorites=%d messages=%d",
			report.Images, report.Features, report.Favorites, report.Messages)
	}
	return report, nil
}

func (s *OrphanSweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if _, err := s.RunOnce(ctx); err != nil {
		log.Printf("Warning: %v", err)
	}
}
