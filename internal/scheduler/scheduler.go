// Package scheduler wires up the cron job that periodically sweeps every
// enabled search filter on its configured interval.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/agore-ui/hh-parser-service/internal/logger"
	"github.com/agore-ui/hh-parser-service/internal/repository"
	"github.com/agore-ui/hh-parser-service/internal/service"
)

// Scheduler wraps robfig/cron and triggers due filter sweeps. Sweeps run
// strictly one after another within a tick; there is never more than one
// sweep hitting the upstream API at a time.
type Scheduler struct {
	cron    *cron.Cron
	filters *repository.FilterRepository
	sweeps  *service.SweepService
	logger  *logger.Logger
	spec    string
}

// New creates a Scheduler that checks for due filters every checkInterval.
func New(
	filters *repository.FilterRepository,
	sweeps *service.SweepService,
	log *logger.Logger,
	checkInterval time.Duration,
) *Scheduler {
	if checkInterval <= 0 {
		checkInterval = time.Minute
	}
	return &Scheduler{
		cron:    cron.New(),
		filters: filters,
		sweeps:  sweeps,
		logger:  log.WithField(logger.FieldComponent, "scheduler"),
		spec:    fmt.Sprintf("@every %s", checkInterval),
	}
}

// Start registers the tick job and starts the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.tick(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.WithField("spec", s.spec).Info("Scheduler started")
	return nil
}

// Stop gracefully shuts down the scheduler, waiting for a running tick.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// tick loads enabled filters and sweeps every one that is due.
func (s *Scheduler) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	filters, err := s.filters.List(ctx, true)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load enabled filters")
		return
	}

	now := time.Now()
	for _, filter := range filters {
		if ctx.Err() != nil {
			return
		}
		if !due(filter.LastRunAt, filter.IntervalSeconds, now) {
			continue
		}

		log := s.logger.WithFields(logger.Fields{
			"filter_id":   filter.ID,
			"filter_name": filter.Name,
		})
		log.Info("Running scheduled sweep")

		stats, err := s.sweeps.RunSweepForFilter(ctx, &filter)
		if err != nil {
			log.WithError(err).Error("Scheduled sweep failed to start")
			continue
		}
		log.WithFields(logger.Fields{
			"found":   stats.Found,
			"new":     stats.New,
			"updated": stats.Updated,
			"errors":  stats.Errors,
		}).Info("Scheduled sweep finished")
	}
}

// due reports whether a filter should run now given its last run time.
func due(lastRunAt *time.Time, intervalSeconds int, now time.Time) bool {
	if lastRunAt == nil {
		return true
	}
	return now.Sub(*lastRunAt) >= time.Duration(intervalSeconds)*time.Second
}
