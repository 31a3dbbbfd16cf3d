package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/agore-ui/hh-parser-service/internal/domain"
	"github.com/agore-ui/hh-parser-service/internal/hh"
	"github.com/agore-ui/hh-parser-service/internal/logger"
	"github.com/agore-ui/hh-parser-service/internal/repository"
)

// VacancyAPI is the slice of the hh client the sweep needs. Satisfied by
// *hh.Client; stubbed in tests.
type VacancyAPI interface {
	SearchVacancies(ctx context.Context, keywords []string, regions []int) ([]hh.VacancySummary, error)
	GetVacancyDetail(ctx context.Context, id string) (*hh.VacancyDetail, error)
}

// SweepStats summarizes one ingestion sweep for the caller.
type SweepStats struct {
	Found   int `json:"found"`
	New     int `json:"new"`
	Updated int `json:"updated"`
	Errors  int `json:"errors"`
}

// SweepService drives keyword/region sweeps: discovery, dedup, per-item
// detail fetch and reconciliation, and run bookkeeping.
//
// Processing is deliberately sequential — one candidate at a time, one
// in-flight upstream request — so the client's pacing actually holds.
type SweepService struct {
	client     VacancyAPI
	db         *gorm.DB
	reconciler *Reconciler
	runs       *repository.RunRepository
	filters    *repository.FilterRepository
	logger     *logger.Logger
}

// NewSweepService creates a SweepService.
func NewSweepService(
	client VacancyAPI,
	db *gorm.DB,
	reconciler *Reconciler,
	runs *repository.RunRepository,
	filters *repository.FilterRepository,
	log *logger.Logger,
) *SweepService {
	return &SweepService{
		client:     client,
		db:         db,
		reconciler: reconciler,
		runs:       runs,
		filters:    filters,
		logger:     log,
	}
}

// log returns a logger from context if available, otherwise the service one.
func (s *SweepService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// RunSweep executes one ingestion sweep over the given keywords and regions.
//
// The sweep always produces a stats object: item-level and discovery-level
// failures are counted and logged, never propagated. The only error returned
// is a store failure while creating the run record itself, before the sweep
// starts.
// Parameters:
//   - ctx: context; cancellation is honored at every network call boundary.
//   - keywords: search keywords.
//   - regions: optional hh.ru area IDs.
// Returns:
//   - *SweepStats: aggregate counters {found, new, updated, errors}.
//   - error: non-nil only when the run record cannot be created.
func (s *SweepService) RunSweep(ctx context.Context, keywords []string, regions []int) (*SweepStats, error) {
	return s.runSweep(ctx, keywords, regions, nil)
}

// RunSweepForFilter executes a sweep for a persisted search filter and stamps
// its last run time.
func (s *SweepService) RunSweepForFilter(ctx context.Context, filter *domain.SearchFilter) (*SweepStats, error) {
	stats, err := s.runSweep(ctx, filter.Keywords, filter.Regions, &filter.ID)
	if err != nil {
		return nil, err
	}
	if terr := s.filters.TouchLastRun(ctx, filter.ID); terr != nil {
		s.log(ctx).WithError(terr).Warn("Failed to stamp filter last run time")
	}
	return stats, nil
}

func (s *SweepService) runSweep(ctx context.Context, keywords []string, regions []int, filterID *string) (*SweepStats, error) {
	run, err := s.runs.Create(ctx, filterID)
	if err != nil {
		return nil, fmt.Errorf("failed to create run record: %w", err)
	}

	ctx = logger.WithFields(ctx, logger.Fields{logger.FieldRunID: run.ID})
	log := s.log(ctx).WithField(logger.FieldComponent, "sweep")

	if err := s.runs.SetStatus(ctx, run, domain.RunStatusRunning); err != nil {
		log.WithError(err).Warn("Failed to mark run as running")
	}

	started := time.Now()
	log.WithFields(logger.Fields{
		"keywords": keywords,
		"regions":  regions,
	}).Info("Sweep started")

	stats := &SweepStats{}
	failed := s.sweep(ctx, run, keywords, regions, stats)

	run.VacanciesFound = stats.Found
	run.VacanciesNew = stats.New
	run.VacanciesUpdated = stats.Updated
	run.Errors = stats.Errors

	final := domain.RunStatusCompleted
	if failed {
		final = domain.RunStatusFailed
	}
	if err := s.runs.SetStatus(ctx, run, final); err != nil {
		log.WithError(err).Error("Failed to finalize run record")
	}

	log.WithFields(logger.Fields{
		"found":                stats.Found,
		"new":                  stats.New,
		"updated":              stats.Updated,
		"errors":               stats.Errors,
		logger.FieldStatus:     string(final),
		logger.FieldDurationMs: time.Since(started).Milliseconds(),
	}).Info("Sweep finished")

	return stats, nil
}

// sweep runs discovery and the per-item loop, filling stats as it goes.
// Returns true when the sweep as a whole should be marked failed (cancelled
// mid-flight); item-level failures only bump the error counter.
func (s *SweepService) sweep(ctx context.Context, run *domain.ParseRun, keywords []string, regions []int, stats *SweepStats) bool {
	log := s.log(ctx).WithField(logger.FieldComponent, "sweep")

	// Phase 1 — discovery. Overlap across keywords collapses on the
	// external ID; last seen wins, order is not significant.
	summaries, err := s.client.SearchVacancies(ctx, keywords, regions)
	if err != nil {
		log.WithError(err).Error("Discovery aborted")
		run.ErrorMessage = err.Error()
		s.addRunLog(ctx, run.ID, "ERROR", "discovery aborted: "+err.Error())
		return true
	}

	unique := make(map[string]hh.VacancySummary, len(summaries))
	order := make([]string, 0, len(summaries))
	for _, v := range summaries {
		if _, seen := unique[v.ID]; !seen {
			order = append(order, v.ID)
		}
		unique[v.ID] = v
	}
	stats.Found = len(unique)
	s.addRunLog(ctx, run.ID, "INFO", fmt.Sprintf("discovery: %d raw results, %d unique", len(summaries), len(unique)))

	// Phase 2 — detail fetch and reconcile, one candidate at a time. Each
	// item commits on its own; a bad item never aborts the sweep.
	for _, id := range order {
		if ctx.Err() != nil {
			run.ErrorMessage = ctx.Err().Error()
			s.addRunLog(ctx, run.ID, "ERROR", "sweep cancelled: "+ctx.Err().Error())
			return true
		}

		isNew, err := s.processCandidate(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				run.ErrorMessage = ctx.Err().Error()
				s.addRunLog(ctx, run.ID, "ERROR", "sweep cancelled: "+ctx.Err().Error())
				return true
			}
			stats.Errors++
			log.WithField(logger.FieldHHID, id).WithError(err).Error("Failed to process vacancy")
			s.addRunLog(ctx, run.ID, "ERROR", fmt.Sprintf("vacancy %s: %v", id, err))
			continue
		}
		if isNew {
			stats.New++
		} else {
			stats.Updated++
		}
	}

	return false
}

// processCandidate fetches one vacancy's detail and reconciles employer and
// vacancy inside a single transaction. A failure rolls back only this item.
func (s *SweepService) processCandidate(ctx context.Context, id string) (bool, error) {
	detail, err := s.client.GetVacancyDetail(ctx, id)
	if err != nil {
		return false, fmt.Errorf("detail fetch: %w", err)
	}

	var isNew bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		employer, err := s.reconciler.ReconcileEmployer(tx, detail.Employer)
		if err != nil {
			return err
		}
		_, created, err := s.reconciler.ReconcileVacancy(tx, detail, employer)
		if err != nil {
			return err
		}
		isNew = created
		return nil
	})
	if err != nil {
		return false, err
	}
	return isNew, nil
}

// addRunLog persists a run log entry; failures are logged and swallowed so
// bookkeeping never breaks the sweep.
func (s *SweepService) addRunLog(ctx context.Context, runID, level, message string) {
	if err := s.runs.AddLog(ctx, runID, level, message, ""); err != nil {
		s.log(ctx).WithError(err).Warn("Failed to append run log")
	}
}
