package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agore-ui/hh-parser-service/internal/domain"
)

// RunRepository handles parse run records and their log entries.
type RunRepository struct {
	db *gorm.DB
}

// NewRunRepository creates a new RunRepository.
func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new pending run, optionally linked to a search filter.
func (r *RunRepository) Create(ctx context.Context, filterID *string) (*domain.ParseRun, error) {
	run := &domain.ParseRun{
		ID:       uuid.New().String(),
		FilterID: filterID,
		Status:   domain.RunStatusPending,
	}
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

// Update persists changes to a run record.
func (r *RunRepository) Update(ctx context.Context, run *domain.ParseRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}

// SetStatus transitions a run's status and stamps started/completed times.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - run: run record to mutate and persist.
//   - status: new status; running stamps StartedAt, completed/failed stamp CompletedAt.
// Returns:
//   - error: non-nil if the update fails.
func (r *RunRepository) SetStatus(ctx context.Context, run *domain.ParseRun, status domain.RunStatus) error {
	now := time.Now()
	run.Status = status
	switch status {
	case domain.RunStatusRunning:
		run.StartedAt = &now
	case domain.RunStatusCompleted, domain.RunStatusFailed:
		run.CompletedAt = &now
	}
	return r.db.WithContext(ctx).Save(run).Error
}

// GetByID retrieves a run by ID.
func (r *RunRepository) GetByID(ctx context.Context, id string) (*domain.ParseRun, error) {
	var run domain.ParseRun
	if err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// List retrieves runs, newest first, optionally filtered by status.
func (r *RunRepository) List(ctx context.Context, status domain.RunStatus, limit int) ([]domain.ParseRun, error) {
	query := r.db.WithContext(ctx).Model(&domain.ParseRun{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var runs []domain.ParseRun
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// Count returns the total number of runs.
func (r *RunRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.ParseRun{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// AddLog appends a leveled log entry to a run.
func (r *RunRepository) AddLog(ctx context.Context, runID, level, message, details string) error {
	entry := &domain.RunLog{
		ID:      uuid.New().String(),
		RunID:   runID,
		Level:   level,
		Message: message,
		Details: details,
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// GetLogs retrieves a run's log entries in insertion order.
func (r *RunRepository) GetLogs(ctx context.Context, runID string) ([]domain.RunLog, error) {
	var logs []domain.RunLog
	if err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("created_at ASC").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
