package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/agore-ui/hh-parser-service/internal/domain"
)

// FilterRepository handles persisted search filters.
type FilterRepository struct {
	db *gorm.DB
}

// NewFilterRepository creates a new FilterRepository.
func NewFilterRepository(db *gorm.DB) *FilterRepository {
	return &FilterRepository{db: db}
}

// Create inserts a new search filter.
func (r *FilterRepository) Create(ctx context.Context, filter *domain.SearchFilter) error {
	return r.db.WithContext(ctx).Create(filter).Error
}

// Update persists changes to a search filter.
func (r *FilterRepository) Update(ctx context.Context, filter *domain.SearchFilter) error {
	return r.db.WithContext(ctx).Save(filter).Error
}

// GetByID retrieves a filter by ID.
func (r *FilterRepository) GetByID(ctx context.Context, id string) (*domain.SearchFilter, error) {
	var filter domain.SearchFilter
	if err := r.db.WithContext(ctx).First(&filter, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &filter, nil
}

// List retrieves filters, optionally restricted to enabled ones.
func (r *FilterRepository) List(ctx context.Context, enabledOnly bool) ([]domain.SearchFilter, error) {
	query := r.db.WithContext(ctx).Model(&domain.SearchFilter{})
	if enabledOnly {
		query = query.Where("enabled = ?", true)
	}
	var filters []domain.SearchFilter
	if err := query.Order("name ASC").Find(&filters).Error; err != nil {
		return nil, err
	}
	return filters, nil
}

// Delete removes a filter by ID.
func (r *FilterRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.SearchFilter{}, "id = ?", id).Error
}

// TouchLastRun stamps the filter's last run time.
func (r *FilterRepository) TouchLastRun(ctx context.Context, id string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&domain.SearchFilter{}).
		Where("id = ?", id).
		Update("last_run_at", now).Error
}
