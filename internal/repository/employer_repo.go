package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/agore-ui/hh-parser-service/internal/domain"
)

// EmployerRepository handles employer data operations.
type EmployerRepository struct {
	db *gorm.DB
}

// NewEmployerRepository creates a new EmployerRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *EmployerRepository: repository instance bound to db.
func NewEmployerRepository(db *gorm.DB) *EmployerRepository {
	return &EmployerRepository{db: db}
}

// WithTx returns a repository bound to the given transaction handle.
func (r *EmployerRepository) WithTx(tx *gorm.DB) *EmployerRepository {
	return &EmployerRepository{db: tx}
}

// Create inserts a new employer record.
func (r *EmployerRepository) Create(ctx context.Context, employer *domain.Employer) error {
	return r.db.WithContext(ctx).Create(employer).Error
}

// Update persists changes to an existing employer record.
func (r *EmployerRepository) Update(ctx context.Context, employer *domain.Employer) error {
	return r.db.WithContext(ctx).Save(employer).Error
}

// GetByID retrieves an employer by its internal ID.
func (r *EmployerRepository) GetByID(ctx context.Context, id string) (*domain.Employer, error) {
	var employer domain.Employer
	if err := r.db.WithContext(ctx).First(&employer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &employer, nil
}

// GetByHHID retrieves an employer by its external hh.ru ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - hhID: stable hh.ru employer ID.
// Returns:
//   - *domain.Employer: employer record if found.
//   - error: gorm.ErrRecordNotFound when absent, other errors on failure.
func (r *EmployerRepository) GetByHHID(ctx context.Context, hhID string) (*domain.Employer, error) {
	var employer domain.Employer
	if err := r.db.WithContext(ctx).First(&employer, "hh_id = ?", hhID).Error; err != nil {
		return nil, err
	}
	return &employer, nil
}

// List retrieves employers with pagination.
func (r *EmployerRepository) List(ctx context.Context, limit, offset int) ([]domain.Employer, error) {
	var employers []domain.Employer
	if err := r.db.WithContext(ctx).
		Limit(limit).
		Offset(offset).
		Order("created_at DESC").
		Find(&employers).Error; err != nil {
		return nil, err
	}
	return employers, nil
}

// Count returns the total number of employers.
func (r *EmployerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Employer{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Delete removes an employer by ID. Owned vacancies cascade.
func (r *EmployerRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.Employer{}, "id = ?", id).Error
}
