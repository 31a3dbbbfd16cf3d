package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/agore-ui/hh-parser-service/internal/domain"
)

// VersionRepository handles the append-only vacancy change history.
type VersionRepository struct {
	db *gorm.DB
}

// NewVersionRepository creates a new VersionRepository.
func NewVersionRepository(db *gorm.DB) *VersionRepository {
	return &VersionRepository{db: db}
}

// WithTx returns a repository bound to the given transaction handle.
func (r *VersionRepository) WithTx(tx *gorm.DB) *VersionRepository {
	return &VersionRepository{db: tx}
}

// Append inserts a new version snapshot. Versions are never updated or
// deleted individually; they only go away via cascade with the parent.
func (r *VersionRepository) Append(ctx context.Context, version *domain.VacancyVersion) error {
	return r.db.WithContext(ctx).Create(version).Error
}

// ListByVacancy retrieves the version history for a vacancy, newest first.
func (r *VersionRepository) ListByVacancy(ctx context.Context, vacancyID string) ([]domain.VacancyVersion, error) {
	var versions []domain.VacancyVersion
	if err := r.db.WithContext(ctx).
		Where("vacancy_id = ?", vacancyID).
		Order("created_at DESC").
		Find(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}

// CountByVacancy returns the number of versions for a vacancy.
func (r *VersionRepository) CountByVacancy(ctx context.Context, vacancyID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.VacancyVersion{}).
		Where("vacancy_id = ?", vacancyID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
