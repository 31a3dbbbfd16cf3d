package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/agore-ui/hh-parser-service/internal/domain"
)

// VacancyFilter narrows List queries. Zero values mean "no filter".
type VacancyFilter struct {
	Status     domain.VacancyStatus
	Region     string
	EmployerID string
	HHID       string
}

// SearchQuery holds full-text-ish search parameters for stored vacancies.
type SearchQuery struct {
	Keywords   []string
	MinSalary  *int
	MaxSalary  *int
	Experience string
}

// VacancyRepository handles vacancy data operations.
type VacancyRepository struct {
	db *gorm.DB
}

// NewVacancyRepository creates a new VacancyRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *VacancyRepository: repository instance bound to db.
func NewVacancyRepository(db *gorm.DB) *VacancyRepository {
	return &VacancyRepository{db: db}
}

// WithTx returns a repository bound to the given transaction handle.
func (r *VacancyRepository) WithTx(tx *gorm.DB) *VacancyRepository {
	return &VacancyRepository{db: tx}
}

// Create inserts a new vacancy record.
func (r *VacancyRepository) Create(ctx context.Context, vacancy *domain.Vacancy) error {
	return r.db.WithContext(ctx).Create(vacancy).Error
}

// Update persists changes to an existing vacancy record.
func (r *VacancyRepository) Update(ctx context.Context, vacancy *domain.Vacancy) error {
	return r.db.WithContext(ctx).Save(vacancy).Error
}

// GetByID retrieves a vacancy by its internal ID.
func (r *VacancyRepository) GetByID(ctx context.Context, id string) (*domain.Vacancy, error) {
	var vacancy domain.Vacancy
	if err := r.db.WithContext(ctx).First(&vacancy, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vacancy, nil
}

// GetByHHID retrieves a vacancy by its external hh.ru ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - hhID: stable hh.ru vacancy ID, the sole deduplication key.
// Returns:
//   - *domain.Vacancy: vacancy record if found.
//   - error: gorm.ErrRecordNotFound when absent, other errors on failure.
func (r *VacancyRepository) GetByHHID(ctx context.Context, hhID string) (*domain.Vacancy, error) {
	var vacancy domain.Vacancy
	if err := r.db.WithContext(ctx).First(&vacancy, "hh_id = ?", hhID).Error; err != nil {
		return nil, err
	}
	return &vacancy, nil
}

// List retrieves vacancies matching the filter, newest published first.
func (r *VacancyRepository) List(ctx context.Context, filter VacancyFilter, limit, offset int) ([]domain.Vacancy, error) {
	query := r.db.WithContext(ctx).Model(&domain.Vacancy{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Region != "" {
		query = query.Where("region = ?", filter.Region)
	}
	if filter.EmployerID != "" {
		query = query.Where("employer_id = ?", filter.EmployerID)
	}
	if filter.HHID != "" {
		query = query.Where("hh_id = ?", filter.HHID)
	}

	var vacancies []domain.Vacancy
	if err := query.
		Order("published_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&vacancies).Error; err != nil {
		return nil, err
	}
	return vacancies, nil
}

// Search retrieves stored vacancies matching keyword and salary filters.
func (r *VacancyRepository) Search(ctx context.Context, q SearchQuery, limit, offset int) ([]domain.Vacancy, error) {
	query := r.db.WithContext(ctx).Model(&domain.Vacancy{})

	if len(q.Keywords) > 0 {
		kwQuery := r.db.Session(&gorm.Session{NewDB: true})
		for _, kw := range q.Keywords {
			pattern := "%" + kw + "%"
			kwQuery = kwQuery.Or("title LIKE ?", pattern).Or("description LIKE ?", pattern)
		}
		query = query.Where(kwQuery)
	}
	if q.MinSalary != nil {
		query = query.Where("salary_from >= ?", *q.MinSalary)
	}
	if q.MaxSalary != nil {
		query = query.Where("salary_to <= ?", *q.MaxSalary)
	}
	if q.Experience != "" {
		query = query.Where("experience = ?", q.Experience)
	}

	var vacancies []domain.Vacancy
	if err := query.
		Order("published_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&vacancies).Error; err != nil {
		return nil, err
	}
	return vacancies, nil
}

// Count returns the number of vacancies, optionally filtered by status.
func (r *VacancyRepository) Count(ctx context.Context, status domain.VacancyStatus) (int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Vacancy{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Delete removes a vacancy by ID. Versions cascade.
func (r *VacancyRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.Vacancy{}, "id = ?", id).Error
}
