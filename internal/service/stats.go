package service

import (
	"context"

	"github.com/agore-ui/hh-parser-service/internal/domain"
	"github.com/agore-ui/hh-parser-service/internal/repository"
)

// OverallStats is the simple-count summary exposed on the stats endpoint.
type OverallStats struct {
	TotalVacancies  int64 `json:"total_vacancies"`
	ActiveVacancies int64 `json:"active_vacancies"`
	TotalEmployers  int64 `json:"total_employers"`
	TotalRuns       int64 `json:"total_runs"`
}

// StatsService produces count summaries over the store.
type StatsService struct {
	vacancies *repository.VacancyRepository
	employers *repository.EmployerRepository
	runs      *repository.RunRepository
}

// NewStatsService creates a StatsService.
func NewStatsService(
	vacancies *repository.VacancyRepository,
	employers *repository.EmployerRepository,
	runs *repository.RunRepository,
) *StatsService {
	return &StatsService{
		vacancies: vacancies,
		employers: employers,
		runs:      runs,
	}
}

// Overall returns the current totals.
func (s *StatsService) Overall(ctx context.Context) (*OverallStats, error) {
	total, err := s.vacancies.Count(ctx, "")
	if err != nil {
		return nil, err
	}
	active, err := s.vacancies.Count(ctx, domain.VacancyStatusActive)
	if err != nil {
		return nil, err
	}
	employers, err := s.employers.Count(ctx)
	if err != nil {
		return nil, err
	}
	runs, err := s.runs.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &OverallStats{
		TotalVacancies:  total,
		ActiveVacancies: active,
		TotalEmployers:  employers,
		TotalRuns:       runs,
	}, nil
}
