package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agore-ui/hh-parser-service/internal/domain"
	"github.com/agore-ui/hh-parser-service/internal/hh"
	"github.com/agore-ui/hh-parser-service/internal/repository"
)

// ErrMalformedEmployer indicates a vacancy payload without a usable employer
// reference. The affected item is counted as an error and skipped.
var ErrMalformedEmployer = errors.New("malformed employer payload")

// experienceLabels maps hh.ru experience dictionary codes to human labels.
var experienceLabels = map[string]string{
	"noExperience": "Нет опыта",
	"between1And3": "От 1 года до 3 лет",
	"between3And6": "От 3 до 6 лет",
	"moreThan6":    "Более 6 лет",
}

const experienceUnspecified = "Не указано"

// Reconciler merges fetched vacancy payloads into persisted state and emits
// immutable version records. All methods expect to run inside the caller's
// transaction; one reconciled item equals one commit boundary.
type Reconciler struct {
	employers *repository.EmployerRepository
	vacancies *repository.VacancyRepository
	versions  *repository.VersionRepository
}

// NewReconciler creates a Reconciler over the given repositories.
func NewReconciler(
	employers *repository.EmployerRepository,
	vacancies *repository.VacancyRepository,
	versions *repository.VersionRepository,
) *Reconciler {
	return &Reconciler{
		employers: employers,
		vacancies: vacancies,
		versions:  versions,
	}
}

// withTx returns a Reconciler whose repositories are bound to tx.
func (r *Reconciler) withTx(tx *gorm.DB) *Reconciler {
	return &Reconciler{
		employers: r.employers.WithTx(tx),
		vacancies: r.vacancies.WithTx(tx),
		versions:  r.versions.WithTx(tx),
	}
}

// ReconcileEmployer creates the employer on first sight or refreshes its
// display name on every subsequent sighting. URL and description of an
// existing employer are left alone on this path.
// Parameters:
//   - tx: transaction handle scoping the item's writes.
//   - raw: employer sub-object from the vacancy payload.
// Returns:
//   - *domain.Employer: created or updated employer.
//   - error: ErrMalformedEmployer when the payload has no ID, otherwise store errors.
func (r *Reconciler) ReconcileEmployer(tx *gorm.DB, raw *hh.Employer) (*domain.Employer, error) {
	if raw == nil || raw.ID == "" {
		return nil, ErrMalformedEmployer
	}

	repos := r.withTx(tx)
	ctx := tx.Statement.Context

	employer, err := repos.employers.GetByHHID(ctx, raw.ID)
	if err == nil {
		if raw.Name != "" {
			employer.Name = raw.Name
		}
		employer.UpdatedAt = time.Now()
		if err := repos.employers.Update(ctx, employer); err != nil {
			return nil, err
		}
		return employer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	name := raw.Name
	if name == "" {
		name = "Неизвестно"
	}
	employer = &domain.Employer{
		ID:      uuid.New().String(),
		HHID:    raw.ID,
		Name:    name,
		URL:     raw.AlternateURL,
		SiteURL: raw.SiteURL,
	}
	if err := repos.employers.Create(ctx, employer); err != nil {
		return nil, err
	}
	return employer, nil
}

// ReconcileVacancy merges a full vacancy payload into the store.
//
// A vacancy seen for the first time is created with status active and a
// "created" version with an empty changed-field set. An existing vacancy gets
// a full-field diff; changed fields are overwritten in place and, when any
// field changed, an "updated" version naming them is appended. last_checked_at
// is stamped in both cases, field changes or not.
// Parameters:
//   - tx: transaction handle scoping the item's writes.
//   - raw: full vacancy payload from the detail endpoint.
//   - employer: reconciled owning employer.
// Returns:
//   - *domain.Vacancy: created or updated vacancy.
//   - bool: true when the vacancy was newly created.
//   - error: non-nil on store failure.
func (r *Reconciler) ReconcileVacancy(tx *gorm.DB, raw *hh.VacancyDetail, employer *domain.Employer) (*domain.Vacancy, bool, error) {
	repos := r.withTx(tx)
	ctx := tx.Statement.Context
	now := time.Now()

	incoming := vacancyFromDetail(raw)

	existing, err := repos.vacancies.GetByHHID(ctx, raw.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		incoming.ID = uuid.New().String()
		incoming.EmployerID = employer.ID
		incoming.Status = domain.VacancyStatusActive
		incoming.LastCheckedAt = &now

		if err := repos.vacancies.Create(ctx, incoming); err != nil {
			return nil, false, err
		}
		if err := repos.appendVersion(ctx, incoming, domain.ChangeTypeCreated, nil); err != nil {
			return nil, false, err
		}
		return incoming, true, nil
	}
	if err != nil {
		return nil, false, err
	}

	changed := mergeVacancy(existing, incoming)
	existing.LastCheckedAt = &now

	if len(changed) > 0 {
		existing.UpdatedAt = now
	}
	if err := repos.vacancies.Update(ctx, existing); err != nil {
		return nil, false, err
	}
	if len(changed) > 0 {
		if err := repos.appendVersion(ctx, existing, domain.ChangeTypeUpdated, changed); err != nil {
			return nil, false, err
		}
	}
	return existing, false, nil
}

// appendVersion snapshots the current (post-merge) vacancy state.
func (r *Reconciler) appendVersion(ctx context.Context, v *domain.Vacancy, changeType domain.ChangeType, changedFields []string) error {
	fields := changedFields
	if fields == nil {
		fields = []string{}
	}
	version := &domain.VacancyVersion{
		ID:            uuid.New().String(),
		VacancyID:     v.ID,
		Title:         v.Title,
		Description:   v.Description,
		KeySkills:     v.KeySkills,
		SalaryFrom:    v.SalaryFrom,
		SalaryTo:      v.SalaryTo,
		Status:        v.Status,
		ChangeType:    changeType,
		ChangedFields: domain.StringArray(fields),
	}
	return r.versions.Append(ctx, version)
}

// vacancyFromDetail normalizes a raw payload into a vacancy value.
// Malformed optional fields (skills without names, unparseable publish
// timestamps, absent salary sub-fields) degrade to unset instead of failing
// the item.
func vacancyFromDetail(raw *hh.VacancyDetail) *domain.Vacancy {
	v := &domain.Vacancy{
		HHID:        raw.ID,
		Title:       raw.Name,
		Description: raw.Description,
		KeySkills:   parseSkills(raw.KeySkills),
		Experience:  experienceLabel(raw.Experience),
		URL:         raw.AlternateURL,
		PublishedAt: parsePublishedAt(raw.PublishedAt),
	}
	if v.Title == "" {
		v.Title = "Без названия"
	}
	if raw.Employment != nil {
		v.Employment = raw.Employment.Name
	}
	if raw.Schedule != nil {
		v.Schedule = raw.Schedule.Name
	}
	if raw.Salary != nil {
		v.SalaryFrom = raw.Salary.From
		v.SalaryTo = raw.Salary.To
		v.SalaryCurrency = raw.Salary.Currency
		v.SalaryGross = raw.Salary.Gross
	}
	if raw.Area != nil {
		v.Region = raw.Area.Name
	}
	if raw.Address != nil {
		v.City = raw.Address.City
		v.Address = raw.Address.Raw
	}
	return v
}

// mergeVacancy overwrites every changed business field on dst with the value
// from src and returns the names of the fields that changed. The diff covers
// the full field set, not just the title.
func mergeVacancy(dst, src *domain.Vacancy) []string {
	var changed []string

	if dst.Title != src.Title {
		dst.Title = src.Title
		changed = append(changed, "title")
	}
	if dst.Description != src.Description {
		dst.Description = src.Description
		changed = append(changed, "description")
	}
	if !equalStrings(dst.KeySkills, src.KeySkills) {
		dst.KeySkills = src.KeySkills
		changed = append(changed, "key_skills")
	}
	if dst.Experience != src.Experience {
		dst.Experience = src.Experience
		changed = append(changed, "experience")
	}
	if dst.Employment != src.Employment {
		dst.Employment = src.Employment
		changed = append(changed, "employment")
	}
	if dst.Schedule != src.Schedule {
		dst.Schedule = src.Schedule
		changed = append(changed, "schedule")
	}
	if !equalIntPtr(dst.SalaryFrom, src.SalaryFrom) {
		dst.SalaryFrom = src.SalaryFrom
		changed = append(changed, "salary_from")
	}
	if !equalIntPtr(dst.SalaryTo, src.SalaryTo) {
		dst.SalaryTo = src.SalaryTo
		changed = append(changed, "salary_to")
	}
	if !equalStrPtr(dst.SalaryCurrency, src.SalaryCurrency) {
		dst.SalaryCurrency = src.SalaryCurrency
		changed = append(changed, "salary_currency")
	}
	if !equalBoolPtr(dst.SalaryGross, src.SalaryGross) {
		dst.SalaryGross = src.SalaryGross
		changed = append(changed, "salary_gross")
	}
	if dst.Region != src.Region {
		dst.Region = src.Region
		changed = append(changed, "region")
	}
	if dst.City != src.City {
		dst.City = src.City
		changed = append(changed, "city")
	}
	if dst.Address != src.Address {
		dst.Address = src.Address
		changed = append(changed, "address")
	}

	return changed
}

// parseSkills keeps only skill entries that actually carry a name.
func parseSkills(skills []hh.KeySkill) domain.StringArray {
	out := make(domain.StringArray, 0, len(skills))
	for _, s := range skills {
		if s.Name != "" {
			out = append(out, s.Name)
		}
	}
	return out
}

// experienceLabel maps a dictionary code to its label; unknown or missing
// codes map to the fixed "unspecified" label.
func experienceLabel(exp *hh.Dict) string {
	if exp == nil {
		return experienceUnspecified
	}
	if label, ok := experienceLabels[exp.ID]; ok {
		return label
	}
	return experienceUnspecified
}

// parsePublishedAt parses the ISO-8601 publish timestamp. Malformed input
// leaves the field unset rather than failing the record.
func parsePublishedAt(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05-0700"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func equalStrings(a, b domain.StringArray) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalStrPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalBoolPtr(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
