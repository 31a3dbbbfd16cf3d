package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/agore-ui/hh-parser-service/internal/domain"
	"github.com/agore-ui/hh-parser-service/internal/hh"
	"github.com/agore-ui/hh-parser-service/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// One connection so every session sees the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	db.Exec("PRAGMA foreign_keys=ON")

	if err := repository.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func newTestReconciler(db *gorm.DB) *Reconciler {
	return NewReconciler(
		repository.NewEmployerRepository(db),
		repository.NewVacancyRepository(db),
		repository.NewVersionRepository(db),
	)
}

func testDetail(id string) *hh.VacancyDetail {
	from := 150000
	to := 250000
	currency := "RUR"
	gross := true
	return &hh.VacancyDetail{
		ID:           id,
		Name:         "Go разработчик",
		Description:  "Пишем сервисы на Go",
		KeySkills:    []hh.KeySkill{{Name: "Go"}, {Name: "PostgreSQL"}, {Name: ""}},
		Experience:   &hh.Dict{ID: "between1And3", Name: "От 1 года до 3 лет"},
		Employment:   &hh.Dict{ID: "full", Name: "Полная занятость"},
		Schedule:     &hh.Dict{ID: "remote", Name: "Удаленная работа"},
		Salary:       &hh.Salary{From: &from, To: &to, Currency: &currency, Gross: &gross},
		Area:         &hh.Area{ID: "1", Name: "Москва"},
		Address:      &hh.Address{City: "Москва", Raw: "Москва, ул. Ленина, 1"},
		Employer:     &hh.Employer{ID: "emp-1", Name: "Рога и Копыта", AlternateURL: "https://hh.ru/employer/emp-1"},
		AlternateURL: "https://hh.ru/vacancy/" + id,
		PublishedAt:  "2024-05-01T10:00:00+03:00",
	}
}

// reconcileOnce runs one employer+vacancy reconciliation the way a sweep does.
func reconcileOnce(t *testing.T, db *gorm.DB, r *Reconciler, detail *hh.VacancyDetail) (*domain.Vacancy, bool) {
	t.Helper()
	var (
		vacancy *domain.Vacancy
		created bool
	)
	err := db.WithContext(context.Background()).Transaction(func(tx *gorm.DB) error {
		employer, err := r.ReconcileEmployer(tx, detail.Employer)
		if err != nil {
			return err
		}
		vacancy, created, err = r.ReconcileVacancy(tx, detail, employer)
		return err
	})
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	return vacancy, created
}

func TestReconcileCreatesVacancyWithInitialVersion(t *testing.T) {
	db := newTestDB(t)
	r := newTestReconciler(db)
	versions := repository.NewVersionRepository(db)

	vacancy, created := reconcileOnce(t, db, r, testDetail("100"))
	if !created {
		t.Fatal("expected vacancy to be reported as new")
	}
	if vacancy.Status != domain.VacancyStatusActive {
		t.Errorf("got status %q, want active", vacancy.Status)
	}
	if vacancy.LastCheckedAt == nil {
		t.Error("last_checked_at not stamped on create")
	}
	if len(vacancy.KeySkills) != 2 {
		t.Errorf("got skills %v, want nameless entries dropped", vacancy.KeySkills)
	}
	if vacancy.Experience != "От 1 года до 3 лет" {
		t.Errorf("got experience %q", vacancy.Experience)
	}
	if vacancy.SalaryFrom == nil || *vacancy.SalaryFrom != 150000 {
		t.Errorf("salary_from not persisted: %v", vacancy.SalaryFrom)
	}

	history, err := versions.ListByVacancy(context.Background(), vacancy.ID)
	if err != nil {
		t.Fatalf("failed to list versions: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("got %d versions, want 1", len(history))
	}
	if history[0].ChangeType != domain.ChangeTypeCreated {
		t.Errorf("got change type %q, want created", history[0].ChangeType)
	}
	if len(history[0].ChangedFields) != 0 {
		t.Errorf("created version must have an empty changed-field set, got %v", history[0].ChangedFields)
	}
	if history[0].Title != vacancy.Title {
		t.Errorf("version snapshot title %q != vacancy title %q", history[0].Title, vacancy.Title)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	r := newTestReconciler(db)
	vacancies := repository.NewVacancyRepository(db)
	versions := repository.NewVersionRepository(db)

	first, _ := reconcileOnce(t, db, r, testDetail("100"))
	firstChecked := *first.LastCheckedAt

	time.Sleep(10 * time.Millisecond)
	second, created := reconcileOnce(t, db, r, testDetail("100"))
	if created {
		t.Error("second reconcile of the same payload must not create")
	}
	if second.ID != first.ID {
		t.Errorf("second reconcile produced a different record: %s vs %s", second.ID, first.ID)
	}
	if !second.LastCheckedAt.After(firstChecked) {
		t.Error("last_checked_at not advanced on an unchanged payload")
	}

	total, err := vacancies.Count(context.Background(), "")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if total != 1 {
		t.Errorf("got %d vacancies, want 1", total)
	}

	count, err := versions.CountByVacancy(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("version count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("got %d versions after identical payload, want 1", count)
	}
}

func TestReconcileRecordsFieldChanges(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *hh.VacancyDetail)
		changed []string
	}{
		{
			name:    "title change",
			mutate:  func(d *hh.VacancyDetail) { d.Name = "Senior Go разработчик" },
			changed: []string{"title"},
		},
		{
			name: "salary range change",
			mutate: func(d *hh.VacancyDetail) {
				from := 200000
				d.Salary.From = &from
			},
			changed: []string{"salary_from"},
		},
		{
			name:    "salary removed entirely",
			mutate:  func(d *hh.VacancyDetail) { d.Salary = nil },
			changed: []string{"salary_from", "salary_to", "salary_currency", "salary_gross"},
		},
		{
			name: "skills reordered",
			mutate: func(d *hh.VacancyDetail) {
				d.KeySkills = []hh.KeySkill{{Name: "PostgreSQL"}, {Name: "Go"}}
			},
			changed: []string{"key_skills"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestDB(t)
			r := newTestReconciler(db)
			versions := repository.NewVersionRepository(db)

			vacancy, _ := reconcileOnce(t, db, r, testDetail("100"))

			detail := testDetail("100")
			tt.mutate(detail)
			updated, created := reconcileOnce(t, db, r, detail)
			if created {
				t.Fatal("update path reported creation")
			}
			if updated.ID != vacancy.ID {
				t.Fatalf("update produced a new record")
			}

			history, err := versions.ListByVacancy(context.Background(), vacancy.ID)
			if err != nil {
				t.Fatalf("failed to list versions: %v", err)
			}
			if len(history) != 2 {
				t.Fatalf("got %d versions, want 2", len(history))
			}

			var updateVersion *domain.VacancyVersion
			for i := range history {
				if history[i].ChangeType == domain.ChangeTypeUpdated {
					updateVersion = &history[i]
				}
			}
			if updateVersion == nil {
				t.Fatal("no updated version recorded")
			}
			if len(updateVersion.ChangedFields) != len(tt.changed) {
				t.Fatalf("changed fields %v, want %v", updateVersion.ChangedFields, tt.changed)
			}
			for i, f := range tt.changed {
				if updateVersion.ChangedFields[i] != f {
					t.Errorf("changed field %d: got %q, want %q", i, updateVersion.ChangedFields[i], f)
				}
			}
		})
	}
}

func TestVersionHistoryIsAppendOnly(t *testing.T) {
	db := newTestDB(t)
	r := newTestReconciler(db)
	versions := repository.NewVersionRepository(db)

	titles := []string{"v1", "v2", "v3"}
	var vacancyID string
	for _, title := range titles {
		detail := testDetail("100")
		detail.Name = title
		v, _ := reconcileOnce(t, db, r, detail)
		vacancyID = v.ID
	}
	// A pass with no changes must add nothing.
	reconcileOnce(t, db, r, func() *hh.VacancyDetail { d := testDetail("100"); d.Name = "v3"; return d }())

	count, err := versions.CountByVacancy(context.Background(), vacancyID)
	if err != nil {
		t.Fatalf("version count failed: %v", err)
	}
	// One created version plus one update per title change.
	if count != 3 {
		t.Errorf("got %d versions, want 3", count)
	}
}

func TestReconcileNullSalary(t *testing.T) {
	db := newTestDB(t)
	r := newTestReconciler(db)

	detail := testDetail("100")
	detail.Salary = nil
	vacancy, _ := reconcileOnce(t, db, r, detail)

	if vacancy.SalaryFrom != nil || vacancy.SalaryTo != nil || vacancy.SalaryCurrency != nil || vacancy.SalaryGross != nil {
		t.Errorf("absent salary must leave all salary fields unset: %+v", vacancy)
	}
}

func TestReconcileEmployerRefreshesNameOnly(t *testing.T) {
	db := newTestDB(t)
	r := newTestReconciler(db)

	first, _ := reconcileOnce(t, db, r, testDetail("100"))

	detail := testDetail("101")
	detail.Employer.Name = "Новое имя"
	detail.Employer.AlternateURL = "https://example.com/changed"
	reconcileOnce(t, db, r, detail)

	employers := repository.NewEmployerRepository(db)
	employer, err := employers.GetByHHID(context.Background(), "emp-1")
	if err != nil {
		t.Fatalf("failed to load employer: %v", err)
	}
	if employer.Name != "Новое имя" {
		t.Errorf("got name %q, want refreshed name", employer.Name)
	}
	if employer.URL != "https://hh.ru/employer/emp-1" {
		t.Errorf("URL must not change on refresh, got %q", employer.URL)
	}

	total, err := employers.Count(context.Background())
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if total != 1 {
		t.Errorf("got %d employers, want 1", total)
	}
	if first.EmployerID != employer.ID {
		t.Errorf("vacancy bound to %s, employer is %s", first.EmployerID, employer.ID)
	}
}

func TestReconcileEmployerMalformed(t *testing.T) {
	db := newTestDB(t)
	r := newTestReconciler(db)

	for _, raw := range []*hh.Employer{nil, {ID: "", Name: "безымянный"}} {
		err := db.WithContext(context.Background()).Transaction(func(tx *gorm.DB) error {
			_, err := r.ReconcileEmployer(tx, raw)
			return err
		})
		if !errors.Is(err, ErrMalformedEmployer) {
			t.Errorf("got %v, want ErrMalformedEmployer", err)
		}
	}
}

func TestExperienceLabel(t *testing.T) {
	tests := []struct {
		name string
		exp  *hh.Dict
		want string
	}{
		{"no experience", &hh.Dict{ID: "noExperience"}, "Нет опыта"},
		{"1-3 years", &hh.Dict{ID: "between1And3"}, "От 1 года до 3 лет"},
		{"3-6 years", &hh.Dict{ID: "between3And6"}, "От 3 до 6 лет"},
		{"6+ years", &hh.Dict{ID: "moreThan6"}, "Более 6 лет"},
		{"unknown code", &hh.Dict{ID: "somethingNew"}, "Не указано"},
		{"absent", nil, "Не указано"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := experienceLabel(tt.exp); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParsePublishedAt(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantNil bool
	}{
		{"rfc3339", "2024-05-01T10:00:00Z", false},
		{"hh offset format", "2024-05-01T10:00:00+0300", false},
		{"empty", "", true},
		{"garbage", "yesterday", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parsePublishedAt(tt.in)
			if (got == nil) != tt.wantNil {
				t.Errorf("parsePublishedAt(%q) = %v, wantNil=%v", tt.in, got, tt.wantNil)
			}
		})
	}
}

func TestDefaultsForMissingFields(t *testing.T) {
	db := newTestDB(t)
	r := newTestReconciler(db)

	detail := &hh.VacancyDetail{
		ID:       "200",
		Employer: &hh.Employer{ID: "emp-2"},
	}
	vacancy, _ := reconcileOnce(t, db, r, detail)

	if vacancy.Title != "Без названия" {
		t.Errorf("got title %q, want placeholder", vacancy.Title)
	}
	if vacancy.Experience != "Не указано" {
		t.Errorf("got experience %q, want unspecified label", vacancy.Experience)
	}
	if vacancy.PublishedAt != nil {
		t.Errorf("missing published_at must stay unset, got %v", vacancy.PublishedAt)
	}

	employers := repository.NewEmployerRepository(db)
	employer, err := employers.GetByHHID(context.Background(), "emp-2")
	if err != nil {
		t.Fatalf("failed to load employer: %v", err)
	}
	if employer.Name != "Неизвестно" {
		t.Errorf("got employer name %q, want placeholder", employer.Name)
	}
}
