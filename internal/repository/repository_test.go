package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/agore-ui/hh-parser-service/internal/domain"
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
	sqlDB.SetMaxOpenConns(1)
	db.Exec("PRAGMA foreign_keys=ON")

	if err := Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func seedVacancy(t *testing.T, db *gorm.DB, hhID string, status domain.VacancyStatus) *domain.Vacancy {
	t.Helper()
	employers := NewEmployerRepository(db)
	vacancies := NewVacancyRepository(db)
	ctx := context.Background()

	employer := &domain.Employer{ID: uuid.New().String(), HHID: "emp-" + hhID, Name: "Работодатель"}
	if err := employers.Create(ctx, employer); err != nil {
		t.Fatalf("failed to seed employer: %v", err)
	}
	vacancy := &domain.Vacancy{
		ID:         uuid.New().String(),
		HHID:       hhID,
		EmployerID: employer.ID,
		Title:      "Инженер",
		Status:     status,
	}
	if err := vacancies.Create(ctx, vacancy); err != nil {
		t.Fatalf("failed to seed vacancy: %v", err)
	}
	return vacancy
}

func TestVacancyGetByHHIDNotFound(t *testing.T) {
	db := newTestDB(t)
	vacancies := NewVacancyRepository(db)

	_, err := vacancies.GetByHHID(context.Background(), "nope")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("got %v, want gorm.ErrRecordNotFound", err)
	}
}

func TestVacancyListByStatus(t *testing.T) {
	db := newTestDB(t)
	vacancies := NewVacancyRepository(db)
	ctx := context.Background()

	seedVacancy(t, db, "1", domain.VacancyStatusActive)
	seedVacancy(t, db, "2", domain.VacancyStatusActive)
	seedVacancy(t, db, "3", domain.VacancyStatusClosed)

	active, err := vacancies.List(ctx, VacancyFilter{Status: domain.VacancyStatusActive}, 10, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(active) != 2 {
		t.Errorf("got %d active vacancies, want 2", len(active))
	}

	count, err := vacancies.Count(ctx, domain.VacancyStatusClosed)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("got %d closed vacancies, want 1", count)
	}
}

func TestVacancyDeleteCascadesVersions(t *testing.T) {
	db := newTestDB(t)
	vacancies := NewVacancyRepository(db)
	versions := NewVersionRepository(db)
	ctx := context.Background()

	vacancy := seedVacancy(t, db, "1", domain.VacancyStatusActive)
	for _, ct := range []domain.ChangeType{domain.ChangeTypeCreated, domain.ChangeTypeUpdated} {
		err := versions.Append(ctx, &domain.VacancyVersion{
			ID:         uuid.New().String(),
			VacancyID:  vacancy.ID,
			Title:      vacancy.Title,
			Status:     vacancy.Status,
			ChangeType: ct,
		})
		if err != nil {
			t.Fatalf("failed to append version: %v", err)
		}
	}

	if err := vacancies.Delete(ctx, vacancy.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	count, err := versions.CountByVacancy(ctx, vacancy.ID)
	if err != nil {
		t.Fatalf("CountByVacancy failed: %v", err)
	}
	if count != 0 {
		t.Errorf("got %d versions after vacancy delete, want 0", count)
	}
}

func TestRunLifecycle(t *testing.T) {
	db := newTestDB(t)
	runs := NewRunRepository(db)
	ctx := context.Background()

	run, err := runs.Create(ctx, nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if run.Status != domain.RunStatusPending {
		t.Errorf("got status %q, want pending", run.Status)
	}
	if run.StartedAt != nil || run.CompletedAt != nil {
		t.Error("fresh run must have no timestamps")
	}

	if err := runs.SetStatus(ctx, run, domain.RunStatusRunning); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if run.StartedAt == nil {
		t.Error("running run must have started_at")
	}

	if err := runs.SetStatus(ctx, run, domain.RunStatusCompleted); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if run.CompletedAt == nil {
		t.Error("completed run must have completed_at")
	}

	reloaded, err := runs.GetByID(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if reloaded.Status != domain.RunStatusCompleted {
		t.Errorf("got persisted status %q, want completed", reloaded.Status)
	}
}

func TestRunLogsKeepInsertionOrder(t *testing.T) {
	db := newTestDB(t)
	runs := NewRunRepository(db)
	ctx := context.Background()

	run, err := runs.Create(ctx, nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	messages := []string{"first", "second", "third"}
	for _, m := range messages {
		if err := runs.AddLog(ctx, run.ID, "INFO", m, ""); err != nil {
			t.Fatalf("AddLog failed: %v", err)
		}
	}

	logs, err := runs.GetLogs(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetLogs failed: %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("got %d log entries, want 3", len(logs))
	}
	for i, m := range messages {
		if logs[i].Message != m {
			t.Errorf("log %d: got %q, want %q", i, logs[i].Message, m)
		}
	}
}

func TestFilterTouchLastRun(t *testing.T) {
	db := newTestDB(t)
	filters := NewFilterRepository(db)
	ctx := context.Background()

	filter := &domain.SearchFilter{
		ID:       uuid.New().String(),
		Name:     "go jobs",
		Keywords: domain.StringArray{"golang"},
		Regions:  domain.IntArray{1, 2},
		Enabled:  true,
	}
	if err := filters.Create(ctx, filter); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := filters.TouchLastRun(ctx, filter.ID); err != nil {
		t.Fatalf("TouchLastRun failed: %v", err)
	}

	reloaded, err := filters.GetByID(ctx, filter.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if reloaded.LastRunAt == nil {
		t.Error("last_run_at not stamped")
	}
	if len(reloaded.Regions) != 2 {
		t.Errorf("regions did not round-trip: %v", reloaded.Regions)
	}
}

func TestFilterListEnabledOnly(t *testing.T) {
	db := newTestDB(t)
	filters := NewFilterRepository(db)
	ctx := context.Background()

	for _, f := range []*domain.SearchFilter{
		{ID: uuid.New().String(), Name: "on", Keywords: domain.StringArray{"a"}, Enabled: true},
		{ID: uuid.New().String(), Name: "off", Keywords: domain.StringArray{"b"}, Enabled: false},
	} {
		if err := filters.Create(ctx, f); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	enabled, err := filters.List(ctx, true)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(enabled) != 1 || enabled[0].Name != "on" {
		t.Errorf("got %+v, want only the enabled filter", enabled)
	}

	all, err := filters.List(ctx, false)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("got %d filters, want 2", len(all))
	}
}
