package domain

import "time"

// RunStatus represents the status of a parse run.
// Values include RunStatusPending, RunStatusRunning, RunStatusCompleted, and RunStatusFailed.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// ParseRun represents one execution of the ingestion pipeline over a set of
// keywords and regions, with aggregate counters filled in as the sweep runs.
type ParseRun struct {
	ID       string  `gorm:"type:text;primaryKey" json:"id"`
	FilterID *string `gorm:"type:text;index" json:"filter_id,omitempty"`

	Status RunStatus `gorm:"type:text;index;default:pending" json:"status"`

	VacanciesFound   int `gorm:"default:0" json:"vacancies_found"`
	VacanciesNew     int `gorm:"default:0" json:"vacancies_new"`
	VacanciesUpdated int `gorm:"default:0" json:"vacancies_updated"`
	// VacanciesClosed and RetryCount are reserved; sweeps do not detect
	// closed vacancies or retry themselves yet, so both stay zero.
	VacanciesClosed int `gorm:"default:0" json:"vacancies_closed"`
	Errors          int `gorm:"default:0" json:"errors"`

	ErrorMessage string `gorm:"type:text" json:"error_message,omitempty"`
	RetryCount   int    `gorm:"default:0" json:"retry_count"`

	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Logs []RunLog `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE" json:"logs,omitempty"`
}

// TableName returns the database table name for ParseRun.
func (ParseRun) TableName() string {
	return "parse_runs"
}

// RunLog is a leveled log entry attached to a parse run.
type RunLog struct {
	ID      string `gorm:"type:text;primaryKey" json:"id"`
	RunID   string `gorm:"type:text;not null;index" json:"run_id"`
	Level   string `gorm:"type:text;index" json:"level"`
	Message string `gorm:"type:text" json:"message"`
	Details string `gorm:"type:text" json:"details,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName returns the database table name for RunLog.
func (RunLog) TableName() string {
	return "parse_run_logs"
}
