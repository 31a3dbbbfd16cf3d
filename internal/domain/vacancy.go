package domain

import "time"

// VacancyStatus represents the lifecycle status of a vacancy.
// Values include VacancyStatusActive, VacancyStatusClosed, and VacancyStatusArchived.
type VacancyStatus string

const (
	VacancyStatusActive   VacancyStatus = "active"
	VacancyStatusClosed   VacancyStatus = "closed"
	VacancyStatusArchived VacancyStatus = "archived"
)

// Vacancy represents a job posting ingested from hh.ru.
// The hh_id column is globally unique and is the sole deduplication key
// across repeated sweeps.
type Vacancy struct {
	ID         string `gorm:"type:text;primaryKey" json:"id"`
	HHID       string `gorm:"column:hh_id;type:text;not null;uniqueIndex:idx_vacancies_hh_id" json:"hh_id"`
	EmployerID string `gorm:"type:text;not null;index" json:"employer_id"`

	Title       string      `gorm:"type:text;not null;index" json:"title"`
	Description string      `gorm:"type:text" json:"description,omitempty"`
	KeySkills   StringArray `gorm:"type:text" json:"key_skills"`
	Experience  string      `gorm:"type:text" json:"experience,omitempty"`
	Employment  string      `gorm:"type:text" json:"employment,omitempty"`
	Schedule    string      `gorm:"type:text" json:"schedule,omitempty"`

	// Salary fields are independently nullable; hh.ru may omit any of them.
	SalaryFrom     *int    `json:"salary_from,omitempty"`
	SalaryTo       *int    `json:"salary_to,omitempty"`
	SalaryCurrency *string `gorm:"type:text" json:"salary_currency,omitempty"`
	SalaryGross    *bool   `json:"salary_gross,omitempty"`

	Region  string `gorm:"type:text;index" json:"region,omitempty"`
	City    string `gorm:"type:text" json:"city,omitempty"`
	Address string `gorm:"type:text" json:"address,omitempty"`

	URL         string        `gorm:"type:text" json:"url,omitempty"`
	Status      VacancyStatus `gorm:"type:text;index;default:active" json:"status"`
	PublishedAt *time.Time    `gorm:"index" json:"published_at,omitempty"`

	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`

	Versions []VacancyVersion `gorm:"foreignKey:VacancyID;constraint:OnDelete:CASCADE" json:"versions,omitempty"`
}

// TableName returns the database table name for Vacancy.
func (Vacancy) TableName() string {
	return "vacancies"
}
