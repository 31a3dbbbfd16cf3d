package domain

import "time"

// ChangeType classifies what kind of change a vacancy version records.
// Values include ChangeTypeCreated, ChangeTypeUpdated, and ChangeTypeClosed.
type ChangeType string

const (
	ChangeTypeCreated ChangeType = "created"
	ChangeTypeUpdated ChangeType = "updated"
	ChangeTypeClosed  ChangeType = "closed"
)

// VacancyVersion is an immutable snapshot of a vacancy at a point of change.
// Snapshots always capture the post-merge field values, never the pre-change
// ones. Rows are append-only and removed only via cascade with the parent.
type VacancyVersion struct {
	ID        string `gorm:"type:text;primaryKey" json:"id"`
	VacancyID string `gorm:"type:text;not null;index:idx_versions_vacancy_created" json:"vacancy_id"`

	Title       string        `gorm:"type:text" json:"title"`
	Description string        `gorm:"type:text" json:"description,omitempty"`
	KeySkills   StringArray   `gorm:"type:text" json:"key_skills"`
	SalaryFrom  *int          `json:"salary_from,omitempty"`
	SalaryTo    *int          `json:"salary_to,omitempty"`
	Status      VacancyStatus `gorm:"type:text" json:"status"`

	ChangeType    ChangeType  `gorm:"type:text;not null" json:"change_type"`
	ChangedFields StringArray `gorm:"type:text" json:"changed_fields"`

	CreatedAt time.Time `gorm:"index:idx_versions_vacancy_created" json:"created_at"`
}

// TableName returns the database table name for VacancyVersion.
func (VacancyVersion) TableName() string {
	return "vacancy_versions"
}
