package domain

import "time"

// Employer represents a company that owns vacancies, keyed by its stable hh.ru ID.
type Employer struct {
	ID          string    `gorm:"type:text;primaryKey" json:"id"`
	HHID        string    `gorm:"column:hh_id;type:text;not null;uniqueIndex:idx_employers_hh_id" json:"hh_id"`
	Name        string    `gorm:"type:text;not null" json:"name"`
	URL         string    `gorm:"type:text" json:"url,omitempty"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	SiteURL     string    `gorm:"type:text" json:"site_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Vacancies []Vacancy `gorm:"foreignKey:EmployerID;constraint:OnDelete:CASCADE" json:"vacancies,omitempty"`
}

// TableName returns the database table name for Employer.
func (Employer) TableName() string {
	return "employers"
}
