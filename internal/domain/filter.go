package domain

import "time"

// SearchFilter is a named, persisted keyword/region set that the scheduler
// sweeps on a fixed interval.
type SearchFilter struct {
	ID          string `gorm:"type:text;primaryKey" json:"id"`
	Name        string `gorm:"type:text;not null;uniqueIndex" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	Keywords StringArray `gorm:"type:text" json:"keywords"`
	Regions  IntArray    `gorm:"type:text" json:"regions"`

	Enabled         bool `gorm:"default:true;index" json:"enabled"`
	IntervalSeconds int  `gorm:"default:3600" json:"interval_seconds"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
}

// TableName returns the database table name for SearchFilter.
func (SearchFilter) TableName() string {
	return "search_filters"
}
