package models

import (
	"time"

	"github.com/lib/pq"
)

// SearchHistory is the row persisted by the postgres history backend. One row
// exists per namespace; Terms holds the most-recent-first list.
type SearchHistory struct {
	Namespace string         `gorm:"primaryKey;size:128"`
	Terms     pq.StringArray `gorm:"type:text[]"`
	UpdatedAt time.Time
}

// TableName pins the table name regardless of gorm's pluralisation rules.
func (SearchHistory) TableName() string {
	return "search_histories"
}
