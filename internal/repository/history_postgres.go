package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/windoze95/shopcompare-api/internal/models"
	"gorm.io/gorm"
)

// PostgresHistoryRepository stores the history as a text[] row per
// namespace.
type PostgresHistoryRepository struct {
	DB        *gorm.DB
	namespace string
}

// NewPostgresHistoryRepository creates a PostgresHistoryRepository.
func NewPostgresHistoryRepository(database *gorm.DB, namespace string) *PostgresHistoryRepository {
	return &PostgresHistoryRepository{DB: database, namespace: namespace}
}

// LoadTerms reads the namespace's row.
func (r *PostgresHistoryRepository) LoadTerms(ctx context.Context) ([]string, error) {
	var history models.SearchHistory
	err := r.DB.WithContext(ctx).
		Where("namespace = ?", r.namespace).
		First(&history).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(r.namespace)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}

	terms := []string(history.Terms)
	if terms == nil {
		terms = []string{}
	}
	return terms, nil
}

// SaveTerms upserts the namespace's row.
func (r *PostgresHistoryRepository) SaveTerms(ctx context.Context, terms []string) error {
	if terms == nil {
		terms = []string{}
	}
	history := models.SearchHistory{
		Namespace: r.namespace,
		Terms:     pq.StringArray(terms),
	}
	if err := r.DB.WithContext(ctx).Save(&history).Error; err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}
