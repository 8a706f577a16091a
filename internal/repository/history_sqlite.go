package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLiteHistoryRepository stores the history in the search_histories table
// of a database opened with db.OpenSQLite.
type SQLiteHistoryRepository struct {
	DB        *sql.DB
	namespace string
}

// NewSQLiteHistoryRepository creates a SQLiteHistoryRepository.
func NewSQLiteHistoryRepository(database *sql.DB, namespace string) *SQLiteHistoryRepository {
	return &SQLiteHistoryRepository{DB: database, namespace: namespace}
}

// LoadTerms reads the namespace's row.
func (r *SQLiteHistoryRepository) LoadTerms(ctx context.Context) ([]string, error) {
	var raw string
	err := r.DB.QueryRowContext(ctx,
		`SELECT terms FROM search_histories WHERE namespace = ?`, r.namespace).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(r.namespace)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	return decodeTerms([]byte(raw))
}

// SaveTerms upserts the namespace's row.
func (r *SQLiteHistoryRepository) SaveTerms(ctx context.Context, terms []string) error {
	data, err := encodeTerms(terms)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO search_histories (namespace, terms, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(namespace) DO UPDATE SET terms = excluded.terms, updated_at = excluded.updated_at`,
		r.namespace, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}
