package repository

import "context"

// HistoryRepo persists the ordered search-term list of one namespace.
// LoadTerms returns a NotFoundError when nothing has been saved yet.
type HistoryRepo interface {
	LoadTerms(ctx context.Context) ([]string, error)
	SaveTerms(ctx context.Context, terms []string) error
}

var (
	_ HistoryRepo = (*FileHistoryRepository)(nil)
	_ HistoryRepo = (*SQLiteHistoryRepository)(nil)
	_ HistoryRepo = (*PostgresHistoryRepository)(nil)
	_ HistoryRepo = (*S3HistoryRepository)(nil)
)
