package service

import (
	"context"
	"errors"
	"strings"

	"github.com/windoze95/shopcompare-api/internal/ai"
	"github.com/windoze95/shopcompare-api/internal/catalog"
	"github.com/windoze95/shopcompare-api/internal/logger"
	"github.com/windoze95/shopcompare-api/internal/models"
	"go.uber.org/zap"
)

// FallbackMessage is shown when an AI search failed and local results are
// returned instead.
const FallbackMessage = "連線 AI 發生錯誤，已切換為本機展示資料。"

// ErrHistoryIndex is returned when a history position does not exist.
var ErrHistoryIndex = errors.New("history index out of range")

// ListingFetcher is the AI query client as seen by the search service.
type ListingFetcher interface {
	Available() bool
	FetchListings(ctx context.Context, query string) ([]models.Product, error)
}

// HistoryStore is the search history as seen by the search service.
type HistoryStore interface {
	Terms() []string
	Record(ctx context.Context, term string) []string
}

// SearchService runs searches against the AI client or the local catalog.
type SearchService struct {
	AI      ListingFetcher
	History HistoryStore
	Catalog []models.Product
}

// NewSearchService creates a new SearchService. A nil products slice uses
// the built-in catalog.
func NewSearchService(aiClient ListingFetcher, history HistoryStore, products []models.Product) *SearchService {
	if products == nil {
		products = catalog.Default()
	}
	return &SearchService{
		AI:      aiClient,
		History: history,
		Catalog: products,
	}
}

// AIAvailable reports whether AI mode can be used at all.
func (s *SearchService) AIAvailable() bool {
	return s.AI != nil && s.AI.Available()
}

// Search trims rawQuery, records it in the history and returns price-sorted
// results. An empty query is a reset: it returns no items and leaves the
// history alone. AI failures fall back to the local catalog with
// FallbackMessage set; Search itself never fails.
func (s *SearchService) Search(ctx context.Context, rawQuery string, aiMode bool) models.SearchResult {
	term := strings.TrimSpace(rawQuery)
	useAI := aiMode && s.AIAvailable()

	if term == "" {
		return models.SearchResult{Items: []models.Product{}, AIMode: useAI}
	}

	s.History.Record(ctx, term)

	if aiMode && !useAI {
		logger.Get().Debug("AI mode requested without a configured credential, using local catalog",
			zap.String("query", term))
	}

	if useAI {
		items, err := s.AI.FetchListings(ctx, term)
		if err == nil {
			return models.SearchResult{Term: term, Items: items, Source: models.SourceAI, AIMode: true}
		}

		logger.Get().Warn("AI search failed, falling back to local catalog",
			zap.String("query", term),
			zap.String("kind", errorKind(err)),
			zap.Error(err))

		return models.SearchResult{
			Term:         term,
			Items:        catalog.Match(s.Catalog, term),
			ErrorMessage: FallbackMessage,
			Source:       models.SourceLocal,
			AIMode:       true,
		}
	}

	return models.SearchResult{
		Term:   term,
		Items:  catalog.Match(s.Catalog, term),
		Source: models.SourceLocal,
		AIMode: false,
	}
}

// SearchHistoryEntry re-runs the term at position index of the history.
func (s *SearchService) SearchHistoryEntry(ctx context.Context, index int, aiMode bool) (models.SearchResult, error) {
	terms := s.History.Terms()
	if index < 0 || index >= len(terms) {
		return models.SearchResult{}, ErrHistoryIndex
	}
	return s.Search(ctx, terms[index], aiMode), nil
}

func errorKind(err error) string {
	var aiErr *ai.Error
	if errors.As(err, &aiErr) {
		return aiErr.Kind.String()
	}
	return "unknown"
}
