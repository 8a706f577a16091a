package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/windoze95/shopcompare-api/internal/ai"
	"github.com/windoze95/shopcompare-api/internal/models"
	"github.com/windoze95/shopcompare-api/internal/repository"
)

// --- MockListingProvider ---

// MockListingProvider is a mock implementation of ai.ListingProvider.
type MockListingProvider struct {
	NameValue            string
	GenerateListingsFunc func(ctx context.Context, req ai.ListingRequest) (string, error)
}

func (m *MockListingProvider) Name() string {
	if m.NameValue == "" {
		return "mock"
	}
	return m.NameValue
}

func (m *MockListingProvider) GenerateListings(ctx context.Context, req ai.ListingRequest) (string, error) {
	if m.GenerateListingsFunc != nil {
		return m.GenerateListingsFunc(ctx, req)
	}
	return "", fmt.Errorf("GenerateListings not configured")
}

// --- MockListingFetcher ---

// MockListingFetcher is a mock of the AI query client used by the search
// service.
type MockListingFetcher struct {
	AvailableValue    bool
	FetchListingsFunc func(ctx context.Context, query string) ([]models.Product, error)

	mu      sync.Mutex
	Queries []string
}

func (m *MockListingFetcher) Available() bool {
	return m.AvailableValue
}

func (m *MockListingFetcher) FetchListings(ctx context.Context, query string) ([]models.Product, error) {
	m.mu.Lock()
	m.Queries = append(m.Queries, query)
	m.mu.Unlock()

	if m.FetchListingsFunc != nil {
		return m.FetchListingsFunc(ctx, query)
	}
	return nil, &ai.Error{Kind: ai.KindRequest, Op: "mock", Err: fmt.Errorf("FetchListings not configured")}
}

// Calls returns how many times FetchListings was called.
func (m *MockListingFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Queries)
}

// --- MockHistoryRepo ---

// MockHistoryRepo is an in-memory mock implementation of
// repository.HistoryRepo.
type MockHistoryRepo struct {
	mu     sync.Mutex
	Stored []string
	Saved  bool
	Saves  int

	LoadErr error
	SaveErr error
}

// NewMockHistoryRepo creates a MockHistoryRepo. With no terms it behaves
// like an empty store.
func NewMockHistoryRepo(terms ...string) *MockHistoryRepo {
	m := &MockHistoryRepo{}
	if len(terms) > 0 {
		m.Stored = append([]string(nil), terms...)
		m.Saved = true
	}
	return m
}

func (m *MockHistoryRepo) LoadTerms(ctx context.Context) ([]string, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.Saved {
		return nil, repository.NotFoundError{}
	}
	return append([]string(nil), m.Stored...), nil
}

func (m *MockHistoryRepo) SaveTerms(ctx context.Context, terms []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Saves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Stored = append([]string(nil), terms...)
	m.Saved = true
	return nil
}

// Snapshot returns the last saved terms.
func (m *MockHistoryRepo) Snapshot() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Stored...)
}

// SaveCount returns how many times SaveTerms was called.
func (m *MockHistoryRepo) SaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Saves
}
