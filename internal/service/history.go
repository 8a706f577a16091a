package service

import (
	"context"
	"sync"

	"github.com/windoze95/shopcompare-api/internal/logger"
	"github.com/windoze95/shopcompare-api/internal/repository"
	"go.uber.org/zap"
)

// MaxHistory is the number of search terms kept.
const MaxHistory = 5

// HistoryService is the search history store: a deduplicated,
// most-recent-first list of at most MaxHistory terms that mirrors its
// repository.
type HistoryService struct {
	Repo repository.HistoryRepo

	mu        sync.Mutex
	terms     []string
	listeners []func([]string)
}

// NewHistoryService creates a HistoryService and loads the stored history.
func NewHistoryService(ctx context.Context, repo repository.HistoryRepo) *HistoryService {
	s := &HistoryService{Repo: repo}
	s.Load(ctx)
	return s
}

// Load reads the stored history into memory and returns it. Read and parse
// errors are logged and yield an empty history.
func (s *HistoryService) Load(ctx context.Context) []string {
	terms, err := s.Repo.LoadTerms(ctx)
	if err != nil {
		if repository.IsNotFound(err) {
			logger.Get().Debug("no stored search history")
		} else {
			logger.Get().Warn("failed to load search history, starting empty", zap.Error(err))
		}
		terms = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.terms = normalizeHistory(terms)
	return copyTerms(s.terms)
}

// Terms returns the in-memory history.
func (s *HistoryService) Terms() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyTerms(s.terms)
}

// Record moves term to the front of the history, drops any earlier exact
// match, truncates to MaxHistory, persists the list and returns it.
// A persistence failure is logged; the in-memory list is still updated.
func (s *HistoryService) Record(ctx context.Context, term string) []string {
	s.mu.Lock()
	next := make([]string, 0, MaxHistory)
	next = append(next, term)
	for _, t := range s.terms {
		if t != term {
			next = append(next, t)
		}
	}
	if len(next) > MaxHistory {
		next = next[:MaxHistory]
	}
	s.terms = next

	if err := s.Repo.SaveTerms(ctx, copyTerms(next)); err != nil {
		logger.Get().Warn("failed to persist search history", zap.Error(err))
	}
	listeners := s.listeners
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(copyTerms(next))
	}
	return copyTerms(next)
}

// OnChange registers fn to be called with the new history after every
// Record.
func (s *HistoryService) OnChange(fn func([]string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// normalizeHistory applies the list invariants to stored data, which may
// have been written by something else.
func normalizeHistory(terms []string) []string {
	out := make([]string, 0, MaxHistory)
	seen := make(map[string]bool, len(terms))
	for _, t := range terms {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
		if len(out) == MaxHistory {
			break
		}
	}
	return out
}

func copyTerms(terms []string) []string {
	out := make([]string, len(terms))
	copy(out, terms)
	return out
}
