package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/shopcompare-api/internal/catalog"
	"github.com/windoze95/shopcompare-api/internal/models"
	"github.com/windoze95/shopcompare-api/internal/service"
	"github.com/windoze95/shopcompare-api/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router  *gin.Engine
	history *service.HistoryService
	fetcher *testutil.MockListingFetcher
}

func newTestServer(fetcher *testutil.MockListingFetcher) *testServer {
	history := service.NewHistoryService(context.Background(), testutil.NewMockHistoryRepo())
	svc := service.NewSearchService(fetcher, history, nil)

	searchHandler := NewSearchHandler(svc)
	historyHandler := NewHistoryHandler(history)
	catalogHandler := NewCatalogHandler(catalog.Default())

	r := gin.New()
	r.GET("/v1/search", searchHandler.Search)
	r.GET("/v1/history", historyHandler.GetHistory)
	r.POST("/v1/history/:index/search", searchHandler.SearchHistoryEntry)
	r.GET("/v1/platforms", catalogHandler.ListPlatforms)
	r.GET("/v1/catalog", catalogHandler.ListCatalog)

	return &testServer{router: r, history: history, fetcher: fetcher}
}

func (s *testServer) do(method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) models.SearchResult {
	t.Helper()
	var result models.SearchResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v. body: %s", err, w.Body.String())
	}
	return result
}

func TestSearch_Handler_Local(t *testing.T) {
	s := newTestServer(&testutil.MockListingFetcher{AvailableValue: true})

	w := s.do("GET", "/v1/search?q=%E5%9E%83%E5%9C%BE%E6%A1%B6&ai=false")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200. body: %s", w.Code, w.Body.String())
	}

	result := decodeResult(t, w)
	if result.Term != "垃圾桶" {
		t.Errorf("term = %q", result.Term)
	}
	if len(result.Items) != 5 {
		t.Errorf("items = %d, want 5", len(result.Items))
	}
	if result.Source != models.SourceLocal {
		t.Errorf("source = %q", result.Source)
	}
	if s.fetcher.Calls() != 0 {
		t.Error("AI should not be called when ai=false")
	}
}

func TestSearch_Handler_DefaultsToAI(t *testing.T) {
	fetcher := &testutil.MockListingFetcher{
		AvailableValue: true,
		FetchListingsFunc: func(ctx context.Context, query string) ([]models.Product, error) {
			return testutil.TestAIProducts(), nil
		},
	}
	s := newTestServer(fetcher)

	w := s.do("GET", "/v1/search?q=water")
	result := decodeResult(t, w)
	if result.Source != models.SourceAI || !result.AIMode {
		t.Errorf("source = %q, aiMode = %v", result.Source, result.AIMode)
	}
	if len(result.Items) != 2 {
		t.Errorf("items = %d, want 2", len(result.Items))
	}
}

func TestSearch_Handler_FallbackStill200(t *testing.T) {
	fetcher := &testutil.MockListingFetcher{
		AvailableValue: true,
		FetchListingsFunc: func(ctx context.Context, query string) ([]models.Product, error) {
			return nil, errors.New("upstream down")
		},
	}
	s := newTestServer(fetcher)

	w := s.do("GET", "/v1/search?q=%E5%9E%83%E5%9C%BE%E6%A1%B6")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	result := decodeResult(t, w)
	if result.ErrorMessage != service.FallbackMessage {
		t.Errorf("errorMessage = %q", result.ErrorMessage)
	}
	if len(result.Items) != 5 {
		t.Errorf("items = %d, want 5 local matches", len(result.Items))
	}
}

func TestSearch_Handler_EmptyQuery(t *testing.T) {
	s := newTestServer(&testutil.MockListingFetcher{})

	w := s.do("GET", "/v1/search?q=%20%20")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"items":[]`) {
		t.Errorf("body should contain empty items array: %s", w.Body.String())
	}
	if len(s.history.Terms()) != 0 {
		t.Errorf("history = %v, want empty", s.history.Terms())
	}
}

func TestSearch_Handler_BadInput(t *testing.T) {
	s := newTestServer(&testutil.MockListingFetcher{})

	long := strings.Repeat("a", MaxQueryRunes+1)
	for _, target := range []string{"/v1/search?q=" + long, "/v1/search?q=x&ai=maybe"} {
		w := s.do("GET", target)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target[:20], w.Code)
		}
	}
	if len(s.history.Terms()) != 0 {
		t.Errorf("rejected requests should not touch history: %v", s.history.Terms())
	}
}

func TestGetHistory_Handler(t *testing.T) {
	s := newTestServer(&testutil.MockListingFetcher{})
	s.do("GET", "/v1/search?q=a&ai=false")
	s.do("GET", "/v1/search?q=b&ai=false")
	s.do("GET", "/v1/search?q=a&ai=false")

	w := s.do("GET", "/v1/history")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		History []string `json:"history"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.History) != 2 || resp.History[0] != "a" || resp.History[1] != "b" {
		t.Errorf("history = %v, want [a b]", resp.History)
	}
}

func TestGetHistory_Handler_EmptyIsArray(t *testing.T) {
	s := newTestServer(&testutil.MockListingFetcher{})

	w := s.do("GET", "/v1/history")
	if !strings.Contains(w.Body.String(), `"history":[]`) {
		t.Errorf("body = %s, want empty array", w.Body.String())
	}
}

func TestSearchHistoryEntry_Handler(t *testing.T) {
	s := newTestServer(&testutil.MockListingFetcher{})
	s.history.Record(context.Background(), "水壺")
	s.history.Record(context.Background(), "垃圾桶")

	w := s.do("POST", "/v1/history/1/search?ai=false")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d. body: %s", w.Code, w.Body.String())
	}
	if result := decodeResult(t, w); result.Term != "水壺" {
		t.Errorf("term = %q, want 水壺", result.Term)
	}
	if terms := s.history.Terms(); terms[0] != "水壺" {
		t.Errorf("re-searched term should move to front: %v", terms)
	}

	if w := s.do("POST", "/v1/history/7/search"); w.Code != http.StatusNotFound {
		t.Errorf("out of range: status = %d, want 404", w.Code)
	}
	if w := s.do("POST", "/v1/history/x/search"); w.Code != http.StatusBadRequest {
		t.Errorf("bad index: status = %d, want 400", w.Code)
	}
}

func TestListPlatforms_Handler(t *testing.T) {
	s := newTestServer(&testutil.MockListingFetcher{})

	w := s.do("GET", "/v1/platforms")
	var resp struct {
		Platforms []struct {
			Code string `json:"code"`
			Name string `json:"name"`
		} `json:"platforms"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Platforms) != 4 || resp.Platforms[0].Code != "M" {
		t.Errorf("platforms = %+v", resp.Platforms)
	}
}

func TestListCatalog_Handler(t *testing.T) {
	s := newTestServer(&testutil.MockListingFetcher{})

	w := s.do("GET", "/v1/catalog")
	var resp struct {
		Products []models.Product `json:"products"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Products) != len(catalog.Default()) {
		t.Fatalf("products = %d", len(resp.Products))
	}
	for i := 1; i < len(resp.Products); i++ {
		if resp.Products[i-1].Price > resp.Products[i].Price {
			t.Errorf("catalog not sorted at %d", i)
		}
	}
	if resp.Products[0].URL == "" {
		t.Error("catalog products should carry URLs")
	}
}
