package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeProvider returns a canned payload and records the last request.
type fakeProvider struct {
	payload string
	err     error
	calls   int
	lastReq ListingRequest
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) GenerateListings(ctx context.Context, req ListingRequest) (string, error) {
	f.calls++
	f.lastReq = req
	return f.payload, f.err
}

const validPayload = `[
  {"id": 1, "name": "Thermos 500ml", "keyword": "水壺", "price": 650, "platform": "momo", "platformCode": "M", "url": "https://evil.example"},
  {"id": 2, "name": "Tiger 保溫瓶", "price": 480, "platform": "蝦皮", "platformCode": "S", "url": ""},
  {"id": 3, "name": "Zojirushi 水壺", "keyword": "水壺", "price": 480, "platform": "PChome", "platformCode": "P"},
  {"id": 4, "name": "Lock&Lock bottle", "keyword": "水壺", "price": 199.0, "platform": "酷澎", "platformCode": "C"}
]`

func TestFetchListings_Success(t *testing.T) {
	fp := &fakeProvider{payload: validPayload}
	c := NewQueryClient(fp, nil)

	products, err := c.FetchListings(context.Background(), "水壺")
	if err != nil {
		t.Fatalf("FetchListings error: %v", err)
	}
	if fp.calls != 1 {
		t.Errorf("provider called %d times, want 1", fp.calls)
	}
	if len(products) != 4 {
		t.Fatalf("got %d products, want 4", len(products))
	}

	wantIDs := []int{4, 2, 3, 1}
	for i, p := range products {
		if p.ID != wantIDs[i] {
			t.Errorf("products[%d].ID = %d, want %d", i, p.ID, wantIDs[i])
		}
	}

	thermos := products[3]
	if thermos.URL != "https://www.momoshop.com.tw/search/searchShop.jsp?keyword=Thermos%20500ml" {
		t.Errorf("model-supplied url not replaced: %q", thermos.URL)
	}
	if products[1].Keyword != "水壺" {
		t.Errorf("missing keyword should default to query, got %q", products[1].Keyword)
	}
	if products[0].URL != "https://www.coupang.com/np/search?q=Lock%26Lock%20bottle" {
		t.Errorf("coupang URL = %q", products[0].URL)
	}
}

func TestFetchListings_PromptMentionsQueryAndCount(t *testing.T) {
	fp := &fakeProvider{payload: "[]"}
	c := NewQueryClient(fp, nil)

	if _, err := c.FetchListings(context.Background(), "電風扇"); err != nil {
		t.Fatalf("FetchListings error: %v", err)
	}
	if !strings.Contains(fp.lastReq.UserPrompt, "電風扇") {
		t.Errorf("user prompt missing query: %q", fp.lastReq.UserPrompt)
	}
	if !strings.Contains(fp.lastReq.UserPrompt, "8") || fp.lastReq.Count != DefaultListingCount {
		t.Errorf("request count = %d, prompt = %q", fp.lastReq.Count, fp.lastReq.UserPrompt)
	}
	if fp.lastReq.SystemPrompt == "" {
		t.Error("system prompt should be set")
	}
}

func TestFetchListings_Unavailable(t *testing.T) {
	c := NewQueryClient(nil, nil)
	if c.Available() {
		t.Fatal("client without provider should be unavailable")
	}
	_, err := c.FetchListings(context.Background(), "水壺")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestFetchListings_RequestErrors(t *testing.T) {
	tests := []struct {
		name string
		fp   *fakeProvider
	}{
		{"provider error", &fakeProvider{err: errors.New("connection reset")}},
		{"empty payload", &fakeProvider{payload: ""}},
		{"whitespace payload", &fakeProvider{payload: "  \n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewQueryClient(tt.fp, nil).FetchListings(context.Background(), "水壺")
			if !errors.Is(err, ErrRequest) {
				t.Errorf("err = %v, want ErrRequest", err)
			}
			if errors.Is(err, ErrSchema) {
				t.Error("request error should not match ErrSchema")
			}
		})
	}
}

func TestFetchListings_EveryQueryReachesProvider(t *testing.T) {
	queries := []string{"analog clock", "cumin powder", "assorted snacks", "Essex tea", "Hancock", "butt hinge", "fuck"}

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			fp := &fakeProvider{payload: "[]"}
			products, err := NewQueryClient(fp, nil).FetchListings(context.Background(), q)
			if err != nil {
				t.Fatalf("FetchListings(%q) error: %v", q, err)
			}
			if fp.calls != 1 {
				t.Errorf("provider called %d times, want 1", fp.calls)
			}
			if len(products) != 0 {
				t.Errorf("got %d products, want 0", len(products))
			}
			if !strings.Contains(fp.lastReq.UserPrompt, q) {
				t.Errorf("user prompt does not contain %q", q)
			}
		})
	}
}

func TestFetchListings_FlaggedListingsStillReturned(t *testing.T) {
	payload := `[
  {"id": 1, "name": "fuck mug", "price": 300, "platform": "momo", "platformCode": "M"},
  {"id": 2, "name": "ceramic mug", "price": 200, "platform": "PChome", "platformCode": "P"}
]`
	c := NewQueryClient(&fakeProvider{payload: payload}, nil)

	products, err := c.FetchListings(context.Background(), "mug")
	if err != nil {
		t.Fatalf("FetchListings error: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("got %d products, want 2", len(products))
	}
	if products[1].Name != "fuck mug" {
		t.Errorf("flagged name changed: %q", products[1].Name)
	}

	flagged := c.flagListings("mug", products)
	if len(flagged) != 1 || flagged[0] != "fuck mug" {
		t.Errorf("flagged = %v, want [fuck mug]", flagged)
	}
}

func TestFetchListings_SchemaErrors(t *testing.T) {
	tests := map[string]string{
		"not json":             `here are your listings`,
		"object not array":     `{"items": []}`,
		"element not object":   `[1, 2]`,
		"missing name":         `[{"id": 1, "price": 10, "platform": "momo", "platformCode": "M"}]`,
		"missing id":           `[{"name": "x", "price": 10, "platform": "momo", "platformCode": "M"}]`,
		"missing platformCode": `[{"id": 1, "name": "x", "price": 10, "platform": "momo"}]`,
		"bad platformCode":     `[{"id": 1, "name": "x", "price": 10, "platform": "momo", "platformCode": "Z"}]`,
		"string price":         `[{"id": 1, "name": "x", "price": "10", "platform": "momo", "platformCode": "M"}]`,
		"fractional price":     `[{"id": 1, "name": "x", "price": 10.5, "platform": "momo", "platformCode": "M"}]`,
		"negative price":       `[{"id": 1, "name": "x", "price": -1, "platform": "momo", "platformCode": "M"}]`,
		"huge price":           `[{"id": 1, "name": "x", "price": 1e30, "platform": "momo", "platformCode": "M"}]`,
		"huge negative id":     `[{"id": -1e30, "name": "x", "price": 10, "platform": "momo", "platformCode": "M"}]`,
		"numeric name":         `[{"id": 1, "name": 5, "price": 10, "platform": "momo", "platformCode": "M"}]`,
		"null platform":        `[{"id": 1, "name": "x", "price": 10, "platform": null, "platformCode": "M"}]`,
	}

	for name, payload := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewQueryClient(&fakeProvider{payload: payload}, nil).FetchListings(context.Background(), "x")
			if !errors.Is(err, ErrSchema) {
				t.Errorf("err = %v, want ErrSchema", err)
			}
		})
	}
}

func TestFetchListings_CodeFence(t *testing.T) {
	payload := "```json\n[{\"id\": 1, \"name\": \"x\", \"price\": 10, \"platform\": \"momo\", \"platformCode\": \"M\"}]\n```"
	products, err := NewQueryClient(&fakeProvider{payload: payload}, nil).FetchListings(context.Background(), "x")
	if err != nil {
		t.Fatalf("FetchListings error: %v", err)
	}
	if len(products) != 1 {
		t.Errorf("got %d products, want 1", len(products))
	}
}

func TestFetchListings_EmptyArray(t *testing.T) {
	products, err := NewQueryClient(&fakeProvider{payload: "[]"}, nil).FetchListings(context.Background(), "x")
	if err != nil {
		t.Fatalf("FetchListings error: %v", err)
	}
	if products == nil || len(products) != 0 {
		t.Errorf("products = %v, want empty non-nil", products)
	}
}

func TestUnwrapListings(t *testing.T) {
	if got := unwrapListings([]byte(`{"listings": [1]}`)); got != "[1]" {
		t.Errorf("unwrapListings = %q, want [1]", got)
	}
	if got := unwrapListings([]byte(`{"other": 1}`)); got != `{"other": 1}` {
		t.Errorf("unwrapListings without listings = %q", got)
	}
}

func TestConvertSchemaToGemini(t *testing.T) {
	s := convertSchemaToGemini(listingArraySchema([]string{"M", "P", "S", "C"}))
	if s.Items == nil {
		t.Fatal("array schema should have items")
	}
	code := s.Items.Properties["platformCode"]
	if code == nil || len(code.Enum) != 4 {
		t.Errorf("platformCode enum = %+v", code)
	}
	if len(s.Items.Required) != 5 {
		t.Errorf("required = %v, want 5 fields", s.Items.Required)
	}
}
