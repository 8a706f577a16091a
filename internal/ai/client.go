package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	goaway "github.com/TwiN/go-away"
	"github.com/go-playground/validator/v10"
	"github.com/windoze95/shopcompare-api/internal/catalog"
	"github.com/windoze95/shopcompare-api/internal/config"
	"github.com/windoze95/shopcompare-api/internal/logger"
	"github.com/windoze95/shopcompare-api/internal/models"
	"github.com/windoze95/shopcompare-api/internal/platform"
	"go.uber.org/zap"
)

const (
	// DefaultListingCount is how many listings the model is asked for; two
	// per marketplace.
	DefaultListingCount = 8
	defaultCurrency     = "新台幣 (TWD)"
)

// QueryClient turns a search query into validated, URL-resolved products
// using a ListingProvider. A QueryClient without a provider is unavailable.
type QueryClient struct {
	provider  ListingProvider
	prompts   *config.Prompts
	validate  *validator.Validate
	profanity *goaway.ProfanityDetector
	count     int
}

// NewQueryClient creates a QueryClient. provider may be nil, in which case
// every fetch fails with ErrUnavailable.
func NewQueryClient(provider ListingProvider, prompts *config.Prompts) *QueryClient {
	if prompts == nil {
		prompts = config.DefaultPrompts()
	}
	return &QueryClient{
		provider:  provider,
		prompts:   prompts,
		validate:  validator.New(),
		profanity: goaway.NewProfanityDetector().WithSanitizeLeetSpeak(true).WithSanitizeSpecialCharacters(true).WithSanitizeAccents(false),
		count:     DefaultListingCount,
	}
}

// Available reports whether a provider is configured.
func (c *QueryClient) Available() bool {
	return c != nil && c.provider != nil
}

// ProviderName returns the configured provider's name, or "" if none.
func (c *QueryClient) ProviderName() string {
	if !c.Available() {
		return ""
	}
	return c.provider.Name()
}

// FetchListings asks the model for listings matching query and returns them
// sorted by ascending price. It makes exactly one remote call and never
// retries. Errors are always *Error.
func (c *QueryClient) FetchListings(ctx context.Context, query string) ([]models.Product, error) {
	if !c.Available() {
		return nil, &Error{Kind: KindUnavailable, Op: "fetch listings", Err: errors.New("no AI credential configured")}
	}

	req, err := c.buildRequest(query)
	if err != nil {
		return nil, requestError("build prompt", err)
	}

	text, err := c.provider.GenerateListings(ctx, req)
	if err != nil {
		return nil, requestError(c.provider.Name(), err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, requestError(c.provider.Name(), errors.New("AI returned no data"))
	}

	return c.parseListings(text, query)
}

func (c *QueryClient) buildRequest(query string) (ListingRequest, error) {
	data := map[string]interface{}{
		"Query":    query,
		"Count":    c.count,
		"Currency": defaultCurrency,
	}

	userPrompt, err := config.RenderPrompt(c.prompts.Listings.User, data)
	if err != nil {
		return ListingRequest{}, fmt.Errorf("render user prompt: %w", err)
	}
	sysPrompt, err := config.RenderPrompt(c.prompts.Listings.System, data)
	if err != nil {
		return ListingRequest{}, fmt.Errorf("render system prompt: %w", err)
	}

	return ListingRequest{
		SystemPrompt: sysPrompt,
		UserPrompt:   userPrompt,
		Count:        c.count,
	}, nil
}

// listing holds one payload element after type extraction, before it
// becomes a Product.
type listing struct {
	ID           int    `validate:"gte=0"`
	Name         string `validate:"required"`
	Keyword      string
	Price        int    `validate:"gte=0"`
	Platform     string `validate:"required"`
	PlatformCode string `validate:"required,oneof=M P S C"`
}

// parseListings treats the payload as an untyped tree and checks each
// element field by field. One bad element rejects the whole payload.
func (c *QueryClient) parseListings(text, query string) ([]models.Product, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(stripCodeFence(text))))
	dec.UseNumber()

	var tree interface{}
	if err := dec.Decode(&tree); err != nil {
		return nil, schemaError("invalid JSON: %w", err)
	}

	items, ok := tree.([]interface{})
	if !ok {
		return nil, schemaError("payload is %T, want array", tree)
	}

	products := make([]models.Product, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, schemaError("element %d is %T, want object", i, item)
		}

		l, err := extractListing(obj)
		if err != nil {
			return nil, schemaError("element %d: %w", i, err)
		}
		if err := c.validate.Struct(l); err != nil {
			return nil, schemaError("element %d: %w", i, err)
		}
		if l.Keyword == "" {
			l.Keyword = query
		}

		code := models.PlatformCode(l.PlatformCode)
		products = append(products, models.Product{
			ID:           l.ID,
			Name:         l.Name,
			Keyword:      l.Keyword,
			Price:        l.Price,
			Platform:     l.Platform,
			PlatformCode: code,
			URL:          platform.BuildSearchURL(code, l.Name),
		})
	}

	catalog.SortByPrice(products)
	c.flagListings(query, products)
	return products, nil
}

// flagListings logs listing names the content filter trips on and returns
// them. Flagged listings are still returned to the caller.
func (c *QueryClient) flagListings(query string, products []models.Product) []string {
	var flagged []string
	for _, p := range products {
		if c.profanity.IsProfane(p.Name) {
			flagged = append(flagged, p.Name)
		}
	}
	if len(flagged) > 0 {
		logger.Get().Warn("AI listings flagged by content filter",
			zap.String("query", query),
			zap.Strings("names", flagged),
		)
	}
	return flagged
}

func extractListing(obj map[string]interface{}) (listing, error) {
	var l listing
	var err error

	if l.ID, err = requiredInt(obj, "id"); err != nil {
		return l, err
	}
	if l.Name, err = requiredString(obj, "name"); err != nil {
		return l, err
	}
	if l.Keyword, err = optionalString(obj, "keyword"); err != nil {
		return l, err
	}
	if l.Price, err = requiredInt(obj, "price"); err != nil {
		return l, err
	}
	if l.Platform, err = requiredString(obj, "platform"); err != nil {
		return l, err
	}
	if l.PlatformCode, err = requiredString(obj, "platformCode"); err != nil {
		return l, err
	}
	return l, nil
}

func requiredInt(obj map[string]interface{}, key string) (int, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("missing required field %q", key)
	}
	n, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("field %q is %T, want integer", key, v)
	}
	if i, err := n.Int64(); err == nil {
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("field %q is %s, want integer", key, n)
	}
	if f < math.MinInt || f >= math.MaxInt {
		return 0, fmt.Errorf("field %q is %s, out of integer range", key, n)
	}
	return int(f), nil
}

func requiredString(obj map[string]interface{}, key string) (string, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return "", fmt.Errorf("missing required field %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q is %T, want string", key, v)
	}
	return s, nil
}

func optionalString(obj map[string]interface{}, key string) (string, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q is %T, want string", key, v)
	}
	return s, nil
}

// stripCodeFence removes a surrounding ```json fence some models add even
// in JSON mode.
func stripCodeFence(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	t = strings.TrimPrefix(t, "json")
	t = strings.TrimSuffix(t, "```")
	return strings.TrimSpace(t)
}
