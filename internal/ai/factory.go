package ai

import (
	"context"
	"fmt"

	"github.com/windoze95/shopcompare-api/internal/config"
	"github.com/windoze95/shopcompare-api/internal/platform"
)

// NewListingProvider creates a listing provider from configuration.
// If vars.Provider is non-empty it names the provider to use (gemini,
// anthropic, openai). Otherwise the first configured key wins:
//   - AI_API_KEY, API_KEY, GOOGLE_API_KEY or GEMINI_API_KEY -> Gemini
//   - ANTHROPIC_API_KEY -> Anthropic
//   - OPENAI_API_KEY -> OpenAI
//
// A nil provider with a nil error means no credential is configured and AI
// search is unavailable.
func NewListingProvider(ctx context.Context, vars config.AIVars) (ListingProvider, error) {
	codes := platform.Codes()
	generic := firstNonEmpty(vars.APIKey, vars.LegacyAPIKey)

	switch vars.Provider {
	case "gemini":
		key := firstNonEmpty(generic, vars.GoogleAPIKey, vars.GeminiAPIKey)
		if key == "" {
			return nil, nil
		}
		return newGemini(ctx, key, vars, codes)

	case "anthropic":
		key := firstNonEmpty(generic, vars.AnthropicAPIKey)
		if key == "" {
			return nil, nil
		}
		return NewAnthropicProvider(key, vars.Model, vars.Timeout, codes), nil

	case "openai":
		key := firstNonEmpty(generic, vars.OpenAIAPIKey)
		if key == "" {
			return nil, nil
		}
		return NewOpenAIProvider(key, vars.Model, vars.Timeout, codes), nil

	case "":
		if key := firstNonEmpty(generic, vars.GoogleAPIKey, vars.GeminiAPIKey); key != "" {
			return newGemini(ctx, key, vars, codes)
		}
		if vars.AnthropicAPIKey != "" {
			return NewAnthropicProvider(vars.AnthropicAPIKey, vars.Model, vars.Timeout, codes), nil
		}
		if vars.OpenAIAPIKey != "" {
			return NewOpenAIProvider(vars.OpenAIAPIKey, vars.Model, vars.Timeout, codes), nil
		}
		return nil, nil

	default:
		return nil, fmt.Errorf("invalid AI provider %q: must be gemini, anthropic, or openai", vars.Provider)
	}
}

// ValidProviders returns the list of valid provider names.
func ValidProviders() []string {
	return []string{"gemini", "anthropic", "openai"}
}

// newGemini keeps a failed constructor from leaking a typed nil provider.
func newGemini(ctx context.Context, key string, vars config.AIVars, codes []string) (ListingProvider, error) {
	p, err := NewGeminiProvider(ctx, key, vars.Model, vars.Timeout, codes)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
