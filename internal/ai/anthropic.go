package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicModel is the default Claude model for listing generation.
const AnthropicModel = "claude-haiku-4-5-20251001"

// AnthropicProvider implements ListingProvider using Claude with a forced
// tool call whose input schema is the listing array.
type AnthropicProvider struct {
	client anthropic.Client
	model  anthropic.Model
	codes  []string
}

// NewAnthropicProvider creates a Claude-backed provider. An empty model
// selects AnthropicModel.
func NewAnthropicProvider(apiKey, model string, timeout time.Duration, codes []string) *AnthropicProvider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	if model == "" {
		model = AnthropicModel
	}
	return &AnthropicProvider{
		client: anthropic.NewClient(opts...),
		model:  anthropic.Model(model),
		codes:  codes,
	}
}

// Name returns the provider identifier.
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// listingsTool builds the tool definition whose input is {"listings": [...]}.
func (p *AnthropicProvider) listingsTool() anthropic.ToolUnionParam {
	schema := listingObjectSchema(p.codes)
	return anthropic.ToolUnionParam{
		OfTool: &anthropic.ToolParam{
			Name:        listingsToolName,
			Description: anthropic.String("Report the synthesized product listings."),
			InputSchema: anthropic.ToolInputSchemaParam{
				Type:       "object",
				Properties: schema["properties"],
				Required:   []string{"listings"},
			},
		},
	}
}

// GenerateListings makes one Messages call and returns the tool input's
// listings array as text.
func (p *AnthropicProvider) GenerateListings(ctx context.Context, req ListingRequest) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserPrompt)),
		},
		Tools: []anthropic.ToolUnionParam{p.listingsTool()},
		ToolChoice: anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{
				Name: listingsToolName,
			},
		},
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: req.SystemPrompt},
		}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude API error: %w", err)
	}

	for _, block := range resp.Content {
		if block.Type == "tool_use" {
			return unwrapListings(block.Input), nil
		}
	}
	return "", errors.New("no tool_use block found in Claude response")
}
