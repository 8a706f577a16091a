package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIModel is the default OpenAI model for listing generation.
const OpenAIModel = openai.GPT4oMini

// OpenAIProvider implements ListingProvider using chat completions with a
// JSON schema response format.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	codes  []string
}

// NewOpenAIProvider creates an OpenAI-backed provider. An empty model
// selects OpenAIModel.
func NewOpenAIProvider(apiKey, model string, timeout time.Duration, codes []string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	if model == "" {
		model = OpenAIModel
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		codes:  codes,
	}
}

// Name returns the provider identifier.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// GenerateListings makes one chat completion call and returns the listings
// array as text.
func (p *OpenAIProvider) GenerateListings(ctx context.Context, req ListingRequest) (string, error) {
	schema, err := json.Marshal(listingObjectSchema(p.codes))
	if err != nil {
		return "", fmt.Errorf("failed to marshal listing schema: %w", err)
	}

	var messages []openai.ChatCompletionMessage
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: messages,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   listingsToolName,
				Schema: json.RawMessage(schema),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", nil
	}
	return unwrapListings([]byte(content)), nil
}
