package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiModel is the default Gemini model for listing generation.
const GeminiModel = "gemini-2.5-flash"

// GeminiProvider implements ListingProvider using the Google AI API in JSON
// mode with a response schema.
type GeminiProvider struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	codes   []string
}

// NewGeminiProvider creates a Gemini-backed provider. An empty model selects
// GeminiModel.
func NewGeminiProvider(ctx context.Context, apiKey, model string, timeout time.Duration, codes []string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = GeminiModel
	}
	return &GeminiProvider{
		client:  client,
		model:   model,
		timeout: timeout,
		codes:   codes,
	}, nil
}

// Name returns the provider identifier.
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// GenerateListings makes a single GenerateContent call and returns the text
// of the first candidate.
func (p *GeminiProvider) GenerateListings(ctx context.Context, req ListingRequest) (string, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	model := p.client.GenerativeModel(p.model)
	if req.SystemPrompt != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.SystemPrompt)},
		}
	}
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = convertSchemaToGemini(listingArraySchema(p.codes))

	resp, err := model.GenerateContent(ctx, genai.Text(req.UserPrompt))
	if err != nil {
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}

	return responseText(resp), nil
}

// Close releases the Gemini client resources.
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text += string(t)
		}
	}
	return text
}

// convertSchemaToGemini converts a JSON Schema map to a Gemini Schema.
func convertSchemaToGemini(params map[string]interface{}) *genai.Schema {
	if params == nil {
		return nil
	}

	schema := &genai.Schema{}

	if t, ok := params["type"].(string); ok {
		switch t {
		case "object":
			schema.Type = genai.TypeObject
		case "array":
			schema.Type = genai.TypeArray
		case "string":
			schema.Type = genai.TypeString
		case "number":
			schema.Type = genai.TypeNumber
		case "integer":
			schema.Type = genai.TypeInteger
		case "boolean":
			schema.Type = genai.TypeBoolean
		}
	}

	if desc, ok := params["description"].(string); ok {
		schema.Description = desc
	}

	if enum, ok := params["enum"].([]string); ok {
		schema.Enum = enum
	}

	if props, ok := params["properties"].(map[string]interface{}); ok {
		schema.Properties = make(map[string]*genai.Schema, len(props))
		for name, prop := range props {
			if propMap, ok := prop.(map[string]interface{}); ok {
				schema.Properties[name] = convertSchemaToGemini(propMap)
			}
		}
	}

	if required, ok := params["required"].([]string); ok {
		schema.Required = required
	}

	if items, ok := params["items"].(map[string]interface{}); ok {
		schema.Items = convertSchemaToGemini(items)
	}

	return schema
}
