package ai

import (
	"context"
	"encoding/json"
)

// ListingProvider asks a generative model for synthetic product listings.
// Implementations return the model's raw JSON array text; validation is
// left to QueryClient.
type ListingProvider interface {
	Name() string
	GenerateListings(ctx context.Context, req ListingRequest) (string, error)
}

// ListingRequest holds the rendered prompts for one listing call.
type ListingRequest struct {
	SystemPrompt string
	UserPrompt   string
	Count        int
}

// listingsToolName is the tool/schema name used by providers that need the
// array wrapped in an object.
const listingsToolName = "report_listings"

// listingItemSchema is the JSON schema of one listing. Providers translate
// it into their own schema types.
func listingItemSchema(codes []string) map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"id":           map[string]interface{}{"type": "integer"},
			"name":         map[string]interface{}{"type": "string", "description": "Specific product name, brand or model preferred"},
			"keyword":      map[string]interface{}{"type": "string"},
			"price":        map[string]interface{}{"type": "integer", "description": "Price in whole TWD"},
			"platform":     map[string]interface{}{"type": "string"},
			"platformCode": map[string]interface{}{"type": "string", "enum": codes},
			"url":          map[string]interface{}{"type": "string", "description": "Leave empty"},
		},
		"required": []string{"id", "name", "price", "platform", "platformCode"},
	}
}

// listingArraySchema is the schema of the whole response.
func listingArraySchema(codes []string) map[string]interface{} {
	return map[string]interface{}{
		"type":  "array",
		"items": listingItemSchema(codes),
	}
}

// listingObjectSchema wraps the array for APIs whose structured output must
// be an object.
func listingObjectSchema(codes []string) map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"listings": listingArraySchema(codes),
		},
		"required": []string{"listings"},
	}
}

// unwrapListings returns the "listings" member of an object payload as text.
// Payloads without that member are returned unchanged so schema validation
// reports them.
func unwrapListings(raw []byte) string {
	var wrapper struct {
		Listings json.RawMessage `json:"listings"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil || len(wrapper.Listings) == 0 {
		return string(raw)
	}
	return string(wrapper.Listings)
}
