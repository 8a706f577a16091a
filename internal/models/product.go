package models

// PlatformCode is the one-letter marketplace identifier carried by a Product.
type PlatformCode string

const (
	PlatformMomo    PlatformCode = "M"
	PlatformPChome  PlatformCode = "P"
	PlatformShopee  PlatformCode = "S"
	PlatformCoupang PlatformCode = "C"
	PlatformOther   PlatformCode = "O"
)

// Product is a single listing shown to the user. URL is always derived from
// PlatformCode and Name by the platform URL builder, never taken from input.
type Product struct {
	ID           int          `json:"id" yaml:"id"`
	Name         string       `json:"name" yaml:"name"`
	Keyword      string       `json:"keyword" yaml:"keyword"`
	Price        int          `json:"price" yaml:"price"`
	Platform     string       `json:"platform" yaml:"platform"`
	PlatformCode PlatformCode `json:"platformCode" yaml:"platform_code"`
	URL          string       `json:"url" yaml:"-"`
}

// ResultSource tells where the items of a SearchResult came from.
type ResultSource string

const (
	SourceAI    ResultSource = "ai"
	SourceLocal ResultSource = "local"
)

// SearchResult is the output of one search.
type SearchResult struct {
	Term         string       `json:"term"`
	Items        []Product    `json:"items"`
	ErrorMessage string       `json:"errorMessage,omitempty"`
	Source       ResultSource `json:"source,omitempty"`
	AIMode       bool         `json:"aiMode"`
}

// Searched reports whether the result came from an actual search rather
// than an empty-query reset.
func (r SearchResult) Searched() bool {
	return r.Term != ""
}
