// Package catalog holds the built-in sample products and the local matcher
// used when AI search is off or fails.
package catalog

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/windoze95/shopcompare-api/internal/models"
	"github.com/windoze95/shopcompare-api/internal/platform"
	"gopkg.in/yaml.v3"
)

var defaultProducts = []models.Product{
	{ID: 1, Name: "不鏽鋼垃圾桶 8L", Keyword: "垃圾桶", Price: 299, Platform: "蝦皮", PlatformCode: models.PlatformShopee},
	{ID: 2, Name: "日系簡約垃圾桶 10L", Keyword: "垃圾桶", Price: 350, Platform: "momo", PlatformCode: models.PlatformMomo},
	{ID: 3, Name: "極簡白色垃圾桶 12L", Keyword: "垃圾桶", Price: 399, Platform: "PChome", PlatformCode: models.PlatformPChome},
	{ID: 4, Name: "韓系風格垃圾桶 9L", Keyword: "垃圾桶", Price: 320, Platform: "酷澎", PlatformCode: models.PlatformCoupang},
	{ID: 5, Name: "智能感應垃圾桶 15L", Keyword: "垃圾桶", Price: 899, Platform: "PChome", PlatformCode: models.PlatformPChome},
	{ID: 6, Name: "大容量保溫瓶 500ml", Keyword: "水壺", Price: 450, Platform: "momo", PlatformCode: models.PlatformMomo},
	{ID: 7, Name: "運動健身大水壺 1L", Keyword: "水壺", Price: 199, Platform: "蝦皮", PlatformCode: models.PlatformShopee},
	{ID: 8, Name: "耐熱玻璃水瓶", Keyword: "水壺", Price: 299, Platform: "酷澎", PlatformCode: models.PlatformCoupang},
}

// Default returns the built-in catalog with search URLs filled in. Each call
// returns a fresh slice.
func Default() []models.Product {
	return withURLs(defaultProducts)
}

// catalogFile is the YAML layout accepted by Load.
type catalogFile struct {
	Products []models.Product `yaml:"products"`
}

// Load reads a catalog from a YAML file. Any url in the file is ignored; URLs
// are rebuilt from platform code and name.
func Load(path string) ([]models.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}

	for i, p := range f.Products {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("catalog product %d: name is required", i)
		}
		if p.Price < 0 {
			return nil, fmt.Errorf("catalog product %q: price must not be negative", p.Name)
		}
	}

	return withURLs(f.Products), nil
}

func withURLs(products []models.Product) []models.Product {
	out := make([]models.Product, len(products))
	for i, p := range products {
		p.URL = platform.BuildSearchURL(p.PlatformCode, p.Name)
		out[i] = p
	}
	return out
}

// Match returns the products whose name or keyword contains query, ignoring
// case, ordered by ascending price. Products with equal prices keep their
// catalog order. An empty query matches nothing.
func Match(products []models.Product, query string) []models.Product {
	q := strings.ToLower(query)
	if q == "" {
		return []models.Product{}
	}

	matched := make([]models.Product, 0)
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Keyword), q) {
			matched = append(matched, p)
		}
	}

	SortByPrice(matched)
	return matched
}

// SortByPrice orders products by ascending price in place, keeping the
// relative order of equal prices.
func SortByPrice(products []models.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].Price < products[j].Price
	})
}
