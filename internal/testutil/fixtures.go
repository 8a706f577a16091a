package testutil

import (
	"github.com/windoze95/shopcompare-api/internal/models"
	"github.com/windoze95/shopcompare-api/internal/platform"
)

// TestAIProducts returns two AI-style listings, sorted by price, with URLs
// resolved.
func TestAIProducts() []models.Product {
	products := []models.Product{
		{ID: 1, Name: "Tiger 保溫瓶 500ml", Keyword: "水壺", Price: 520, Platform: "蝦皮", PlatformCode: models.PlatformShopee},
		{ID: 2, Name: "Thermos 不鏽鋼水壺", Keyword: "水壺", Price: 890, Platform: "momo", PlatformCode: models.PlatformMomo},
	}
	for i := range products {
		products[i].URL = platform.BuildSearchURL(products[i].PlatformCode, products[i].Name)
	}
	return products
}

// TestListingsJSON is a well-formed listing payload as a provider would
// return it.
const TestListingsJSON = `[
  {"id": 2, "name": "Thermos 不鏽鋼水壺", "keyword": "水壺", "price": 890, "platform": "momo", "platformCode": "M", "url": ""},
  {"id": 1, "name": "Tiger 保溫瓶 500ml", "keyword": "水壺", "price": 520, "platform": "蝦皮", "platformCode": "S", "url": ""}
]`
