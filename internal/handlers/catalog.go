package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/shopcompare-api/internal/catalog"
	"github.com/windoze95/shopcompare-api/internal/models"
	"github.com/windoze95/shopcompare-api/internal/platform"
)

// CatalogHandler serves the static reference data.
type CatalogHandler struct {
	products []models.Product
}

// NewCatalogHandler creates a CatalogHandler over products.
func NewCatalogHandler(products []models.Product) *CatalogHandler {
	sorted := make([]models.Product, len(products))
	copy(sorted, products)
	catalog.SortByPrice(sorted)
	return &CatalogHandler{products: sorted}
}

// ListPlatforms handles GET /v1/platforms
func (h *CatalogHandler) ListPlatforms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"platforms": platform.All()})
}

// ListCatalog handles GET /v1/catalog
func (h *CatalogHandler) ListCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"products": h.products})
}
