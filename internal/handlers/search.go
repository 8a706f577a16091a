package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/shopcompare-api/internal/logger"
	"github.com/windoze95/shopcompare-api/internal/service"
	"go.uber.org/zap"
)

// SearchHandler handles product search requests.
type SearchHandler struct {
	Service *service.SearchService
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{Service: searchService}
}

// Search handles GET /v1/search?q=...&ai=true
func (h *SearchHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if err := validateQuery(query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	aiMode, err := parseAIParam(c.Query("ai"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := h.Service.Search(c.Request.Context(), query, aiMode)
	if result.ErrorMessage != "" {
		logger.FromContext(c).Info("search served from fallback", zap.String("query", result.Term))
	}

	c.JSON(http.StatusOK, result)
}

// SearchHistoryEntry handles POST /v1/history/:index/search?ai=true
func (h *SearchHandler) SearchHistoryEntry(c *gin.Context) {
	index, err := parseIndexParam(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid history index"})
		return
	}

	aiMode, err := parseAIParam(c.Query("ai"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Service.SearchHistoryEntry(c.Request.Context(), index, aiMode)
	if errors.Is(err, service.ErrHistoryIndex) {
		c.JSON(http.StatusNotFound, gin.H{"error": "History entry not found"})
		return
	}
	if err != nil {
		logger.FromContext(c).Error("failed to search history entry", zap.Int("index", index), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search history entry"})
		return
	}

	c.JSON(http.StatusOK, result)
}
