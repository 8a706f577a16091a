package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/shopcompare-api/internal/service"
)

// HistoryHandler serves the search history.
type HistoryHandler struct {
	History *service.HistoryService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(history *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{History: history}
}

// GetHistory handles GET /v1/history
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"history": h.History.Terms()})
}
