package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agore-ui/hh-parser-service/internal/service"
)

// StatsHandler handles the summary stats endpoint.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Overall handles GET /api/v1/stats.
func (h *StatsHandler) Overall(c *gin.Context) {
	stats, err := h.stats.Overall(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}
