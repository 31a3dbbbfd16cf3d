package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/agore-ui/hh-parser-service/internal/domain"
	"github.com/agore-ui/hh-parser-service/internal/repository"
	"github.com/agore-ui/hh-parser-service/internal/service"
)

// ParserHandler exposes the ingestion pipeline: triggering sweeps and
// inspecting parse runs.
type ParserHandler struct {
	sweeps *service.SweepService
	runs   *repository.RunRepository
}

// NewParserHandler creates a new parser handler.
func NewParserHandler(sweeps *service.SweepService, runs *repository.RunRepository) *ParserHandler {
	return &ParserHandler{
		sweeps: sweeps,
		runs:   runs,
	}
}

// ParseRequest is the request body for triggering a sweep.
type ParseRequest struct {
	Keywords []string `json:"keywords" binding:"required,min=1"`
	Regions  []int    `json:"regions"`
}

// Parse handles POST /api/v1/parse. The sweep runs synchronously and always
// returns a stats object; item-level failures only show up in the counters.
func (h *ParserHandler) Parse(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	stats, err := h.sweeps.RunSweep(c.Request.Context(), req.Keywords, req.Regions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Parsing failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "completed",
		"stats":  stats,
	})
}

// ListRuns handles GET /api/v1/runs.
func (h *ParserHandler) ListRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 500 {
		limit = 50
	}
	status := domain.RunStatus(c.Query("status"))

	runs, err := h.runs.List(c.Request.Context(), status, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": runs, "count": len(runs)})
}

// GetRun handles GET /api/v1/runs/:id.
func (h *ParserHandler) GetRun(c *gin.Context) {
	run, err := h.runs.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, run)
}

// GetRunLogs handles GET /api/v1/runs/:id/logs.
func (h *ParserHandler) GetRunLogs(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.runs.GetByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	logs, err := h.runs.GetLogs(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": logs, "count": len(logs)})
}
