package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agore-ui/hh-parser-service/internal/domain"
	"github.com/agore-ui/hh-parser-service/internal/repository"
)

// FilterHandler handles search filter CRUD endpoints.
type FilterHandler struct {
	filters *repository.FilterRepository
}

// NewFilterHandler creates a new filter handler.
func NewFilterHandler(filters *repository.FilterRepository) *FilterHandler {
	return &FilterHandler{filters: filters}
}

// FilterRequest is the create/update request body for a search filter.
type FilterRequest struct {
	Name            string   `json:"name" binding:"required"`
	Description     string   `json:"description"`
	Keywords        []string `json:"keywords" binding:"required,min=1"`
	Regions         []int    `json:"regions"`
	Enabled         *bool    `json:"enabled"`
	IntervalSeconds int      `json:"interval_seconds"`
}

// List handles GET /api/v1/filters.
func (h *FilterHandler) List(c *gin.Context) {
	enabledOnly := c.Query("enabled") == "true"

	filters, err := h.filters.List(c.Request.Context(), enabledOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": filters, "count": len(filters)})
}

// Get handles GET /api/v1/filters/:id.
func (h *FilterHandler) Get(c *gin.Context) {
	filter, err := h.filters.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Filter not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, filter)
}

// Create handles POST /api/v1/filters.
func (h *FilterHandler) Create(c *gin.Context) {
	var req FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	interval := req.IntervalSeconds
	if interval <= 0 {
		interval = 3600
	}

	filter := &domain.SearchFilter{
		ID:              uuid.New().String(),
		Name:            req.Name,
		Description:     req.Description,
		Keywords:        req.Keywords,
		Regions:         req.Regions,
		Enabled:         enabled,
		IntervalSeconds: interval,
	}
	if err := h.filters.Create(c.Request.Context(), filter); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create filter: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, filter)
}

// Update handles PATCH /api/v1/filters/:id.
func (h *FilterHandler) Update(c *gin.Context) {
	filter, err := h.filters.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Filter not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var req FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	filter.Name = req.Name
	filter.Description = req.Description
	filter.Keywords = req.Keywords
	filter.Regions = req.Regions
	if req.Enabled != nil {
		filter.Enabled = *req.Enabled
	}
	if req.IntervalSeconds > 0 {
		filter.IntervalSeconds = req.IntervalSeconds
	}

	if err := h.filters.Update(c.Request.Context(), filter); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update filter: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, filter)
}

// Delete handles DELETE /api/v1/filters/:id.
func (h *FilterHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.filters.GetByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Filter not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := h.filters.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
