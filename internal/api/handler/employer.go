package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agore-ui/hh-parser-service/internal/domain"
	"github.com/agore-ui/hh-parser-service/internal/repository"
)

// EmployerHandler handles employer endpoints.
type EmployerHandler struct {
	employers *repository.EmployerRepository
	vacancies *repository.VacancyRepository
}

// NewEmployerHandler creates a new employer handler.
func NewEmployerHandler(employers *repository.EmployerRepository, vacancies *repository.VacancyRepository) *EmployerHandler {
	return &EmployerHandler{
		employers: employers,
		vacancies: vacancies,
	}
}

// List handles GET /api/v1/employers.
func (h *EmployerHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 || limit > 1000 {
		limit = 100
	}

	employers, err := h.employers.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list employers: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": employers, "count": len(employers)})
}

// Get handles GET /api/v1/employers/:id.
func (h *EmployerHandler) Get(c *gin.Context) {
	employer, err := h.employers.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Employer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, employer)
}

// Vacancies handles GET /api/v1/employers/:id/vacancies.
func (h *EmployerHandler) Vacancies(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.employers.GetByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Employer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 || limit > 1000 {
		limit = 100
	}

	vacancies, err := h.vacancies.List(c.Request.Context(), repository.VacancyFilter{EmployerID: id}, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": vacancies, "count": len(vacancies)})
}

// Delete handles DELETE /api/v1/employers/:id. Owned vacancies cascade.
func (h *EmployerHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.employers.GetByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Employer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := h.employers.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// EmployerCreateRequest is the request body for manually adding an employer.
type EmployerCreateRequest struct {
	HHID        string `json:"hh_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	URL         string `json:"url"`
	Description string `json:"description"`
	SiteURL     string `json:"site_url"`
}

// Create handles POST /api/v1/employers. Manual entries share the hh_id
// namespace with swept ones, so later sweeps refresh their names in place.
func (h *EmployerHandler) Create(c *gin.Context) {
	var req EmployerCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.employers.GetByHHID(ctx, req.HHID); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Employer with this hh_id already exists"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	employer := &domain.Employer{
		ID:          uuid.New().String(),
		HHID:        req.HHID,
		Name:        req.Name,
		URL:         req.URL,
		Description: req.Description,
		SiteURL:     req.SiteURL,
	}
	if err := h.employers.Create(ctx, employer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create employer: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, employer)
}

// EmployerUpdateRequest is the partial-update body. Absent fields are left
// untouched.
type EmployerUpdateRequest struct {
	Name        *string `json:"name"`
	URL         *string `json:"url"`
	Description *string `json:"description"`
	SiteURL     *string `json:"site_url"`
}

// Update handles PATCH /api/v1/employers/:id.
func (h *EmployerHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	employer, err := h.employers.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Employer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var req EmployerUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if req.Name != nil {
		employer.Name = *req.Name
	}
	if req.URL != nil {
		employer.URL = *req.URL
	}
	if req.Description != nil {
		employer.Description = *req.Description
	}
	if req.SiteURL != nil {
		employer.SiteURL = *req.SiteURL
	}

	if err := h.employers.Update(ctx, employer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update employer: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, employer)
}
