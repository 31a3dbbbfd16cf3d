package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agore-ui/hh-parser-service/internal/domain"
	"github.com/agore-ui/hh-parser-service/internal/repository"
)

// VacancyHandler handles vacancy CRUD/query endpoints.
type VacancyHandler struct {
	vacancies *repository.VacancyRepository
	versions  *repository.VersionRepository
	employers *repository.EmployerRepository
}

// NewVacancyHandler creates a new vacancy handler.
// Parameters:
//   - vacancies: vacancy repository.
//   - versions: version repository for history lookups.
//   - employers: employer repository for ownership checks on manual writes.
// Returns:
//   - *VacancyHandler: initialized handler.
func NewVacancyHandler(
	vacancies *repository.VacancyRepository,
	versions *repository.VersionRepository,
	employers *repository.EmployerRepository,
) *VacancyHandler {
	return &VacancyHandler{
		vacancies: vacancies,
		versions:  versions,
		employers: employers,
	}
}

// List handles GET /api/v1/vacancies.
func (h *VacancyHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 || limit > 1000 {
		limit = 100
	}

	filter := repository.VacancyFilter{
		Status:     domain.VacancyStatus(c.Query("status")),
		Region:     c.Query("region"),
		EmployerID: c.Query("employer_id"),
		HHID:       c.Query("hh_id"),
	}

	vacancies, err := h.vacancies.List(c.Request.Context(), filter, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list vacancies: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": vacancies, "count": len(vacancies)})
}

// Get handles GET /api/v1/vacancies/:id.
func (h *VacancyHandler) Get(c *gin.Context) {
	vacancy, err := h.vacancies.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vacancy not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, vacancy)
}

// GetByHHID handles GET /api/v1/vacancies/hh/:hh_id.
func (h *VacancyHandler) GetByHHID(c *gin.Context) {
	vacancy, err := h.vacancies.GetByHHID(c.Request.Context(), c.Param("hh_id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vacancy not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, vacancy)
}

// History handles GET /api/v1/vacancies/:id/history.
func (h *VacancyHandler) History(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.vacancies.GetByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vacancy not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	versions, err := h.versions.ListByVacancy(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": versions, "count": len(versions)})
}

// Delete handles DELETE /api/v1/vacancies/:id.
func (h *VacancyHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.vacancies.GetByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vacancy not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := h.vacancies.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// Search handles GET /api/v1/vacancies/search. Keywords match against stored
// titles and descriptions; salary bounds and experience narrow the result.
func (h *VacancyHandler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 || limit > 1000 {
		limit = 100
	}

	query := repository.SearchQuery{
		Keywords:   splitCSV(c.Query("q")),
		Experience: c.Query("experience"),
	}
	if raw := c.Query("min_salary"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid min_salary: " + raw})
			return
		}
		query.MinSalary = &v
	}
	if raw := c.Query("max_salary"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid max_salary: " + raw})
			return
		}
		query.MaxSalary = &v
	}

	vacancies, err := h.vacancies.Search(c.Request.Context(), query, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search vacancies: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": vacancies, "count": len(vacancies)})
}

// VacancyCreateRequest is the request body for manually adding a vacancy.
type VacancyCreateRequest struct {
	HHID           string   `json:"hh_id" binding:"required"`
	EmployerID     string   `json:"employer_id" binding:"required"`
	Title          string   `json:"title" binding:"required"`
	Description    string   `json:"description"`
	KeySkills      []string `json:"key_skills"`
	Experience     string   `json:"experience"`
	Employment     string   `json:"employment"`
	Schedule       string   `json:"schedule"`
	SalaryFrom     *int     `json:"salary_from"`
	SalaryTo       *int     `json:"salary_to"`
	SalaryCurrency *string  `json:"salary_currency"`
	SalaryGross    *bool    `json:"salary_gross"`
	Region         string   `json:"region"`
	City           string   `json:"city"`
	Address        string   `json:"address"`
	URL            string   `json:"url"`
}

// Create handles POST /api/v1/vacancies. Manual entries share the hh_id
// namespace with swept ones, so later sweeps update them in place.
func (h *VacancyHandler) Create(c *gin.Context) {
	var req VacancyCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.employers.GetByID(ctx, req.EmployerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown employer: " + req.EmployerID})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if _, err := h.vacancies.GetByHHID(ctx, req.HHID); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Vacancy with this hh_id already exists"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	vacancy := &domain.Vacancy{
		ID:             uuid.New().String(),
		HHID:           req.HHID,
		EmployerID:     req.EmployerID,
		Title:          req.Title,
		Description:    req.Description,
		KeySkills:      domain.StringArray(req.KeySkills),
		Experience:     req.Experience,
		Employment:     req.Employment,
		Schedule:       req.Schedule,
		SalaryFrom:     req.SalaryFrom,
		SalaryTo:       req.SalaryTo,
		SalaryCurrency: req.SalaryCurrency,
		SalaryGross:    req.SalaryGross,
		Region:         req.Region,
		City:           req.City,
		Address:        req.Address,
		URL:            req.URL,
		Status:         domain.VacancyStatusActive,
	}
	if err := h.vacancies.Create(ctx, vacancy); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create vacancy: " + err.Error()})
		return
	}
	if err := h.versions.Append(ctx, snapshotVersion(vacancy, domain.ChangeTypeCreated, nil)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record version: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, vacancy)
}

// VacancyUpdateRequest is the partial-update body. Absent fields are left
// untouched.
type VacancyUpdateRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	KeySkills   []string `json:"key_skills"`
	Experience  *string  `json:"experience"`
	Employment  *string  `json:"employment"`
	Schedule    *string  `json:"schedule"`
	SalaryFrom  *int     `json:"salary_from"`
	SalaryTo    *int     `json:"salary_to"`
	Region      *string  `json:"region"`
	City        *string  `json:"city"`
	Address     *string  `json:"address"`
	Status      *string  `json:"status"`
}

// Update handles PATCH /api/v1/vacancies/:id. Field changes land in the
// version history the same way sweep-driven changes do.
func (h *VacancyHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	vacancy, err := h.vacancies.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vacancy not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var req VacancyUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if req.Status != nil {
		switch domain.VacancyStatus(*req.Status) {
		case domain.VacancyStatusActive, domain.VacancyStatusClosed, domain.VacancyStatusArchived:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status: " + *req.Status})
			return
		}
	}

	var changed []string
	setStr := func(field string, dst *string, src *string) {
		if src != nil && *dst != *src {
			*dst = *src
			changed = append(changed, field)
		}
	}
	setStr("title", &vacancy.Title, req.Title)
	setStr("description", &vacancy.Description, req.Description)
	if req.KeySkills != nil {
		vacancy.KeySkills = domain.StringArray(req.KeySkills)
		changed = append(changed, "key_skills")
	}
	setStr("experience", &vacancy.Experience, req.Experience)
	setStr("employment", &vacancy.Employment, req.Employment)
	setStr("schedule", &vacancy.Schedule, req.Schedule)
	if req.SalaryFrom != nil {
		vacancy.SalaryFrom = req.SalaryFrom
		changed = append(changed, "salary_from")
	}
	if req.SalaryTo != nil {
		vacancy.SalaryTo = req.SalaryTo
		changed = append(changed, "salary_to")
	}
	setStr("region", &vacancy.Region, req.Region)
	setStr("city", &vacancy.City, req.City)
	setStr("address", &vacancy.Address, req.Address)

	changeType := domain.ChangeTypeUpdated
	if req.Status != nil && domain.VacancyStatus(*req.Status) != vacancy.Status {
		vacancy.Status = domain.VacancyStatus(*req.Status)
		changed = append(changed, "status")
		if vacancy.Status == domain.VacancyStatusClosed {
			changeType = domain.ChangeTypeClosed
		}
	}

	if len(changed) == 0 {
		c.JSON(http.StatusOK, vacancy)
		return
	}

	if err := h.vacancies.Update(ctx, vacancy); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update vacancy: " + err.Error()})
		return
	}
	if err := h.versions.Append(ctx, snapshotVersion(vacancy, changeType, changed)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record version: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, vacancy)
}

// snapshotVersion captures the post-change state of a vacancy.
func snapshotVersion(v *domain.Vacancy, changeType domain.ChangeType, changedFields []string) *domain.VacancyVersion {
	if changedFields == nil {
		changedFields = []string{}
	}
	return &domain.VacancyVersion{
		ID:            uuid.New().String(),
		VacancyID:     v.ID,
		Title:         v.Title,
		Description:   v.Description,
		KeySkills:     v.KeySkills,
		SalaryFrom:    v.SalaryFrom,
		SalaryTo:      v.SalaryTo,
		Status:        v.Status,
		ChangeType:    changeType,
		ChangedFields: domain.StringArray(changedFields),
	}
}

// splitCSV splits a comma-separated query value, dropping empty parts.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
