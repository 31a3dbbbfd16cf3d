package api

import (
	"github.com/gin-gonic/gin"

	"github.com/agore-ui/hh-parser-service/internal/api/handler"
	"github.com/agore-ui/hh-parser-service/internal/api/middleware"
	"github.com/agore-ui/hh-parser-service/internal/logger"
	"github.com/agore-ui/hh-parser-service/internal/repository"
	"github.com/agore-ui/hh-parser-service/internal/service"
)

// Deps bundles everything the router needs.
type Deps struct {
	Vacancies *repository.VacancyRepository
	Employers *repository.EmployerRepository
	Versions  *repository.VersionRepository
	Filters   *repository.FilterRepository
	Runs      *repository.RunRepository
	Sweeps    *service.SweepService
	Stats     *service.StatsService
	Logger    *logger.Logger
	CORS      middleware.CORSConfig
}

// SetupRouter configures the Gin router with all routes.
func SetupRouter(deps Deps, mode string) *gin.Engine {
	switch mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.CORS))

	healthHandler := handler.NewHealthHandler()
	vacancyHandler := handler.NewVacancyHandler(deps.Vacancies, deps.Versions, deps.Employers)
	employerHandler := handler.NewEmployerHandler(deps.Employers, deps.Vacancies)
	filterHandler := handler.NewFilterHandler(deps.Filters)
	parserHandler := handler.NewParserHandler(deps.Sweeps, deps.Runs)
	statsHandler := handler.NewStatsHandler(deps.Stats)

	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	{
		// Ingestion
		v1.POST("/parse", parserHandler.Parse)
		v1.GET("/runs", parserHandler.ListRuns)
		v1.GET("/runs/:id", parserHandler.GetRun)
		v1.GET("/runs/:id/logs", parserHandler.GetRunLogs)

		// Vacancies
		v1.GET("/vacancies", vacancyHandler.List)
		v1.GET("/vacancies/search", vacancyHandler.Search)
		v1.POST("/vacancies", vacancyHandler.Create)
		v1.GET("/vacancies/hh/:hh_id", vacancyHandler.GetByHHID)
		v1.GET("/vacancies/:id", vacancyHandler.Get)
		v1.GET("/vacancies/:id/history", vacancyHandler.History)
		v1.PATCH("/vacancies/:id", vacancyHandler.Update)
		v1.DELETE("/vacancies/:id", vacancyHandler.Delete)

		// Employers
		v1.GET("/employers", employerHandler.List)
		v1.POST("/employers", employerHandler.Create)
		v1.GET("/employers/:id", employerHandler.Get)
		v1.GET("/employers/:id/vacancies", employerHandler.Vacancies)
		v1.PATCH("/employers/:id", employerHandler.Update)
		v1.DELETE("/employers/:id", employerHandler.Delete)

		// Search filters
		v1.GET("/filters", filterHandler.List)
		v1.POST("/filters", filterHandler.Create)
		v1.GET("/filters/:id", filterHandler.Get)
		v1.PATCH("/filters/:id", filterHandler.Update)
		v1.DELETE("/filters/:id", filterHandler.Delete)

		// Stats
		v1.GET("/stats", statsHandler.Overall)
	}

	return r
}
