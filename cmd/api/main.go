package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agore-ui/hh-parser-service/internal/api"
	"github.com/agore-ui/hh-parser-service/internal/api/middleware"
	"github.com/agore-ui/hh-parser-service/internal/config"
	"github.com/agore-ui/hh-parser-service/internal/hh"
	"github.com/agore-ui/hh-parser-service/internal/logger"
	"github.com/agore-ui/hh-parser-service/internal/repository"
	"github.com/agore-ui/hh-parser-service/internal/scheduler"
	"github.com/agore-ui/hh-parser-service/internal/service"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Default().WithError(err).Fatal("Failed to load config")
	}

	appLogger := logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		File:        cfg.Log.File,
		ServiceName: "hh-parser-api",
	})
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	vacancyRepo := repository.NewVacancyRepository(db)
	employerRepo := repository.NewEmployerRepository(db)
	versionRepo := repository.NewVersionRepository(db)
	filterRepo := repository.NewFilterRepository(db)
	runRepo := repository.NewRunRepository(db)

	client := hh.NewClient(hh.Config{
		BaseURL:       cfg.HH.BaseURL,
		UserAgent:     cfg.HH.UserAgent,
		Timeout:       cfg.HH.Timeout,
		PerPage:       cfg.HH.PerPage,
		MaxPages:      cfg.HH.MaxPages,
		SearchPeriod:  cfg.HH.SearchPeriod,
		RequestDelay:  cfg.HH.RequestDelay,
		RetryAttempts: cfg.HH.RetryAttempts,
		RetryDelay:    cfg.HH.RetryDelay,
	})

	reconciler := service.NewReconciler(employerRepo, vacancyRepo, versionRepo)
	sweepService := service.NewSweepService(client, db, reconciler, runRepo, filterRepo, appLogger)
	statsService := service.NewStatsService(vacancyRepo, employerRepo, runRepo)

	router := api.SetupRouter(api.Deps{
		Vacancies: vacancyRepo,
		Employers: employerRepo,
		Versions:  versionRepo,
		Filters:   filterRepo,
		Runs:      runRepo,
		Sweeps:    sweepService,
		Stats:     statsService,
		Logger:    appLogger,
		CORS: middleware.CORSConfig{
			AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
			AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
		},
	}, cfg.Server.Mode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.New(filterRepo, sweepService, appLogger, cfg.Scheduler.CheckInterval)
		if err := sched.Start(ctx); err != nil {
			appLogger.WithError(err).Fatal("Failed to start scheduler")
		}
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		appLogger.WithField("port", cfg.Server.Port).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatal("HTTP server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	appLogger.Info("Shutdown signal received")
	cancel()
	if sched != nil {
		sched.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server shutdown failed")
	}
	appLogger.Info("Server stopped")
}
