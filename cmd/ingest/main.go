package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/agore-ui/hh-parser-service/internal/config"
	"github.com/agore-ui/hh-parser-service/internal/hh"
	"github.com/agore-ui/hh-parser-service/internal/logger"
	"github.com/agore-ui/hh-parser-service/internal/repository"
	"github.com/agore-ui/hh-parser-service/internal/service"
)

func main() {
	keywordsFlag := flag.String("keywords", "", "Comma-separated search keywords (required)")
	regionsFlag := flag.String("regions", "", "Comma-separated hh.ru area IDs")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "hh-parser-ingest",
	})
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	keywords := splitNonEmpty(*keywordsFlag)
	if len(keywords) == 0 {
		appLogger.Fatal("At least one keyword is required (-keywords)")
	}

	regions, err := parseRegions(*regionsFlag)
	if err != nil {
		appLogger.WithError(err).Fatal("Invalid -regions value")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancel the sweep on SIGINT/SIGTERM; each reconciled item is its own
	// commit boundary, so stopping mid-sweep loses only unprocessed items.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling sweep")
		cancel()
	}()

	appLogger.WithFields(logger.Fields{
		"keywords": keywords,
		"regions":  regions,
	}).Info("Starting sweep")

	stats, err := sweepService.RunSweep(ctx, keywords, regions)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to start sweep")
	}

	appLogger.WithFields(logger.Fields{
		"found":   stats.Found,
		"new":     stats.New,
		"updated": stats.Updated,
		"errors":  stats.Errors,
	}).Info("Sweep completed")
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseRegions(s string) ([]int, error) {
	var out []int
	for _, part := range splitNonEmpty(s) {
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
