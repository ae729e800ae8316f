package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/cmlabs-hris/production-dashboard-go/internal/config"
	"github.com/cmlabs-hris/production-dashboard-go/internal/domain/production"
	appHTTP "github.com/cmlabs-hris/production-dashboard-go/internal/handler/http"
	"github.com/cmlabs-hris/production-dashboard-go/internal/pkg/database"
	"github.com/cmlabs-hris/production-dashboard-go/internal/pkg/storage"
	"github.com/cmlabs-hris/production-dashboard-go/internal/pkg/token"
	"github.com/cmlabs-hris/production-dashboard-go/internal/repository/file"
	"github.com/cmlabs-hris/production-dashboard-go/internal/repository/postgresql"
	dashboardService "github.com/cmlabs-hris/production-dashboard-go/internal/service/dashboard"
	datasetService "github.com/cmlabs-hris/production-dashboard-go/internal/service/dataset"
	"github.com/go-chi/httplog/v3"
)

func main() {
	issueToken := flag.String("issue-token", "", "print a dashboard token for the given subject and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.App.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	var tokenSvc token.Service
	if cfg.JWT.Secret != "" {
		tokenSvc = token.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiration)
	}

	if *issueToken != "" {
		if tokenSvc == nil {
			logger.Error("JWT_SECRET_KEY is not set, cannot issue tokens")
			os.Exit(1)
		}
		tok, expiresAt, err := tokenSvc.GenerateViewerToken(*issueToken)
		if err != nil {
			logger.Error("Failed to issue token", slog.Any("error", err))
			os.Exit(1)
		}
		fmt.Printf("%s\nexpires at %s\n", tok, time.Unix(expiresAt, 0).UTC().Format(time.RFC3339))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	sources, closeSources, err := buildSources(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize dataset sources", slog.Any("error", err))
		os.Exit(1)
	}

	records, err := datasetService.NewLoader(logger, sources...).Load(ctx)
	closeSources()
	if err != nil {
		if errors.Is(err, production.ErrDatasetNotFound) {
			logger.Error("Dataset not found, check DATASET_SOURCES and DATASET_BASE_PATH", slog.Any("error", err))
		} else {
			logger.Error("Failed to load dataset", slog.Any("error", err))
		}
		os.Exit(1)
	}

	engine := dashboardService.NewEngine(records)
	dashboardSvc := dashboardService.NewDashboardService(engine)
	dashboardHandler := appHTTP.NewDashboardHandler(dashboardSvc)

	if tokenSvc == nil {
		logger.Warn("JWT_SECRET_KEY is not set, dashboard API is unauthenticated")
	}
	router := appHTTP.NewRouter(logger, cfg.CORS.AllowedOrigins, tokenSvc, dashboardHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	logger.Info("Server starting", slog.String("addr", port), slog.Int("records", len(records)))
	if err := http.ListenAndServe(port, router); err != nil {
		logger.Error("Server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

// buildSources turns DATASET_SOURCES into record sources. The returned close
// func releases the database pool once the dataset is in memory.
func buildSources(ctx context.Context, cfg *config.Config) ([]production.RecordSource, func(), error) {
	closeFn := func() {}

	var fs storage.FileStorage
	sources := make([]production.RecordSource, 0, len(cfg.Dataset.Sources))
	for _, src := range cfg.Dataset.Sources {
		switch src.Kind {
		case config.SourceCSV, config.SourceXLSX:
			if fs == nil {
				local, err := storage.NewLocalStorage(cfg.Dataset.BasePath)
				if err != nil {
					closeFn()
					return nil, nil, fmt.Errorf("%w: %v", production.ErrDatasetNotFound, err)
				}
				fs = local
			}
			if src.Kind == config.SourceCSV {
				sources = append(sources, file.NewCSVSource(fs, src.Path))
			} else {
				sources = append(sources, file.NewXLSXSource(fs, src.Path, src.Sheet))
			}
		case config.SourcePostgres:
			db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), cfg.Database.MaxConns)
			if err != nil {
				closeFn()
				return nil, nil, fmt.Errorf("connect to database: %w", err)
			}
			prev := closeFn
			closeFn = func() { prev(); db.Close() }
			sources = append(sources, postgresql.NewProductionRepository(db))
		default:
			closeFn()
			return nil, nil, fmt.Errorf("%w: %s", production.ErrUnknownSourceKind, src.Kind)
		}
	}
	return sources, closeFn, nil
}
