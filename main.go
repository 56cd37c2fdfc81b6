package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/couy-victor/portal-academico-ai/cmd"
	"github.com/couy-victor/portal-academico-ai/internal/config"
	"github.com/couy-victor/portal-academico-ai/internal/nlsql"
	"github.com/couy-victor/portal-academico-ai/internal/schema"
)

var logger *slog.Logger

// setupLogger creates and configures the application logger
func setupLogger(logPath string) error {
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	handler := slog.NewJSONHandler(logFile, &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: true,
	})

	logger = slog.New(handler)
	logger.Info("Application started", "version", "1.0")

	return nil
}

// application owns the wired pipeline and satisfies cmd.App.
type application struct {
	cfg      *config.Config
	db       *Database
	catalog  *schema.Catalog
	pipeline *nlsql.Pipeline
}

// initApp builds the full stack: config, database, schema catalog, LLM
// generator and the compilation pipeline. The returned cleanup closes the
// database connection.
func initApp(configDir string) (cmd.App, func(), error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	if err := setupLogger(cfg.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to setup logger: %v\n", err)
	}

	db, err := OpenDatabase(cfg.DatabaseURL)
	if err != nil {
		if logger != nil {
			logger.Error("Failed to open database", "error", err)
		}
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	catalog := schema.NewCatalog(db.Conn(), cfg.SchemaCacheTTL, logger)

	generator, err := nlsql.NewClaudeGenerator(cfg.APIKey, cfg.Model, cfg.GenerationTimeout, logger)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to initialize generator: %w", err)
	}

	writer := nlsql.NewWriter(generator, logger)
	reviewer := nlsql.NewReviewer(generator, logger)
	critic := nlsql.NewCritic(generator, logger)
	controller := nlsql.NewController(writer, reviewer, critic, cfg.MaxRevisions, logger)
	guard := nlsql.NewGuard(cfg.DefaultRowCap, cfg.LargeTables, logger)
	sanitizer := nlsql.NewSanitizer(logger)
	executor := nlsql.NewExecutor(db.Conn(), cfg.ExecutionTimeout, logger)
	cache := nlsql.NewResponseCache(cfg.ResponseCacheTTL)

	pipeline := nlsql.NewPipeline(catalog, controller, guard, sanitizer, executor, cache, logger)

	app := &application{
		cfg:      cfg,
		db:       db,
		catalog:  catalog,
		pipeline: pipeline,
	}

	cleanup := func() {
		db.Close()
	}

	return app, cleanup, nil
}

func (a *application) Answer(ctx context.Context, req nlsql.Request) (*nlsql.Result, error) {
	return a.pipeline.Answer(ctx, req)
}

func (a *application) Schema(ctx context.Context) (*schema.Snapshot, error) {
	return a.catalog.Get(ctx)
}

func (a *application) RefreshSchema(ctx context.Context) (*schema.Snapshot, error) {
	return a.catalog.Refresh(ctx)
}

func (a *application) Serve(addr string) error {
	if addr == "" {
		addr = a.cfg.ListenAddr
	}
	return StartServer(ServerConfig{
		Addr:     addr,
		Pipeline: a.pipeline,
		Catalog:  a.catalog,
		DB:       a.db,
	})
}

func main() {
	cmd.InitApp = initApp

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
