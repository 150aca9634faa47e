package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agrodex/searchd/internal/config"
	"github.com/agrodex/searchd/internal/embedder"
	"github.com/agrodex/searchd/internal/indexer"
	"github.com/agrodex/searchd/internal/lexical"
	"github.com/agrodex/searchd/internal/repository/postgres"
	"github.com/agrodex/searchd/internal/search"
	"github.com/agrodex/searchd/internal/server"
	"github.com/agrodex/searchd/internal/synonyms"
)

func main() {
	// Set up structured logging
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("failed to run server", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("starting search service",
		"http_port", cfg.HTTPPort,
		"environment", cfg.Environment,
	)

	// Initialize PostgreSQL
	db, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	slog.Info("connected to PostgreSQL")

	// Initialize repositories
	productRepo := postgres.NewProductRepo(db)
	faqRepo := postgres.NewFAQRepo(db)

	// Initialize the embedding client. A missing API key disables
	// embeddings; queries then run lexical-only.
	var provider embedder.Provider
	if cfg.OpenAIAPIKey != "" {
		p, err := embedder.NewOpenAIProvider(embedder.OpenAIConfig{
			APIKey:     cfg.OpenAIAPIKey,
			Model:      cfg.EmbeddingModel,
			Dimensions: cfg.EmbeddingDimensions,
			BaseURL:    cfg.OpenAIBaseURL,
		})
		if err != nil {
			return fmt.Errorf("failed to create embedding provider: %w", err)
		}
		provider = p
		slog.Info("initialized embedding provider",
			"model", cfg.EmbeddingModel,
			"dimensions", cfg.EmbeddingDimensions,
		)
	} else {
		slog.Warn("OPENAI_API_KEY not set, embeddings disabled")
	}

	embedClient := embedder.NewClient(embedder.ClientConfig{
		Provider:  provider,
		CharLimit: cfg.EmbeddingCharLimit,
		CacheSize: cfg.EmbeddingCacheSize,
		Timeout:   cfg.EmbeddingTimeout,
		Logger:    slog.Default(),
	})

	// Build the synonym dictionaries once; they are read-only afterwards.
	dict := synonyms.NewDictionary()
	scorer := lexical.NewScorer(dict)

	engine := search.NewEngine(productRepo, faqRepo, embedClient, scorer, search.Config{
		Weights: search.Weights{
			Vector:    cfg.VectorWeight,
			Lexical:   cfg.LexicalWeight,
			PairBonus: cfg.PairBonus,
		},
		DistanceThreshold: cfg.VectorDistanceThreshold,
		Enhanced:          cfg.EnhancedRanking,
		ProductLimit:      cfg.ProductSearchLimit,
		FAQLimit:          cfg.FAQSearchLimit,
		MaxResults:        cfg.MaxResults,
	}, slog.Default())

	ix := indexer.New(productRepo, faqRepo, embedClient, cfg.ReindexConcurrency, slog.Default())

	httpServer := server.NewHTTPServer(server.HTTPServerConfig{
		Port:           cfg.HTTPPort,
		Logger:         slog.Default(),
		APIKeys:        cfg.APIKeys,
		AdminJWTSecret: cfg.AdminJWTSecret,
		Readiness: func(ctx context.Context) error {
			return db.Pool.Ping(ctx)
		},
	}, engine, ix)

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		slog.Info("received shutdown signal", "signal", sig)
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown HTTP server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
