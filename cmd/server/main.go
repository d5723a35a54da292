// Copyright Answer Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpAdapter "github.com/answersearch/answersearch-gw/pkg/adapters/http"
	"github.com/answersearch/answersearch-gw/pkg/core/aggregate"
	"github.com/answersearch/answersearch-gw/pkg/core/api"
	"github.com/answersearch/answersearch-gw/pkg/core/config"
	"github.com/answersearch/answersearch-gw/pkg/core/engine"
	"github.com/answersearch/answersearch-gw/pkg/fetch"
	"github.com/answersearch/answersearch-gw/pkg/observability/logging"
	"github.com/answersearch/answersearch-gw/pkg/observability/metrics"
	"github.com/answersearch/answersearch-gw/pkg/websearch"
)

var (
	// Version is set via ldflags during build
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	port := flag.Int("port", 8080, "HTTP port to listen on")
	version := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *version {
		fmt.Printf("Answer Search Gateway Server\nVersion: %s\nBuild Time: %s\n", Version, BuildTime)
		os.Exit(0)
	}

	logger := logging.New(logging.Config{
		Level:  "info",
		Format: "json",
	})
	logger.Info("Starting Answer Search Gateway Server",
		"version", Version,
		"build_time", BuildTime)

	cfg, err := config.Load(*configPath)
	if err != nil {
		// If config file doesn't exist, use defaults
		logger.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}

	if *port != 8080 {
		cfg.Server.Port = *port
	}

	m := metrics.New()

	searcher, err := websearch.Providers.New(context.Background(), cfg.Search.Provider, map[string]string{
		"api_key": cfg.Search.APIKey,
	})
	if err != nil {
		logger.Error("Failed to initialize search provider", "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized search provider", "provider", cfg.Search.Provider, "max_results", cfg.Search.MaxResults)

	fetcher := fetch.New(cfg.Fetch.PageTimeout, cfg.Fetch.MaxBodyBytes, logger)
	aggregator := aggregate.New(fetcher, aggregate.Options{
		Deadline:       cfg.Fetch.Deadline,
		MaxSourceChars: cfg.Fetch.MaxSourceChars,
		MaxTotalChars:  cfg.Fetch.MaxContextChars,
	}, logger)
	logger.Info("Initialized aggregator", "deadline", cfg.Fetch.Deadline, "context_chars", cfg.Fetch.MaxContextChars)

	streamer := api.NewOpenAIClient(cfg.Generation.Endpoint, cfg.Generation.APIKey)
	logger.Info("Initialized generation client", "model", cfg.Generation.Model, "endpoint", cfg.Generation.Endpoint)

	eng := engine.New(searcher, aggregator, streamer, engine.Options{
		Model:         cfg.Generation.Model,
		MaxResults:    cfg.Search.MaxResults,
		MaxTokens:     cfg.Generation.MaxTokens,
		Temperature:   cfg.Generation.Temperature,
		SearchTimeout: cfg.Search.Timeout,
	}, logger, m)
	logger.Info("Initialized engine")

	handler := httpAdapter.New(eng, logger, m)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: cfg.Server.Timeout,
		// No WriteTimeout: answer streams outlive any fixed bound and
		// are terminated by the pipeline's own deadlines instead.
		IdleTimeout: 120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully")
}
