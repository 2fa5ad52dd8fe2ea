package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"rfp-agent/agents"
	"rfp-agent/config"
	"rfp-agent/database"
	"rfp-agent/docstore"
	"rfp-agent/extract"
	"rfp-agent/llmclient"
	"rfp-agent/notify"
	"rfp-agent/web"
	"rfp-agent/web/services"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	// Initialize logger with default level to load config
	tempLogger, err := config.InitLogger("info")
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Load(tempLogger)

	// Re-initialize logger with configured level
	logger, err := config.InitLogger(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to re-initialize logger with configured level: %v\n", err)
		os.Exit(1)
	}
	defer config.Cleanup()

	store, err := database.NewPostgresStore(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to ensure database schema", zap.Error(err))
	}

	client := llmclient.New(cfg, logger)
	docs := docstore.New(cfg, client, logger)
	extractor := extract.New(logger)

	discovery, err := agents.NewDiscovery(client, cfg.SchemaCacheSize, logger)
	if err != nil {
		logger.Fatal("Failed to initialize form discovery", zap.Error(err))
	}
	extraction := agents.NewExtraction(client, logger)
	details := agents.NewDetails(client, logger)
	dimensions := agents.NewDimensions(client, logger)
	scoring := agents.NewScoring(client, logger)
	consultant := agents.NewConsultant(client, logger)

	pipeline := services.NewPipeline(cfg, store, docs, extractor, discovery, extraction, details, logger)
	emails := notify.NewEmailService(cfg, logger)

	webServer := web.NewServer(web.Deps{
		Config:     cfg,
		Store:      store,
		Pipeline:   pipeline,
		Consultant: consultant,
		Dimensions: dimensions,
		Scoring:    scoring,
		Emails:     emails,
		Logger:     logger,
	})

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	port := fmt.Sprintf(":%d", cfg.WebPort)
	logger.Info("Starting RFP agent web server", zap.String("port", port))
	if err := webServer.Start(ctx, port); err != nil {
		logger.Error("Web server error", zap.Error(err))
		os.Exit(1)
	}
}
