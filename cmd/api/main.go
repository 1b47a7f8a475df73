package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/soender/kvittering/internal/analysis"
	"github.com/soender/kvittering/internal/cache"
	"github.com/soender/kvittering/internal/config"
	"github.com/soender/kvittering/internal/database"
	"github.com/soender/kvittering/internal/export"
	"github.com/soender/kvittering/internal/extract"
	kvitteringHttp "github.com/soender/kvittering/internal/http"
	adminHandler "github.com/soender/kvittering/internal/http/admin"
	exportHandler "github.com/soender/kvittering/internal/http/export"
	listingHandler "github.com/soender/kvittering/internal/http/listing"
	uploadHandler "github.com/soender/kvittering/internal/http/upload"
	"github.com/soender/kvittering/internal/ingest"
	"github.com/soender/kvittering/internal/receipt"
	receiptStore "github.com/soender/kvittering/internal/receipt/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	rawCache, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		slog.Error("failed to open cache", "error", err)
		os.Exit(1)
	}
	defer rawCache.Close()

	extractor, err := extract.New()
	if err != nil {
		slog.Error("failed to create extractor", "error", err)
		os.Exit(1)
	}

	analyzer := analysis.NewClient(
		cfg.Analyzer.Endpoint,
		cfg.Analyzer.APIKey,
		cfg.Analyzer.ModelID,
		cfg.Analyzer.APIVersion,
	)

	var (
		receiptService = receipt.NewService(receiptStore.New(db))
		ingestService  = ingest.NewService(analyzer, rawCache, receiptService, extractor, cfg.Analyzer.PollDelay)
		exportService  = export.NewService(receiptService)
	)

	var (
		uploadH  = uploadHandler.NewHandler(ingestService)
		listingH = listingHandler.NewHandler(receiptService)
		exportH  = exportHandler.NewHandler(exportService)
		adminH   = adminHandler.NewHandler(ingestService, receiptService)
	)

	router := kvitteringHttp.New(uploadH, listingH, exportH, adminH, cfg.Auth.Secret)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
