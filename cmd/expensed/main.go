// Command expensed serves the expense-processor HTTP API: receipt
// extraction, the expense ledger, and health checking.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"

	"github.com/receiptworks/expense-processor/internal/common"
	"github.com/receiptworks/expense-processor/internal/export"
	"github.com/receiptworks/expense-processor/internal/extract"
	"github.com/receiptworks/expense-processor/internal/ocr"
	"github.com/receiptworks/expense-processor/internal/receipts"
	"github.com/receiptworks/expense-processor/internal/repository"
	"github.com/receiptworks/expense-processor/internal/server"
)

func newLogger(environment string) (*zap.Logger, *slog.Logger) {
	var zl *zap.Logger
	if environment == "production" {
		zl, _ = zap.NewProduction()
	} else {
		zl, _ = zap.NewDevelopment()
	}
	return zl, slog.New(zapslog.NewHandler(zl.Core()))
}

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zl, logger := newLogger(cfg.Environment)
	defer func() { _ = zl.Sync() }()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Expense store
	db, err := repository.Open(ctx, repository.Config{Path: cfg.Database.Path}, logger)
	if err != nil {
		logger.Error("opening expense store", "error", err)
		os.Exit(1)
	}
	defer repository.Close(db, logger)
	if err := repository.HealthCheck(ctx, db, 3*time.Second); err != nil {
		logger.Error("expense store health failed", "error", err)
		os.Exit(1)
	}

	// Recognition engine: constructed once here, owned by the service root,
	// shared across requests. The trained model loads on first use.
	engine := ocr.NewTesseractEngine(ocr.Config{
		Language:    cfg.OCR.Language,
		TessdataDir: cfg.OCR.TessdataDir,
	}, logger)
	recognizer := ocr.NewRecognizer(engine, logger)

	// Extraction paths
	heuristic := extract.NewHeuristicExtractor()
	var model extract.ModelInvoker
	if cfg.LLM.APIKey != "" {
		model = extract.NewModelExtractor(extract.ModelConfig{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			Timeout:     cfg.LLM.Timeout,
		}, heuristic, logger)
	} else {
		logger.Warn("no completion API credential configured, extraction is heuristic-only")
	}
	orchestrator := extract.NewOrchestrator(model, heuristic, logger)

	svc := receipts.NewService(recognizer, orchestrator, logger)
	repo := repository.NewExpenseRepository(db, logger)
	exporter := export.NewService(repo, logger)

	srv := server.NewServer(server.NewHandler(svc, repo, exporter, logger), server.NewOptions(cfg), logger)

	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	logger.Info("stopped")
}
