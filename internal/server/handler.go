package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/receiptworks/expense-processor/internal/entity"
	"github.com/receiptworks/expense-processor/internal/repository"
)

// ReceiptProcessor is the receipt pipeline boundary the handler calls into.
type ReceiptProcessor interface {
	ProcessReceipt(ctx context.Context, imageB64, filename string) (entity.ExpenseRecord, error)
}

// Exporter produces XLSX bytes for the ledger.
type Exporter interface {
	ExportExpensesXLSX(ctx context.Context, from, to *time.Time) ([]byte, error)
}

// Handler owns all HTTP routes.
type Handler struct {
	receipts ReceiptProcessor
	repo     repository.ExpenseRepository
	exporter Exporter
	logger   *slog.Logger
}

func NewHandler(receipts ReceiptProcessor, repo repository.ExpenseRepository, exporter Exporter, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{receipts: receipts, repo: repo, exporter: exporter, logger: logger}
}

// Register mounts all routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /process-receipt", h.processReceipt)
	mux.HandleFunc("GET /health", h.health)

	mux.HandleFunc("GET /api/expenses", h.listExpenses)
	mux.HandleFunc("POST /api/expenses", h.createExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", h.updateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", h.deleteExpense)
	mux.HandleFunc("GET /api/expenses/stats", h.expenseStats)
	mux.HandleFunc("GET /api/expenses/export", h.exportExpenses)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
