package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/receiptworks/expense-processor/internal/common"
	"github.com/receiptworks/expense-processor/internal/entity"
)

type expenseRequest struct {
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Vendor      string  `json:"vendor"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	PhotoURL    string  `json:"photoUrl"`
}

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.repo.List(r.Context(), nil, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch expenses")
		return
	}
	if expenses == nil {
		expenses = []*entity.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (h *Handler) createExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Amount == 0 || req.Category == "" || req.Date == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	expense, err := h.repo.Create(r.Context(), &entity.Expense{
		Amount:      req.Amount,
		Category:    req.Category,
		Vendor:      req.Vendor,
		Date:        req.Date,
		Description: req.Description,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create expense")
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}

func (h *Handler) updateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	expense, err := h.repo.Update(r.Context(), &entity.Expense{
		ID:          r.PathValue("id"),
		Amount:      req.Amount,
		Category:    req.Category,
		Vendor:      req.Vendor,
		Date:        req.Date,
		Description: req.Description,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Expense not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update expense")
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

func (h *Handler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete expense")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) expenseStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.repo.Stats(r.Context(), time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) exportExpenses(w http.ResponseWriter, r *http.Request) {
	parseDate := func(s string) (*time.Time, error) {
		if s == "" {
			return nil, nil
		}
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", s, err)
		}
		return &t, nil
	}

	from, err := parseDate(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := parseDate(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := h.exporter.ExportExpensesXLSX(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export expenses")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="expenses.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
