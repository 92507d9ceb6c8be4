package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/receiptworks/expense-processor/internal/entity"
	"github.com/receiptworks/expense-processor/internal/repository"
	"github.com/receiptworks/expense-processor/internal/server"
)

func newTestRepo(t *testing.T) repository.ExpenseRepository {
	t.Helper()
	db, err := repository.Open(context.Background(), repository.Config{
		Path: filepath.Join(t.TempDir(), "expenses.db"),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repository.NewExpenseRepository(db, nil)
}

func newLedgerServer(t *testing.T, exporter server.Exporter) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	server.NewHandler(&fakeProcessor{}, newTestRepo(t), exporter, nil).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func createViaAPI(t *testing.T, baseURL string, e entity.Expense) entity.Expense {
	t.Helper()
	b, _ := json.Marshal(e)
	resp, err := http.Post(baseURL+"/api/expenses", "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created entity.Expense
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	return created
}

func TestExpensesListEmptyIsArray(t *testing.T) {
	srv := newLedgerServer(t, &fakeExporter{})

	resp, err := http.Get(srv.URL + "/api/expenses")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []entity.Expense
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.NotNil(t, list)
	require.Empty(t, list)
}

func TestExpensesCreateValidation(t *testing.T) {
	srv := newLedgerServer(t, &fakeExporter{})

	resp := postJSON(t, srv.URL+"/api/expenses", `{"vendor": "Deli"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, map[string]any{"error": "Missing required fields"}, decodeBody(t, resp))
}

func TestExpensesCRUDOverHTTP(t *testing.T) {
	srv := newLedgerServer(t, &fakeExporter{})

	created := createViaAPI(t, srv.URL, entity.Expense{
		Amount:   42.5,
		Category: "Food",
		Vendor:   "Deli",
		Date:     "2026-08-15",
	})
	require.NotEmpty(t, created.ID)
	require.Equal(t, 42.5, created.Amount)

	// Update
	created.Amount = 50
	b, _ := json.Marshal(created)
	req, err := http.NewRequest(http.MethodPut, srv.URL+"/api/expenses/"+created.ID, bytes.NewReader(b))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated entity.Expense
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	require.Equal(t, 50.0, updated.Amount)

	// Delete
	req, err = http.NewRequest(http.MethodDelete, srv.URL+"/api/expenses/"+created.ID, nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Gone
	resp, err = http.Get(srv.URL + "/api/expenses")
	require.NoError(t, err)
	defer resp.Body.Close()
	var list []entity.Expense
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Empty(t, list)
}

func TestExpensesUpdateMissing(t *testing.T) {
	srv := newLedgerServer(t, &fakeExporter{})

	body := `{"amount": 1, "category": "Food", "date": "2026-08-15"}`
	req, err := http.NewRequest(http.MethodPut, srv.URL+"/api/expenses/no-such-id", bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, map[string]any{"error": "Expense not found"}, decodeBody(t, resp))
}

func TestExpensesStats(t *testing.T) {
	srv := newLedgerServer(t, &fakeExporter{})

	createViaAPI(t, srv.URL, entity.Expense{Amount: 10, Category: "Food", Date: "2026-08-05"})
	createViaAPI(t, srv.URL, entity.Expense{Amount: 30, Category: "Transport", Date: "2026-03-01"})

	resp, err := http.Get(srv.URL + "/api/expenses/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats entity.ExpenseStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	require.Equal(t, 2, stats.ExpenseCount)
	require.Equal(t, 40.0, stats.Total)
	require.Equal(t, map[string]float64{"Food": 10, "Transport": 30}, stats.ByCategory)
}

func TestExpensesExportHeaders(t *testing.T) {
	srv := newLedgerServer(t, &fakeExporter{data: []byte("xlsx-bytes")})

	resp, err := http.Get(srv.URL + "/api/expenses/export?from=2026-01-01&to=2026-12-31")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		resp.Header.Get("Content-Type"))
	require.Contains(t, resp.Header.Get("Content-Disposition"), "expenses.xlsx")
}

func TestExpensesExportRejectsBadDate(t *testing.T) {
	srv := newLedgerServer(t, &fakeExporter{})

	resp, err := http.Get(srv.URL + "/api/expenses/export?from=08-15-2026")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
