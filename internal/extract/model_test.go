package extract_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/receiptworks/expense-processor/internal/extract"
)

const receiptText = "Walmart\nMilk 3.50\nTotal: $42.50 Thank you"

func completionResponse(content string) string {
	body := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	b, _ := json.Marshal(body)
	return string(b)
}

func newModelExtractor(t *testing.T, baseURL string) *extract.ModelExtractor {
	t.Helper()
	return extract.NewModelExtractor(extract.ModelConfig{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Timeout: 2 * time.Second,
	}, extract.NewHeuristicExtractor(), nil)
}

func TestModelExtractSuccess(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(completionResponse(
			`{"amount": 42.5, "category": "Shopping", "vendor": "Walmart", "description": "Groceries"}`,
		)))
	}))
	defer srv.Close()

	m := newModelExtractor(t, srv.URL)
	res := m.Extract(context.Background(), receiptText)

	require.Equal(t, extract.ModelDerived, res.Outcome)
	require.Equal(t, 42.5, res.Record.Amount)
	require.Equal(t, "Shopping", res.Record.Category)
	require.Equal(t, "Walmart", res.Record.Vendor)
	require.Equal(t, "Groceries", res.Record.Description)

	require.Equal(t, "Bearer test-key", gotAuth)
	require.Equal(t, "mixtral-8x7b-32768", gotBody["model"])
	require.InDelta(t, 0.3, gotBody["temperature"], 1e-6)
	require.EqualValues(t, 200, gotBody["max_tokens"])

	messages, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)
	msg := messages[0].(map[string]any)
	require.Equal(t, "user", msg["role"])
	require.Contains(t, msg["content"], receiptText)
	require.Contains(t, msg["content"], "Food, Transport, Shopping, Entertainment, Utilities, Other")
}

func TestModelExtractDefaultsMissingKeys(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(completionResponse(`{"vendor": "Shell"}`)))
	}))
	defer srv.Close()

	m := newModelExtractor(t, srv.URL)
	res := m.Extract(context.Background(), receiptText)

	require.Equal(t, extract.ModelDerived, res.Outcome)
	require.Equal(t, 0.0, res.Record.Amount)
	require.Equal(t, "Other", res.Record.Category)
	require.Equal(t, "Shell", res.Record.Vendor)
	require.Equal(t, "", res.Record.Description)
}

func TestModelExtractAmountCoercion(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    float64
	}{
		{"number", `{"amount": 12.3, "category": "Food"}`, 12.3},
		{"numeric string", `{"amount": "42.50", "category": "Food"}`, 42.5},
		{"garbage string", `{"amount": "forty-two", "category": "Food"}`, 0},
		{"null", `{"amount": null, "category": "Food"}`, 0},
		{"negative", `{"amount": -9.5, "category": "Food"}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(completionResponse(tt.content)))
			}))
			defer srv.Close()

			m := newModelExtractor(t, srv.URL)
			res := m.Extract(context.Background(), receiptText)
			require.Equal(t, extract.ModelDerived, res.Outcome)
			require.Equal(t, tt.want, res.Record.Amount)
		})
	}
}

func TestModelExtractCategoryPassthrough(t *testing.T) {
	// An out-of-set label from the model is returned verbatim; the schema
	// check only logs.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(completionResponse(`{"amount": 5, "category": "Groceries"}`)))
	}))
	defer srv.Close()

	m := newModelExtractor(t, srv.URL)
	res := m.Extract(context.Background(), receiptText)
	require.Equal(t, extract.ModelDerived, res.Outcome)
	require.Equal(t, "Groceries", res.Record.Category)
}

func TestModelExtractFallsBackToHeuristic(t *testing.T) {
	heuristic := extract.NewHeuristicExtractor().Extract(receiptText)

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"non-2xx status", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"envelope not json", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html>gateway error</html>"))
		}},
		{"no choices", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"choices": []}`))
		}},
		{"content not json", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(completionResponse("Sure! Here is the JSON you asked for...")))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			m := newModelExtractor(t, srv.URL)
			res := m.Extract(context.Background(), receiptText)

			require.Equal(t, extract.HeuristicDerived, res.Outcome)
			require.Equal(t, heuristic.Record, res.Record)
		})
	}
}

func TestModelExtractFallsBackOnTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	heuristic := extract.NewHeuristicExtractor().Extract(receiptText)
	m := newModelExtractor(t, srv.URL)
	res := m.Extract(context.Background(), receiptText)

	require.Equal(t, extract.HeuristicDerived, res.Outcome)
	require.Equal(t, heuristic.Record, res.Record)
}

func TestModelExtractFallsBackOnTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		_, _ = w.Write([]byte(completionResponse(`{"amount": 1}`)))
	}))
	defer srv.Close()
	defer close(release)

	m := extract.NewModelExtractor(extract.ModelConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Timeout: 50 * time.Millisecond,
	}, extract.NewHeuristicExtractor(), nil)

	res := m.Extract(context.Background(), receiptText)
	require.Equal(t, extract.HeuristicDerived, res.Outcome)
}
