package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/receiptworks/expense-processor/constants"
	"github.com/receiptworks/expense-processor/internal/entity"
)

// ModelConfig for the completion-API client.
type ModelConfig struct {
	APIKey      string        // bearer credential; callers must not construct the extractor without one
	BaseURL     string        // default https://api.groq.com/openai/v1
	Model       string        // default mixtral-8x7b-32768
	Temperature float32       // default 0.3
	MaxTokens   int           // default 200
	Timeout     time.Duration // wall-clock budget for the whole request, default 10s
}

// ModelExtractor asks a chat-completion model to parse the receipt text into
// structured fields. Every failure along the way (transport, status, envelope
// shape, content JSON) degrades to the heuristic extractor on the same text
// rather than surfacing an error. A single attempt, no retries.
type ModelExtractor struct {
	cfg        ModelConfig
	httpClient *http.Client
	fallback   *HeuristicExtractor
	logger     *slog.Logger
}

func NewModelExtractor(cfg ModelConfig, fallback *HeuristicExtractor, logger *slog.Logger) *ModelExtractor {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "mixtral-8x7b-32768"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.3
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 200
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if fallback == nil {
		fallback = NewHeuristicExtractor()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ModelExtractor{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		fallback:   fallback,
		logger:     logger,
	}
}

func (m *ModelExtractor) Extract(ctx context.Context, text string) Result {
	rid := uuid.New().String()
	start := time.Now()

	m.logger.Info("llm.extract.start",
		"req_id", rid,
		"model", m.cfg.Model,
		"temp", m.cfg.Temperature,
		"text_len", len(text),
	)

	record, err := m.extractOnce(ctx, rid, text)
	if err != nil {
		m.logger.Warn("llm.extract.fallback",
			"req_id", rid,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return m.fallback.Extract(text)
	}

	m.logger.Info("llm.extract.ok",
		"req_id", rid,
		"amount", record.Amount,
		"category", record.Category,
		"vendor", record.Vendor,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Result{Record: record, Outcome: ModelDerived}
}

func (m *ModelExtractor) extractOnce(ctx context.Context, rid, text string) (entity.ExpenseRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	body := map[string]any{
		"model": m.cfg.Model,
		"messages": []map[string]any{
			{"role": "user", "content": buildPrompt(text)},
		},
		"temperature": m.cfg.Temperature,
		"max_tokens":  m.cfg.MaxTokens,
	}

	endpoint := strings.TrimRight(m.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := m.post(ctx, endpoint, body)
	if err != nil {
		return entity.ExpenseRecord{}, err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return entity.ExpenseRecord{}, fmt.Errorf("decode completion response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return entity.ExpenseRecord{}, fmt.Errorf("no choices in completion response")
	}
	content := strings.TrimSpace(cc.Choices[0].Message.Content)

	var parsed struct {
		Amount      json.RawMessage `json:"amount"`
		Category    *string         `json:"category"`
		Vendor      *string         `json:"vendor"`
		Description *string         `json:"description"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return entity.ExpenseRecord{}, fmt.Errorf("completion content is not a JSON object: %w", err)
	}

	// Observability only: the category stays whatever the model said, even
	// when it is outside the closed set. The schema check just logs it.
	if err := ValidateCompletionJSON([]byte(content)); err != nil {
		m.logger.Warn("llm.extract.schema_mismatch",
			"req_id", rid,
			"error", err,
		)
	}

	record := entity.ExpenseRecord{
		Amount:   coerceAmount(parsed.Amount),
		Category: string(constants.Other),
	}
	if parsed.Category != nil {
		record.Category = *parsed.Category
	}
	if parsed.Vendor != nil {
		record.Vendor = *parsed.Vendor
	}
	if parsed.Description != nil {
		record.Description = *parsed.Description
	}
	return record, nil
}

func (m *ModelExtractor) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+m.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("completion http error: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			m.logger.Warn("llm.http.response_body_close_error", "error", cerr)
		}
	}()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("completion status %d: %s", resp.StatusCode, truncateForLog(raw, 512))
	}
	return raw, nil
}

func buildPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Parse this receipt text and extract expense information.\n")
	b.WriteString("Respond with ONLY valid JSON:\n")
	b.WriteString(`{"amount": <number>, "category": <string>, "vendor": <string>, "description": <string>}`)
	b.WriteString("\n\nCategories: ")
	b.WriteString(strings.Join(constants.AsStringSlice(), ", "))
	b.WriteString("\n\nReceipt text:\n")
	b.WriteString(text)
	return b.String()
}

// coerceAmount accepts a JSON number or a numeric string; anything else
// (absent, null, garbage, negative) collapses to 0.
func coerceAmount(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0
		}
		f = v
	}
	if f < 0 {
		return 0
	}
	return f
}

func truncateForLog(b []byte, max int) string {
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "...(truncated)"
}
