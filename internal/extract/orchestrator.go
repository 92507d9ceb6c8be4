package extract

import (
	"context"
	"log/slog"
)

// ModelInvoker is the slice of ModelExtractor the orchestrator depends on.
type ModelInvoker interface {
	Extract(ctx context.Context, text string) Result
}

// Orchestrator is the single policy point choosing between the model path
// and the heuristic path. It never fails: the model extractor guarantees a
// result via its internal fallback, and the heuristic is total.
type Orchestrator struct {
	model     ModelInvoker // nil when no API credential is configured
	heuristic *HeuristicExtractor
	logger    *slog.Logger
}

func NewOrchestrator(model ModelInvoker, heuristic *HeuristicExtractor, logger *slog.Logger) *Orchestrator {
	if heuristic == nil {
		heuristic = NewHeuristicExtractor()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{model: model, heuristic: heuristic, logger: logger}
}

func (o *Orchestrator) Orchestrate(ctx context.Context, text string) Result {
	if o.model != nil {
		return o.model.Extract(ctx, text)
	}
	o.logger.Debug("extract.orchestrate.heuristic_only", "text_len", len(text))
	return o.heuristic.Extract(text)
}
