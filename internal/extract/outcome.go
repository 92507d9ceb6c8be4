package extract

import (
	"github.com/receiptworks/expense-processor/internal/entity"
)

// Outcome tags which extraction path produced a record. It is never exposed
// to callers of the HTTP API; it exists for logging and tests.
type Outcome string

const (
	ModelDerived     Outcome = "model"
	HeuristicDerived Outcome = "heuristic"
)

// Result is an extracted record plus its provenance.
type Result struct {
	Record  entity.ExpenseRecord
	Outcome Outcome
}
