package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/receiptworks/expense-processor/constants"
	"github.com/receiptworks/expense-processor/internal/entity"
)

// reAmountCue finds the first number preceded by a spend cue word, optionally
// separated by whitespace, a colon, or a currency symbol ("Total: $42.50").
var reAmountCue = regexp.MustCompile(`(?:price|total|amount|cost)[\s:$]*(\d+\.?\d*)`)

const (
	descriptionPrefix   = "Auto-detected from receipt: "
	descriptionMaxRunes = 200
)

// HeuristicExtractor derives expense fields from raw receipt text with
// keyword and regex rules. It is a total function: it never fails, though
// the output may be low quality on garbled input.
type HeuristicExtractor struct{}

func NewHeuristicExtractor() *HeuristicExtractor {
	return &HeuristicExtractor{}
}

func (h *HeuristicExtractor) Extract(text string) Result {
	lower := strings.ToLower(text)

	amount := 0.0
	if m := reAmountCue.FindStringSubmatch(lower); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			amount = v
		}
	}

	category := constants.Other
scan:
	for _, ck := range constants.KeywordTaxonomy {
		for _, kw := range ck.Keywords {
			if strings.Contains(lower, kw) {
				category = ck.Category
				break scan
			}
		}
	}

	vendor := ""
	if fields := strings.Fields(text); len(fields) > 0 {
		vendor = fields[0]
	}

	return Result{
		Record: entity.ExpenseRecord{
			Amount:      amount,
			Category:    string(category),
			Vendor:      vendor,
			Description: descriptionPrefix + truncateRunes(text, descriptionMaxRunes),
		},
		Outcome: HeuristicDerived,
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
