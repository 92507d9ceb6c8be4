package extract

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/receiptworks/expense-processor/constants"
)

// buildExpenseJSONSchema describes the object the model is instructed to
// emit. Category is constrained to the closed enum here even though the
// extractor passes out-of-set values through; the schema exists to flag
// those cases in the logs.
func buildExpenseJSONSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"amount": map[string]any{"type": []string{"number", "string"}},
			"category": map[string]any{
				"type": "string",
				"enum": constants.AsStringSlice(),
			},
			"vendor":      map[string]any{"type": "string"},
			"description": map[string]any{"type": "string"},
		},
		"required": []string{"amount", "category"},
	}
}

// ValidateCompletionJSON validates data against the expense schema.
func ValidateCompletionJSON(data []byte) error {
	b, err := json.Marshal(buildExpenseJSONSchema())
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
