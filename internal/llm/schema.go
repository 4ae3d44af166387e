package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// buildAlignedSchema constrains an aligner reply: both top-level keys must be
// present and each must be an object whose values are lists.
func buildAlignedSchema() map[string]any {
	containerMap := map[string]any{
		"type":                 "object",
		"additionalProperties": map[string]any{"type": "array"},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"sorted_invoice_containers": containerMap,
			"sorted_xml_containers":     containerMap,
		},
		"required": []string{"sorted_invoice_containers", "sorted_xml_containers"},
	}
}

// ValidateAlignedShape checks raw JSON against the aligner reply schema.
func ValidateAlignedShape(raw []byte) error {
	return validateAgainst(buildAlignedSchema(), raw)
}

func validateAgainst(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
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
