package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
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

// DecodeEntities validates raw against the entity schema, retrying once on the
// sanitized document when lenient is set.
func DecodeEntities(raw []byte, lenient bool) ([]EntitySpan, []byte, []string, error) {
	schema := BuildEntityJSONSchema()
	var dropped []string
	if err := ValidateJSONAgainstSchema(schema, raw); err != nil {
		if !lenient {
			return nil, raw, nil, fmt.Errorf("schema validation failed: %w", err)
		}
		cleaned, d, sErr := SanitizeEntities(raw)
		if sErr != nil {
			return nil, raw, nil, fmt.Errorf("sanitize failed: %w", sErr)
		}
		if vErr := ValidateJSONAgainstSchema(schema, cleaned); vErr != nil {
			return nil, cleaned, d, fmt.Errorf("schema validation failed: %w", vErr)
		}
		raw, dropped = cleaned, d
	}
	var resp EntityResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, raw, dropped, fmt.Errorf("unmarshal entities: %w", err)
	}
	return resp.Entities, raw, dropped, nil
}
