package llm

// BuildEntityJSONSchema returns the response schema as a generic map. It is sent to
// the model as an output constraint and used locally to validate every response.
func BuildEntityJSONSchema() map[string]any {
	span := map[string]any{
		"type":                 "object",
		"additionalProperties": true,
		"properties": map[string]any{
			"label": map[string]any{"type": "string", "minLength": 1},
			"text":  map[string]any{"type": "string", "minLength": 1},
			"start": map[string]any{"type": "integer", "minimum": 0},
			"end":   map[string]any{"type": "integer", "minimum": 0},
		},
		"required": []string{"label", "text"},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"entities": map[string]any{"type": "array", "items": span},
		},
		"required": []string{"entities"},
	}
}
