package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SanitizeEntities drops entity entries that cannot be used and normalizes the rest,
// so the overall document can still validate:
//   - label is trimmed and upper-cased; entries without label or text are dropped
//   - numeric strings and whole floats in start/end become integers; anything else is removed
//   - a missing or null "entities" becomes an empty array
func SanitizeEntities(raw []byte) ([]byte, []string, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	var dropped []string
	items, _ := m["entities"].([]any)
	kept := make([]any, 0, len(items))
	for i, it := range items {
		e, ok := it.(map[string]any)
		if !ok {
			dropped = append(dropped, fmt.Sprintf("entities[%d](type)", i))
			continue
		}
		label, _ := e["label"].(string)
		text, _ := e["text"].(string)
		label = strings.ToUpper(strings.TrimSpace(label))
		if label == "" || strings.TrimSpace(text) == "" {
			dropped = append(dropped, fmt.Sprintf("entities[%d](empty)", i))
			continue
		}
		e["label"] = label
		for _, k := range []string{"start", "end"} {
			v, present := e[k]
			if !present {
				continue
			}
			if n, ok := coerceOffset(v); ok {
				e[k] = n
			} else {
				delete(e, k)
				dropped = append(dropped, fmt.Sprintf("entities[%d].%s", i, k))
			}
		}
		kept = append(kept, e)
	}
	out, err := json.Marshal(map[string]any{"entities": kept})
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	return out, dropped, nil
}

func coerceOffset(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		if t < 0 || t != math.Trunc(t) {
			return 0, false
		}
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil || n < 0 {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
