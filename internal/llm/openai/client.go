package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/contracts-parser/internal/llm"
)

// ExtractEntities implements llm.EntityExtractor using chat/completions in JSON mode.
func (c *Client) ExtractEntities(ctx context.Context, text string) ([]llm.EntitySpan, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Debug("llm.entities.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"text_len", len(text),
	)

	schema := llm.BuildEntityJSONSchema()
	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildSystemPrompt()},
			{"role": "user", "content": llm.BuildUserPrompt(text) + "\n\nReturn ONLY JSON that matches the provided schema."},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, status, err := llm.SendJSON(ctx, c.http, endpoint, body, c.cfg.headers(), c.logger)
	if err != nil {
		c.logger.Error("llm.entities.http_error",
			"req_id", rid, "status", status, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, raw, fmt.Errorf("openai: %w", err)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.entities.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
		)
		return nil, raw, fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.entities.no_choices", "req_id", rid, "raw", string(raw))
		return nil, raw, fmt.Errorf("no choices in openai response")
	}
	content := []byte(strings.TrimSpace(cc.Choices[0].Message.Content))

	spans, content, dropped, err := llm.DecodeEntities(content, c.cfg.LenientOptional)
	if err != nil {
		c.logger.Error("llm.entities.schema_validation_failed",
			"req_id", rid, "error", err, "content", string(content),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, content, err
	}
	if len(dropped) > 0 {
		c.logger.Warn("llm.entities.lenient_sanitize_applied", "req_id", rid, "dropped", dropped)
	}

	c.logger.Debug("llm.entities.ok",
		"req_id", rid,
		"entities", len(spans),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return spans, content, nil
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
