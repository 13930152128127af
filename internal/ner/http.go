package ner

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/joseph-ayodele/contracts-parser/internal/llm"
)

// HTTPRecognizer calls a spaCy-style sidecar: POST <endpoint>/ents with
// {"text","model"}, answered by {"entities":[{"label","text","start","end"}]}.
type HTTPRecognizer struct {
	endpoint string
	model    string
	client   *http.Client
	logger   *slog.Logger
}

func NewHTTPRecognizer(endpoint, model string, timeout time.Duration, logger *slog.Logger) *HTTPRecognizer {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPRecognizer{
		endpoint: strings.TrimRight(endpoint, "/") + "/ents",
		model:    model,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

func (h *HTTPRecognizer) Recognize(ctx context.Context, text string) ([]Entity, error) {
	body := map[string]string{"text": text, "model": h.model}
	raw, status, err := llm.SendJSON(ctx, h.client, h.endpoint, body, nil, h.logger)
	if err != nil {
		return nil, fmt.Errorf("ner sidecar (status %d): %w", status, err)
	}
	spans, _, dropped, err := llm.DecodeEntities(raw, true)
	if err != nil {
		return nil, fmt.Errorf("ner sidecar response: %w", err)
	}
	if len(dropped) > 0 {
		h.logger.Warn("ner.http.sanitized", "dropped", dropped)
	}
	return fromSpans(text, spans), nil
}
