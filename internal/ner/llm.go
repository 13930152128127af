package ner

import (
	"context"
	"fmt"

	"github.com/joseph-ayodele/contracts-parser/internal/llm"
)

// LLMRecognizer delegates tagging to a chat model.
type LLMRecognizer struct {
	extractor llm.EntityExtractor
}

func NewLLMRecognizer(e llm.EntityExtractor) *LLMRecognizer {
	return &LLMRecognizer{extractor: e}
}

func (l *LLMRecognizer) Recognize(ctx context.Context, text string) ([]Entity, error) {
	spans, _, err := l.extractor.ExtractEntities(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("llm entities: %w", err)
	}
	return fromSpans(text, spans), nil
}
