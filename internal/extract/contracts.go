package extract

import (
	"context"
	"time"
)

// TextExtractor is the document-to-text stage: file -> text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text       string
	Pages      int
	SourceType string // "PDF" | "DOCX" | "TXT"
	Method     string // "pdf-native" | "pdf-text" | "pdf-ocr" | "docx" | "plain"
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

// TextExtractorFunc adapts a plain function to TextExtractor.
type TextExtractorFunc func(ctx context.Context, path string) (TextExtractionResult, error)

func (f TextExtractorFunc) Extract(ctx context.Context, path string) (TextExtractionResult, error) {
	return f(ctx, path)
}
