package extract

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/contracts-parser/internal/ocr"
)

// OCRAdapter exposes the ocr package as a TextExtractor.
type OCRAdapter struct {
	e      *ocr.Extractor
	logger *slog.Logger
}

func NewOCRAdapter(e *ocr.Extractor, logger *slog.Logger) *OCRAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &OCRAdapter{e: e, logger: logger}
}

func (a *OCRAdapter) Extract(ctx context.Context, path string) (TextExtractionResult, error) {
	r, err := a.e.Extract(ctx, path)
	if len(r.Warnings) > 0 {
		a.logger.Debug("extract.text.warnings", "path", path, "method", r.Method, "warnings", r.Warnings)
	}
	return TextExtractionResult{
		Text:       r.Text,
		Pages:      r.Pages,
		SourceType: r.SourceType,
		Method:     r.Method,
		Language:   r.Language,
		Duration:   r.Duration,
		Warnings:   r.Warnings,
		Confidence: r.Confidence,
	}, err
}
