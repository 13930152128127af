package core

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/joseph-ayodele/contracts-parser/constants"
	"github.com/joseph-ayodele/contracts-parser/internal/entity"
	"github.com/joseph-ayodele/contracts-parser/internal/extract"
	"github.com/joseph-ayodele/contracts-parser/internal/ingest"
)

// TextStage converts a discovered document to text: localize, then extract.
type TextStage struct {
	Localizer     ingest.Localizer
	TextExtractor extract.TextExtractor
	Logger        *slog.Logger
}

func NewTextStage(loc ingest.Localizer, tx extract.TextExtractor, logger *slog.Logger) *TextStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextStage{Localizer: loc, TextExtractor: tx, Logger: logger}
}

// Run returns the document text. Any error is a conversion failure. Without a
// Localizer the document URL is used as a local path.
func (s *TextStage) Run(ctx context.Context, doc entity.Document) (extract.TextExtractionResult, error) {
	if constants.MapExtToFormat(path.Ext(doc.Name)) == "" {
		return extract.TextExtractionResult{}, fmt.Errorf("unsupported format: %q", path.Ext(doc.Name))
	}

	local := doc.URL
	if s.Localizer != nil {
		p, cleanup, err := s.Localizer.Localize(ctx, doc)
		if err != nil {
			return extract.TextExtractionResult{}, fmt.Errorf("localize: %w", err)
		}
		defer cleanup()
		local = p
	}

	res, err := s.TextExtractor.Extract(ctx, local)
	if err != nil {
		return res, fmt.Errorf("extract text: %w", err)
	}
	s.Logger.Debug("processor.text.ok",
		"filename", doc.Name,
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
		"confidence", res.Confidence,
	)
	return res, nil
}
