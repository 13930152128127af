package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/contracts-parser/constants"
	"github.com/joseph-ayodele/contracts-parser/internal/common"
	"github.com/joseph-ayodele/contracts-parser/internal/entity"
)

// Processor is the per-document failure boundary: text stage, then fields stage.
type Processor struct {
	logger *slog.Logger
	text   *TextStage
	fields *FieldsStage
}

func NewProcessor(logger *slog.Logger, text *TextStage, fields *FieldsStage) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{logger: logger, text: text, fields: fields}
}

// Process never fails: errors and panics become a null-filled record that keeps
// the filename, classified as a conversion or extraction failure.
func (p *Processor) Process(ctx context.Context, doc entity.Document) (out entity.Outcome) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out = p.fail(doc.Name, constants.ErrorKindExtraction, fmt.Errorf("%w: panic: %v", common.ErrExtraction, r))
		}
	}()

	res, err := p.text.Run(ctx, doc)
	if err != nil {
		return p.fail(doc.Name, constants.ErrorKindConversion, fmt.Errorf("%w: %w", common.ErrConversion, err))
	}

	rec, err := p.fields.Run(ctx, doc.Name, res.Text)
	if err != nil {
		return p.fail(doc.Name, constants.ErrorKindExtraction, fmt.Errorf("%w: %w", common.ErrExtraction, err))
	}

	p.logger.Debug("processor.document.ok",
		"filename", doc.Name,
		"run_id", common.RunIDFromContext(ctx),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return entity.Succeeded(rec)
}

// ExtractText runs only the text stage.
func (p *Processor) ExtractText(ctx context.Context, doc entity.Document) (string, error) {
	res, err := p.text.Run(ctx, doc)
	return res.Text, err
}

// Fields runs only the fields stage over already converted text.
func (p *Processor) Fields(ctx context.Context, filename, text string) (entity.Record, error) {
	return p.fields.Run(ctx, filename, text)
}

func (p *Processor) fail(filename string, kind constants.ErrorKind, err error) entity.Outcome {
	p.logger.Error("processor.document.failed",
		"filename", filename,
		"kind", string(kind),
		"error", err,
	)
	return entity.Failed(filename, kind, err)
}
