package main

import (
	"context"
	"log/slog"

	"github.com/viant/afs"

	"github.com/joseph-ayodele/contracts-parser/internal/common"
	"github.com/joseph-ayodele/contracts-parser/internal/core"
	"github.com/joseph-ayodele/contracts-parser/internal/core/pipeline"
	"github.com/joseph-ayodele/contracts-parser/internal/export"
	"github.com/joseph-ayodele/contracts-parser/internal/extract"
	"github.com/joseph-ayodele/contracts-parser/internal/ingest"
	"github.com/joseph-ayodele/contracts-parser/internal/ner"
	"github.com/joseph-ayodele/contracts-parser/internal/ocr"
	"github.com/joseph-ayodele/contracts-parser/internal/repository"
)

// app is the wired object graph for one command invocation.
type app struct {
	cfg        *common.Config
	logger     *slog.Logger
	fs         afs.Service
	recognizer ner.Recognizer
	text       *core.TextStage
	processor  *core.Processor
	source     *ingest.Discoverer
	writer     *export.Writer
	db         *repository.DB
	runs       repository.RunRepository
	closers    []func()
}

// newApp builds the document extractor. withStore also opens the run store when
// a DSN is configured.
func newApp(ctx context.Context, cfg *common.Config, logger *slog.Logger, withStore bool) (*app, error) {
	a := &app{cfg: cfg, logger: logger, fs: afs.New(), writer: export.NewWriter(logger)}

	sections, err := cfg.Sections()
	if err != nil {
		return nil, err
	}

	rec, closeRec, err := ner.New(ctx, cfg.NER, cfg.Cache, logger)
	if err != nil {
		logger.Error("ner.init.failed", "provider", cfg.NER.Provider, "error", err)
		return nil, err
	}
	a.recognizer = rec
	a.closers = append(a.closers, func() {
		if err := closeRec(); err != nil {
			logger.Warn("ner.close.failed", "error", err)
		}
	})

	extractor := ocr.NewExtractor(ocr.Config{
		Pdftotext:     cfg.OCR.Pdftotext,
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		DPI:           cfg.OCR.DPI,
		MinTextChars:  cfg.OCR.MinTextChars,
	}, logger)
	a.text = core.NewTextStage(ingest.NewLocalizer(a.fs, logger), extract.NewOCRAdapter(extractor, logger), logger)

	fields, err := core.NewFieldsStage(rec, core.FieldsConfig{Sections: sections, WindowSize: cfg.Pipeline.WindowSize}, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.processor = core.NewProcessor(logger, a.text, fields)

	a.source = ingest.NewDiscoverer(a.fs, ingest.DiscoverConfig{
		Extensions: cfg.Pipeline.Extensions,
		Recursive:  cfg.Pipeline.Recursive,
		SkipHidden: cfg.Pipeline.SkipHidden,
	}, logger)

	if withStore && cfg.Database.DSN != "" {
		if err := a.openStore(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	db, err := repository.Open(ctx, a.cfg.Database, a.logger)
	if err != nil {
		return err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return err
	}
	a.db = db
	a.runs = repository.NewRunRepository(db, a.logger)
	a.closers = append(a.closers, db.Close)
	return nil
}

func (a *app) pipeline(opts ...pipeline.Option) *pipeline.Pipeline {
	base := []pipeline.Option{
		pipeline.WithWorkers(a.cfg.Pipeline.Workers),
		pipeline.WithTaskTimeout(a.cfg.Pipeline.TaskTimeout),
	}
	return pipeline.New(a.source, a.processor, a.logger, append(base, opts...)...)
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
