package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/contracts-parser/constants"
)

// Extraction methods recorded on ExtractionResult.
const (
	MethodPDFNative = "pdf-native"
	MethodPDFText   = "pdf-text"
	MethodPDFOCR    = "pdf-ocr"
	MethodDOCX      = "docx"
	MethodPlain     = "plain"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	TessdataDir   string
	DPI           int // rasterization DPI for scanned PDFs, default 300
	MaxPages      int // 0 = no limit

	// MinTextChars is the number of printable characters below which a PDF strategy
	// is considered to have failed and the next one is tried.
	MinTextChars int
}

type ExtractionResult struct {
	Text       string
	Pages      int
	SourceType string // constants.PDF | constants.DOCX | constants.TXT
	Method     string
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	return NewExtractorWithRunner(cfg, nil, logger)
}

// NewExtractorWithRunner is NewExtractor with an explicit command runner; nil runs real binaries.
func NewExtractorWithRunner(cfg Config, runner Runner, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.MinTextChars <= 0 {
		cfg.MinTextChars = 32
	}
	if runner == nil {
		runner = execRunner{logger: logger}
	}
	return &Extractor{cfg: cfg, runner: runner, logger: logger}
}

// Extract picks a strategy based on file extension.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("ocr.extract.start", "path", path, "ext", ext)

	var (
		res ExtractionResult
		err error
	)
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		res, err = e.extractPDF(ctx, path)
	case constants.DOCX:
		res, err = e.extractDOCX(path)
	case constants.TXT:
		res, err = e.extractPlain(path)
	default:
		e.logger.Error("ocr.extract.unsupported", "path", path, "ext", ext)
		return ExtractionResult{}, fmt.Errorf("unsupported extension: %q", ext)
	}
	res.Duration = time.Since(start)
	if err != nil {
		return res, err
	}
	res.Text = Normalize(res.Text)
	res.Confidence = heuristicConfidence(res.Text)
	e.logger.Debug("ocr.extract.ok",
		"path", path,
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (e *Extractor) extractPlain(path string) (ExtractionResult, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ExtractionResult{SourceType: constants.TXT}, fmt.Errorf("read text: %w", err)
	}
	return ExtractionResult{
		Text:       string(b),
		Pages:      1,
		SourceType: constants.TXT,
		Method:     MethodPlain,
	}, nil
}
