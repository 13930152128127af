package ocr

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/contracts-parser/constants"
)

// extractPDF tries the in-process reader, then pdftotext, then rasterise+tesseract,
// stopping at the first strategy that yields enough text.
func (e *Extractor) extractPDF(ctx context.Context, path string) (ExtractionResult, error) {
	res := ExtractionResult{SourceType: constants.PDF}

	text, pages, err := pdfNative(path)
	if err == nil && printableCount(text) >= e.cfg.MinTextChars {
		res.Text, res.Pages, res.Method = text, pages, MethodPDFNative
		return res, nil
	}
	if err != nil {
		res.Warnings = append(res.Warnings, "pdf-native: "+err.Error())
	}
	if ctx.Err() != nil {
		return res, ctx.Err()
	}

	text, pages, warns, err := e.pdfToText(ctx, path)
	res.Warnings = append(res.Warnings, warns...)
	if err == nil && printableCount(text) >= e.cfg.MinTextChars {
		res.Text, res.Pages, res.Method = text, pages, MethodPDFText
		return res, nil
	}
	if err != nil {
		e.logger.Warn("ocr.pdftotext.failed", "path", path, "error", err)
		res.Warnings = append(res.Warnings, "pdf-text: "+err.Error())
	}
	if ctx.Err() != nil {
		return res, ctx.Err()
	}

	e.logger.Info("ocr.pdf.scanned", "path", path)
	text, pages, warns, err = e.pdfToOCR(ctx, path)
	res.Warnings = append(res.Warnings, warns...)
	if err != nil {
		return res, fmt.Errorf("pdf ocr: %w", err)
	}
	res.Text, res.Pages, res.Method, res.Language = text, pages, MethodPDFOCR, e.cfg.TesseractLang
	return res, nil
}

// pdfNative reads the text layer in-process. The reader panics on some malformed
// cross-reference tables, so panics are returned as errors.
func pdfNative(path string) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", 0, err
	}
	out, err := io.ReadAll(reader)
	if err != nil {
		return "", 0, err
	}
	return string(out), r.NumPage(), nil
}

func (e *Extractor) pdfToText(ctx context.Context, path string) (text string, pages int, warnings []string, err error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", 0, nonEmpty(string(errb)), err
	}
	text = string(out)
	// form feed separates pages
	pages = 1 + strings.Count(strings.TrimRight(text, "\f\n"), "\f")
	return text, pages, nil, nil
}

func (e *Extractor) pdfToOCR(ctx context.Context, path string) (text string, pages int, warnings []string, err error) {
	tmpDir, err := os.MkdirTemp("", "cp-pp-*")
	if err != nil {
		return "", 0, nil, err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			e.logger.Warn("ocr.tmpdir.cleanup_failed", "dir", tmpDir, "error", err)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", strconv.Itoa(e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return "", 0, nonEmpty(string(errb)), err
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return "", 0, []string{"pdftoppm produced no images"}, fmt.Errorf("no pages rendered")
	}

	var b strings.Builder
	var warns []string
	for _, img := range matches {
		txt, err := e.tesseractOCR(ctx, img)
		if err != nil {
			if ctx.Err() != nil {
				return "", 0, warns, ctx.Err()
			}
			warns = append(warns, err.Error())
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n")
		}
		b.WriteString(txt)
	}
	if b.Len() == 0 {
		return "", len(matches), warns, fmt.Errorf("tesseract recognised no text on %d pages", len(matches))
	}
	return b.String(), len(matches), warns, nil
}

func (e *Extractor) tesseractOCR(ctx context.Context, path string) (string, error) {
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract %s: %w: %s", filepath.Base(path), err, strings.TrimSpace(string(errb)))
	}
	return reBoxNoise.ReplaceAllString(string(out), ""), nil
}

func printableCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			n++
		}
	}
	return n
}

func nonEmpty(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return []string{s}
}
