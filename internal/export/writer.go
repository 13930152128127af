package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/contracts-parser/internal/common"
)

// Writer persists a Table to a file, choosing the format from the extension.
type Writer struct {
	logger *slog.Logger
}

func NewWriter(logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{logger: logger}
}

// Format returns "xlsx" for .xlsx paths and "csv" for everything else.
func Format(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return "xlsx"
	}
	return "csv"
}

// Write creates parent directories and writes t to path, replacing any existing file.
func (w *Writer) Write(ctx context.Context, t Table, path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: output path is empty", common.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	format := Format(path)

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			w.logger.Error("export.mkdir.failed", "dir", dir, "error", err)
			return common.WrapError(err, "create output directory")
		}
	}

	f, err := os.Create(path)
	if err != nil {
		w.logger.Error("export.create.failed", "path", path, "error", err)
		return common.WrapError(err, "create output file")
	}

	switch format {
	case "xlsx":
		err = WriteXLSX(f, t)
	default:
		err = WriteCSV(f, t)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		w.logger.Error("export.write.failed", "path", path, "format", format, "error", err)
		return err
	}

	w.logger.Info("export."+format+".ok",
		"path", path,
		"rows", t.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
