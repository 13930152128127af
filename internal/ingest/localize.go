package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"

	"github.com/viant/afs"
	"github.com/viant/afs/url"

	"github.com/joseph-ayodele/contracts-parser/internal/entity"
)

const fileScheme = "file"

// AFSLocalizer returns local paths for file:// documents and downloads every
// other scheme to a temporary file that keeps the document's extension.
type AFSLocalizer struct {
	fs     afs.Service
	logger *slog.Logger
}

func NewLocalizer(fs afs.Service, logger *slog.Logger) *AFSLocalizer {
	if fs == nil {
		fs = afs.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AFSLocalizer{fs: fs, logger: logger}
}

func (l *AFSLocalizer) Localize(ctx context.Context, doc entity.Document) (string, func(), error) {
	noop := func() {}
	if url.Scheme(doc.URL, fileScheme) == fileScheme {
		return url.Path(doc.URL), noop, nil
	}

	data, err := l.fs.DownloadWithURL(ctx, doc.URL)
	if err != nil {
		return "", noop, fmt.Errorf("download %s: %w", doc.URL, err)
	}
	f, err := os.CreateTemp("", "cp-doc-*"+path.Ext(doc.Name))
	if err != nil {
		return "", noop, fmt.Errorf("temp file: %w", err)
	}
	cleanup := func() {
		if err := os.Remove(f.Name()); err != nil && !os.IsNotExist(err) {
			l.logger.Warn("ingest.localize.cleanup_failed", "path", f.Name(), "error", err)
		}
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		cleanup()
		return "", noop, fmt.Errorf("write %s: %w", f.Name(), err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", noop, fmt.Errorf("close %s: %w", f.Name(), err)
	}
	l.logger.Debug("ingest.localize.downloaded", "url", doc.URL, "path", f.Name(), "bytes", len(data))
	return f.Name(), cleanup, nil
}
