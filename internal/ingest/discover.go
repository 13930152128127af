package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/url"

	"github.com/joseph-ayodele/contracts-parser/constants"
	"github.com/joseph-ayodele/contracts-parser/internal/common"
	"github.com/joseph-ayodele/contracts-parser/internal/entity"
)

type DiscoverConfig struct {
	Extensions []string // lowercase, without '.'; empty -> constants.DefaultExtensions
	Recursive  bool
	SkipHidden bool
}

// Discoverer lists an input location through afs, so local paths, file:// and any
// registered scheme (mem://, s3://, gs://) are handled alike.
type Discoverer struct {
	fs     afs.Service
	exts   map[string]struct{}
	cfg    DiscoverConfig
	logger *slog.Logger
}

func NewDiscoverer(fs afs.Service, cfg DiscoverConfig, logger *slog.Logger) *Discoverer {
	if fs == nil {
		fs = afs.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Discoverer{fs: fs, exts: constants.ExtensionSet(cfg.Extensions), cfg: cfg, logger: logger}
}

// Discover returns the documents at location sorted by name. A missing or empty
// location string is ErrInvalidInput; an existing location with no documents is
// an empty slice and a nil error.
func (d *Discoverer) Discover(ctx context.Context, location string) ([]entity.Document, DirStats, error) {
	var stats DirStats
	if strings.TrimSpace(location) == "" {
		return nil, stats, common.WrapError(common.ErrInvalidInput, "input location is required")
	}
	norm, err := NormalizeLocation(location)
	if err != nil {
		return nil, stats, err
	}
	ok, err := d.fs.Exists(ctx, norm)
	if err != nil {
		return nil, stats, fmt.Errorf("check %s: %w", location, err)
	}
	if !ok {
		return nil, stats, fmt.Errorf("%w: input location %q does not exist", common.ErrInvalidInput, location)
	}

	var docs []entity.Document
	if err := d.list(ctx, norm, "", &docs, &stats); err != nil {
		return nil, stats, err
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })

	d.logger.Debug("ingest.discover.ok",
		"location", location,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"hidden", stats.Hidden,
	)
	return docs, stats, nil
}

func (d *Discoverer) list(ctx context.Context, dirURL, prefix string, docs *[]entity.Document, stats *DirStats) error {
	objects, err := d.fs.List(ctx, dirURL)
	if err != nil {
		return fmt.Errorf("list %s: %w", dirURL, err)
	}
	self := strings.TrimRight(url.Path(dirURL), "/")
	for i, object := range objects {
		// afs lists the directory itself first
		if object.IsDir() && (strings.TrimRight(url.Path(object.URL()), "/") == self ||
			(i == 0 && object.Name() == path.Base(self))) {
			continue
		}
		stats.Scanned++
		name := object.Name()
		if d.cfg.SkipHidden && isHidden(name) {
			stats.Hidden++
			continue
		}
		if object.IsDir() {
			stats.Directories++
			if d.cfg.Recursive {
				if err := d.list(ctx, url.Join(dirURL, name), path.Join(prefix, name), docs, stats); err != nil {
					return err
				}
			}
			continue
		}
		if _, ok := d.exts[constants.NormalizeExt(filepath.Ext(name))]; !ok {
			continue
		}
		stats.Matched++
		*docs = append(*docs, entity.Document{
			Name: path.Join(prefix, name),
			URL:  object.URL(),
			Size: object.Size(),
		})
	}
	return nil
}

// NormalizeLocation turns a relative or absolute OS path into a file:// URL and
// leaves URLs with a scheme untouched.
func NormalizeLocation(location string) (string, error) {
	norm := location
	if url.Scheme(norm, "") == "" && url.IsRelative(norm) {
		abs, err := filepath.Abs(norm)
		if err != nil {
			return "", fmt.Errorf("absolute path for %s: %w", location, err)
		}
		norm = abs
	}
	if url.Scheme(norm, "") == "" && !url.IsRelative(norm) {
		norm = url.ToFileURL(norm)
	}
	return norm, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(path.Base(name), ".")
}
