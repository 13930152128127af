package ingest

import (
	"context"

	"github.com/joseph-ayodele/contracts-parser/internal/entity"
)

// DirStats summarizes one discovery pass.
type DirStats struct {
	Scanned     uint32 // every listed entry, directories included
	Matched     uint32 // files with a document-type extension
	Hidden      uint32
	Directories uint32
}

// Source enumerates the documents at an input location.
type Source interface {
	Discover(ctx context.Context, location string) ([]entity.Document, DirStats, error)
}

// Localizer makes a discovered document readable as a local file. cleanup is never nil.
type Localizer interface {
	Localize(ctx context.Context, doc entity.Document) (path string, cleanup func(), err error)
}
