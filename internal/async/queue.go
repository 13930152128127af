package async

import (
	"context"
	"time"

	"github.com/joseph-ayodele/contracts-parser/internal/entity"
)

// Job is one document submitted for extraction.
type Job struct {
	Doc         entity.Document
	Seq         int // discovery position
	SubmittedAt time.Time
	RunID       string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
