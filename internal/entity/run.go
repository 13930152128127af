package entity

import (
	"time"

	"github.com/google/uuid"
)

// Run summarises one batch execution.
type Run struct {
	ID         uuid.UUID
	Input      string
	StartedAt  time.Time
	FinishedAt time.Time
	Discovered int
	Succeeded  int
	Failed     int
	Omitted    int
}

// Duration is the wall-clock time of the run.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
