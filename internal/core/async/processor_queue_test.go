package async

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/contracts-parser/internal/async"
	"github.com/joseph-ayodele/contracts-parser/internal/common"
	"github.com/joseph-ayodele/contracts-parser/internal/entity"
)

var _ async.Queue = (*ProcessorQueue)(nil)

type handlerFunc func(ctx context.Context, doc entity.Document) entity.Outcome

func (f handlerFunc) Process(ctx context.Context, doc entity.Document) entity.Outcome {
	return f(ctx, doc)
}

func drain(q *ProcessorQueue) []Completion {
	var out []Completion
	for c := range q.Results() {
		out = append(out, c)
	}
	return out
}

func TestQueueBoundsConcurrency(t *testing.T) {
	var running, peak atomic.Int32
	h := handlerFunc(func(ctx context.Context, doc entity.Document) entity.Outcome {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		running.Add(-1)
		assert.Equal(t, doc.Name, common.FilenameFromContext(ctx))
		return entity.Succeeded(entity.Record{Filename: doc.Name})
	})

	q := NewProcessorQueue(h, nil, WithWorkers(3), WithQueueSize(20))
	for i := 0; i < 20; i++ {
		require.NoError(t, q.Enqueue(context.Background(), async.Job{Doc: entity.Document{Name: fmt.Sprintf("%02d.pdf", i)}, Seq: i}))
	}
	go q.Shutdown(context.Background())

	got := drain(q)
	assert.Len(t, got, 20)
	assert.LessOrEqual(t, peak.Load(), int32(3))
	for _, c := range got {
		assert.NoError(t, c.Err)
		assert.Equal(t, c.Job.Doc.Name, c.Outcome.Record.Filename)
	}
}

func TestQueueReportsPanicAsCollectionError(t *testing.T) {
	h := handlerFunc(func(_ context.Context, doc entity.Document) entity.Outcome {
		if doc.Name == "boom.pdf" {
			panic("corrupted task")
		}
		return entity.Succeeded(entity.Record{Filename: doc.Name})
	})
	q := NewProcessorQueue(h, nil, WithWorkers(2), WithQueueSize(4))
	for _, n := range []string{"a.pdf", "boom.pdf", "b.pdf"} {
		require.NoError(t, q.Enqueue(context.Background(), async.Job{Doc: entity.Document{Name: n}}))
	}
	q.Shutdown(context.Background())

	var failed []string
	for _, c := range drain(q) {
		if c.Err != nil {
			assert.ErrorIs(t, c.Err, common.ErrTaskFailed)
			failed = append(failed, c.Job.Doc.Name)
		}
	}
	assert.Equal(t, []string{"boom.pdf"}, failed)
}

func TestQueueCancelledJobsAreNotRun(t *testing.T) {
	var calls atomic.Int32
	h := handlerFunc(func(_ context.Context, doc entity.Document) entity.Outcome {
		calls.Add(1)
		return entity.Succeeded(entity.Record{Filename: doc.Name})
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	q := NewProcessorQueue(h, nil, WithWorkers(1), WithQueueSize(2))
	require.NoError(t, q.Enqueue(ctx, async.Job{Doc: entity.Document{Name: "a.pdf"}}))
	q.Shutdown(context.Background())

	got := drain(q)
	require.Len(t, got, 1)
	assert.ErrorIs(t, got[0].Err, context.Canceled)
	assert.ErrorIs(t, got[0].Err, common.ErrTaskFailed)
	assert.Zero(t, calls.Load())
}

func TestQueueTimeoutReachesHandler(t *testing.T) {
	h := handlerFunc(func(ctx context.Context, doc entity.Document) entity.Outcome {
		<-ctx.Done()
		return entity.Failed(doc.Name, "CONVERSION", ctx.Err())
	})
	q := NewProcessorQueue(h, nil, WithWorkers(1), WithProcessTimeout(20*time.Millisecond))
	require.NoError(t, q.Enqueue(context.Background(), async.Job{Doc: entity.Document{Name: "slow.pdf"}}))
	q.Shutdown(context.Background())

	got := drain(q)
	require.Len(t, got, 1)
	assert.NoError(t, got[0].Err)
	assert.ErrorIs(t, got[0].Outcome.Err, context.DeadlineExceeded)
}

func TestQueueRejectsAfterShutdown(t *testing.T) {
	q := NewProcessorQueue(handlerFunc(func(_ context.Context, doc entity.Document) entity.Outcome {
		return entity.Succeeded(entity.Record{Filename: doc.Name})
	}), nil)
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())

	err := q.Enqueue(context.Background(), async.Job{Doc: entity.Document{Name: "late.pdf"}})
	assert.ErrorIs(t, err, common.ErrQueueClosed)
	assert.Empty(t, drain(q))
}
