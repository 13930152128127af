// Package pipeline runs a batch: discover documents, fan them out to the worker
// pool, collect outcomes as they complete and assemble the output table.
package pipeline

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/contracts-parser/constants"
	"github.com/joseph-ayodele/contracts-parser/internal/async"
	"github.com/joseph-ayodele/contracts-parser/internal/common"
	coreasync "github.com/joseph-ayodele/contracts-parser/internal/core/async"
	"github.com/joseph-ayodele/contracts-parser/internal/entity"
	"github.com/joseph-ayodele/contracts-parser/internal/ingest"
)

// ProgressFunc observes completions: done of total, and the document just finished.
type ProgressFunc func(done, total int, filename string)

// BatchResult is the output of one run. Rows follow Columns; records are sorted
// by filename. NoDocuments distinguishes "nothing to process" from "everything failed".
type BatchResult struct {
	RunID       uuid.UUID
	Columns     []string
	Rows        [][]any
	Records     []entity.Record
	Run         entity.Run
	NoDocuments bool
	Omitted     []string // documents whose task could not be collected
}

// Empty reports whether the table has no rows.
func (r *BatchResult) Empty() bool {
	return r == nil || len(r.Rows) == 0
}

type Pipeline struct {
	source   ingest.Source
	handler  coreasync.Handler
	logger   *slog.Logger
	workers  int
	timeout  time.Duration
	progress ProgressFunc
	onFound  func(docs []entity.Document)
	columns  []string
}

type Option func(*Pipeline)

func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

func WithTaskTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d >= 0 {
			p.timeout = d
		}
	}
}

func WithProgress(fn ProgressFunc) Option {
	return func(p *Pipeline) { p.progress = fn }
}

// WithDiscovered is called once per run with the documents about to be processed.
// It is not called when discovery finds nothing.
func WithDiscovered(fn func(docs []entity.Document)) Option {
	return func(p *Pipeline) { p.onFound = fn }
}

// WithColumns overrides the table schema; every column must be a record field.
func WithColumns(cols []string) Option {
	return func(p *Pipeline) {
		if len(cols) > 0 {
			p.columns = cols
		}
	}
}

func New(source ingest.Source, handler coreasync.Handler, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		source:  source,
		handler: handler,
		logger:  logger,
		workers: constants.DefaultWorkers,
		columns: constants.Columns,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run processes every document at location. It returns an error only for an
// invalid location or a schema mismatch; per-document failures are rows.
func (p *Pipeline) Run(ctx context.Context, location string) (*BatchResult, error) {
	run := entity.Run{ID: uuid.New(), Input: location, StartedAt: time.Now().UTC()}
	ctx = common.WithRunID(ctx, run.ID.String())
	res := &BatchResult{RunID: run.ID, Columns: p.columns}

	docs, stats, err := p.source.Discover(ctx, location)
	if err != nil {
		p.logger.Error("pipeline.discover.failed", "run_id", run.ID, "location", location, "error", err)
		return nil, err
	}
	run.Discovered = len(docs)
	if len(docs) == 0 {
		p.logger.Warn("pipeline.run.no_documents", "run_id", run.ID, "location", location, "scanned", stats.Scanned)
		run.FinishedAt = time.Now().UTC()
		res.Run = run
		res.NoDocuments = true
		return res, nil
	}
	if p.onFound != nil {
		p.onFound(docs)
	}
	p.logger.Info("pipeline.run.start", "run_id", run.ID, "location", location, "documents", len(docs), "workers", p.workers)

	q := coreasync.NewProcessorQueue(p.handler, p.logger,
		coreasync.WithWorkers(p.workers),
		coreasync.WithQueueSize(len(docs)),
		coreasync.WithProcessTimeout(p.timeout),
	)
	for i, d := range docs {
		job := async.Job{Doc: d, Seq: i, RunID: run.ID.String()}
		if err := q.Enqueue(ctx, job); err != nil {
			p.logger.Error("pipeline.task.submit_failed", "run_id", run.ID, "filename", d.Name, "error", err)
			res.Omitted = append(res.Omitted, d.Name)
			p.report(len(res.Omitted), len(docs), d.Name)
		}
	}
	go q.Shutdown(context.Background())

	records := make([]entity.Record, 0, len(docs))
	done := len(res.Omitted)
	for c := range q.Results() {
		done++
		if c.Err != nil {
			p.logger.Error("pipeline.task.collect_failed", "run_id", run.ID, "filename", c.Job.Doc.Name, "error", c.Err)
			res.Omitted = append(res.Omitted, c.Job.Doc.Name)
		} else {
			records = append(records, c.Outcome.Record)
			if c.Outcome.OK() {
				run.Succeeded++
			} else {
				run.Failed++
			}
		}
		p.report(done, len(docs), c.Job.Doc.Name)
	}
	run.Omitted = len(res.Omitted)

	sort.SliceStable(records, func(i, j int) bool { return records[i].Filename < records[j].Filename })
	rows, err := Assemble(records, p.columns)
	if err != nil {
		p.logger.Error("pipeline.assemble.failed", "run_id", run.ID, "error", err)
		return nil, err
	}
	run.FinishedAt = time.Now().UTC()
	res.Records = records
	res.Rows = rows
	res.Run = run

	p.logger.Info("pipeline.run.done",
		"run_id", run.ID,
		"documents", run.Discovered,
		"succeeded", run.Succeeded,
		"failed", run.Failed,
		"omitted", run.Omitted,
		"elapsed_ms", run.Duration().Milliseconds(),
	)
	return res, nil
}

func (p *Pipeline) report(done, total int, filename string) {
	if p.progress != nil {
		p.progress(done, total, filename)
	}
}
