package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/contracts-parser/constants"
	"github.com/joseph-ayodele/contracts-parser/internal/common"
	"github.com/joseph-ayodele/contracts-parser/internal/entity"
)

type RunRepository interface {
	SaveRun(ctx context.Context, run entity.Run, records []entity.Record) error
	LatestRun(ctx context.Context) (*entity.Run, error)
	ListRuns(ctx context.Context, limit int) ([]entity.Run, error)
	ListRecords(ctx context.Context, runID uuid.UUID) ([]entity.Record, error)
}

type runRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewRunRepository(db *DB, logger *slog.Logger) RunRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &runRepository{db: db, logger: logger}
}

// Fixed-width UTC timestamps so that text order is time order.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

func parseTime(v string) (time.Time, error) {
	t, err := time.Parse(tsLayout, v)
	if err != nil {
		return time.Parse(time.RFC3339Nano, v)
	}
	return t, nil
}

// SaveRun stores the run and its records in one transaction.
func (r *runRepository) SaveRun(ctx context.Context, run entity.Run, records []entity.Record) error {
	if run.ID == uuid.Nil {
		return fmt.Errorf("%w: run id is required", common.ErrInvalidInput)
	}
	tx, err := r.db.SQL.BeginTx(ctx, nil)
	if err != nil {
		return common.WrapError(err, "begin")
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, r.db.Rebind(`INSERT INTO extraction_run
		(id, input, started_at, finished_at, discovered, succeeded, failed, omitted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		run.ID.String(), run.Input,
		run.StartedAt.UTC().Format(tsLayout), run.FinishedAt.UTC().Format(tsLayout),
		run.Discovered, run.Succeeded, run.Failed, run.Omitted,
	)
	if err != nil {
		r.logger.Error("run.save.failed", "run_id", run.ID, "error", err)
		return common.WrapError(err, "insert run")
	}

	stmt, err := tx.PrepareContext(ctx, r.db.Rebind(`INSERT INTO extraction_record
		(run_id, filename, name, date, work, initial_payment, second_payment, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return common.WrapError(err, "prepare record insert")
	}
	defer stmt.Close()

	for _, rec := range records {
		work, err := encodeWork(rec.Work)
		if err != nil {
			return common.WrapError(err, "encode work")
		}
		status := rec.Status
		if status == "" {
			status = constants.RecordStatusOK
		}
		if _, err := stmt.ExecContext(ctx,
			run.ID.String(), rec.Filename,
			nullString(rec.Name), nullString(rec.Date), work,
			nullString(rec.InitialPayment), nullString(rec.SecondPayment),
			string(status), rec.Error,
		); err != nil {
			r.logger.Error("run.save.record_failed", "run_id", run.ID, "filename", rec.Filename, "error", err)
			return common.WrapError(err, "insert record")
		}
	}

	if err := tx.Commit(); err != nil {
		return common.WrapError(err, "commit")
	}
	r.logger.Info("run.save.ok", "run_id", run.ID, "records", len(records))
	return nil
}

const runColumns = `id, input, started_at, finished_at, discovered, succeeded, failed, omitted`

// LatestRun returns the most recently started run, or ErrNotFound.
func (r *runRepository) LatestRun(ctx context.Context) (*entity.Run, error) {
	runs, err := r.ListRuns(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, common.ErrNotFound
	}
	return &runs[0], nil
}

// ListRuns returns up to limit runs, newest first.
func (r *runRepository) ListRuns(ctx context.Context, limit int) ([]entity.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.SQL.QueryContext(ctx,
		r.db.Rebind(`SELECT `+runColumns+` FROM extraction_run ORDER BY started_at DESC LIMIT ?`), limit)
	if err != nil {
		r.logger.Error("run.list.failed", "error", err)
		return nil, common.WrapError(err, "list runs")
	}
	defer rows.Close()

	var out []entity.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// ListRecords returns a run's records ordered by filename.
func (r *runRepository) ListRecords(ctx context.Context, runID uuid.UUID) ([]entity.Record, error) {
	rows, err := r.db.SQL.QueryContext(ctx, r.db.Rebind(`SELECT
		filename, name, date, work, initial_payment, second_payment, status, error
		FROM extraction_record WHERE run_id = ? ORDER BY filename`), runID.String())
	if err != nil {
		r.logger.Error("run.records.failed", "run_id", runID, "error", err)
		return nil, common.WrapError(err, "list records")
	}
	defer rows.Close()

	var out []entity.Record
	for rows.Next() {
		var (
			rec                               entity.Record
			name, date, work, initial, second sql.NullString
			status                            string
		)
		if err := rows.Scan(&rec.Filename, &name, &date, &work, &initial, &second, &status, &rec.Error); err != nil {
			return nil, common.WrapError(err, "scan record")
		}
		rec.Name = stringPtr(name)
		rec.Date = stringPtr(date)
		rec.InitialPayment = stringPtr(initial)
		rec.SecondPayment = stringPtr(second)
		rec.Status = constants.RecordStatus(status)
		if rec.Work, err = decodeWork(work); err != nil {
			return nil, common.WrapError(err, "decode work")
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (entity.Run, error) {
	var (
		run               entity.Run
		id, start, finish string
	)
	if err := s.Scan(&id, &run.Input, &start, &finish, &run.Discovered, &run.Succeeded, &run.Failed, &run.Omitted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return run, common.ErrNotFound
		}
		return run, common.WrapError(err, "scan run")
	}
	var err error
	if run.ID, err = uuid.Parse(id); err != nil {
		return run, common.WrapError(err, "parse run id")
	}
	if run.StartedAt, err = parseTime(start); err != nil {
		return run, common.WrapError(err, "parse started_at")
	}
	if run.FinishedAt, err = parseTime(finish); err != nil {
		return run, common.WrapError(err, "parse finished_at")
	}
	return run, nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// Work is stored as a JSON array; NULL keeps the failed-record distinction.
func encodeWork(w []string) (sql.NullString, error) {
	if w == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(w)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeWork(ns sql.NullString) ([]string, error) {
	if !ns.Valid {
		return nil, nil
	}
	out := []string{}
	if err := json.Unmarshal([]byte(ns.String), &out); err != nil {
		return nil, err
	}
	return out, nil
}
