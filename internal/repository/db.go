package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/contracts-parser/internal/common"
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// DialectFor picks the backend from a DSN: postgres URLs go to pgx, anything
// else is a SQLite file path (or ":memory:").
func DialectFor(dsn string) Dialect {
	d := strings.ToLower(strings.TrimSpace(dsn))
	if strings.HasPrefix(d, "postgres://") || strings.HasPrefix(d, "postgresql://") {
		return DialectPostgres
	}
	return DialectSQLite
}

// DB is a database/sql handle plus the pgx pool backing it, when there is one.
type DB struct {
	SQL     *sql.DB
	Dialect Dialect
	pool    *pgxpool.Pool
	logger  *slog.Logger
}

// Open connects to the run store described by cfg.DSN.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("%w: empty database DSN", common.ErrInvalidInput)
	}
	switch DialectFor(cfg.DSN) {
	case DialectPostgres:
		return openPostgres(ctx, cfg, logger)
	default:
		return openSQLite(ctx, cfg, logger)
	}
}

func openPostgres(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*DB, error) {
	logger.Info("db.connect", "dialect", DialectPostgres)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("db.connect.failed", "error", err)
		return nil, common.WrapError(err, "parse database DSN")
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "contracts-parser"

	dialCtx, cancel := common.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("db.connect.failed", "error", err)
		return nil, common.WrapError(err, "connect database")
	}

	db := &DB{SQL: stdlib.OpenDBFromPool(pool), Dialect: DialectPostgres, pool: pool, logger: logger}
	logger.Info("db.connect.ok", "dialect", DialectPostgres)
	return db, nil
}

func openSQLite(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*DB, error) {
	logger.Info("db.connect", "dialect", DialectSQLite, "dsn", cfg.DSN)
	sqlDB, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		logger.Error("db.connect.failed", "error", err)
		return nil, common.WrapError(err, "open sqlite")
	}
	// one writer; also keeps a ":memory:" database alive across statements
	sqlDB.SetMaxOpenConns(1)

	db := &DB{SQL: sqlDB, Dialect: DialectSQLite, logger: logger}
	if err := db.HealthCheck(ctx, cfg.DialTimeout); err != nil {
		_ = sqlDB.Close()
		logger.Error("db.connect.failed", "error", err)
		return nil, common.WrapError(err, "ping sqlite")
	}
	if _, err := sqlDB.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		_ = sqlDB.Close()
		return nil, common.WrapError(err, "enable foreign keys")
	}
	logger.Info("db.connect.ok", "dialect", DialectSQLite)
	return db, nil
}

// Close releases the handle and the pool.
func (d *DB) Close() {
	if d == nil {
		return
	}
	d.logger.Info("db.close")
	if err := d.SQL.Close(); err != nil {
		d.logger.Error("db.close.failed", "error", err)
	}
	if d.pool != nil {
		d.pool.Close()
	}
}

// HealthCheck pings the database, bounded by timeout when positive.
func (d *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := common.WithTimeout(ctx, timeout)
	defer cancel()
	d.logger.Debug("db.ping")
	return d.SQL.PingContext(ctx)
}

// Rebind rewrites "?" placeholders to "$n" for Postgres.
func (d *DB) Rebind(query string) string {
	if d.Dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS extraction_run (
		id          TEXT PRIMARY KEY,
		input       TEXT NOT NULL,
		started_at  TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		discovered  INTEGER NOT NULL,
		succeeded   INTEGER NOT NULL,
		failed      INTEGER NOT NULL,
		omitted     INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS extraction_record (
		run_id          TEXT NOT NULL REFERENCES extraction_run(id) ON DELETE CASCADE,
		filename        TEXT NOT NULL,
		name            TEXT,
		date            TEXT,
		work            TEXT,
		initial_payment TEXT,
		second_payment  TEXT,
		status          TEXT NOT NULL,
		error           TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (run_id, filename)
	)`,
	`CREATE INDEX IF NOT EXISTS extraction_run_started_idx ON extraction_run (started_at)`,
}

// Migrate creates the run tables if they do not exist.
func (d *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := d.SQL.ExecContext(ctx, stmt); err != nil {
			d.logger.Error("db.migrate.failed", "error", err)
			return common.WrapError(err, "migrate")
		}
	}
	d.logger.Debug("db.migrate.ok", "statements", len(schema))
	return nil
}
