package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/contracts-parser/constants"
	"github.com/joseph-ayodele/contracts-parser/internal/common"
	"github.com/joseph-ayodele/contracts-parser/internal/entity"
)

func openMemory(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), common.DatabaseConfig{DSN: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(context.Background()))
	return db
}

func str(s string) *string { return &s }

func TestSaveAndListRecords(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepository(openMemory(t), nil)

	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	run := entity.Run{
		ID: uuid.New(), Input: "contracts/", StartedAt: start, FinishedAt: start.Add(3 * time.Second),
		Discovered: 3, Succeeded: 2, Failed: 1,
	}
	records := []entity.Record{
		{Filename: "b.pdf", Work: []string{}, Status: constants.RecordStatusOK},
		entity.FailedRecord("c.pdf", assert.AnError),
		{Filename: "a.pdf", Name: str("Jane Doe"), Date: str("March 3, 2021"), Work: []string{"Design"},
			InitialPayment: str("$12500"), Status: constants.RecordStatusOK},
	}
	require.NoError(t, repo.SaveRun(ctx, run, records))

	latest, err := repo.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, run.ID, latest.ID)
	assert.Equal(t, run.StartedAt, latest.StartedAt)
	assert.Equal(t, 3*time.Second, latest.Duration())
	assert.Equal(t, 1, latest.Failed)

	got, err := repo.ListRecords(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, records[2], got[0])
	assert.Equal(t, []string{}, got[1].Work)
	assert.Nil(t, got[1].Name)
	assert.True(t, got[2].Failed())
	assert.Nil(t, got[2].Work)
	assert.Equal(t, assert.AnError.Error(), got[2].Error)
}

func TestLatestRunEmpty(t *testing.T) {
	repo := NewRunRepository(openMemory(t), nil)

	_, err := repo.LatestRun(context.Background())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepository(openMemory(t), nil)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		run := entity.Run{ID: uuid.New(), Input: "in", StartedAt: base.Add(time.Duration(i) * time.Hour), FinishedAt: base}
		ids = append(ids, run.ID)
		require.NoError(t, repo.SaveRun(ctx, run, nil))
	}

	runs, err := repo.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[1], runs[1].ID)
}

func TestLatestRunWithinOneSecond(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepository(openMemory(t), nil)

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	older := entity.Run{ID: uuid.New(), Input: "in", StartedAt: base.Add(100 * time.Millisecond), FinishedAt: base.Add(time.Second)}
	newer := entity.Run{ID: uuid.New(), Input: "in", StartedAt: base.Add(150 * time.Millisecond), FinishedAt: base.Add(time.Second)}
	require.NoError(t, repo.SaveRun(ctx, newer, nil))
	require.NoError(t, repo.SaveRun(ctx, older, nil))

	latest, err := repo.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, latest.ID)
	assert.Equal(t, newer.StartedAt, latest.StartedAt)
}

func TestParseTimeAcceptsTrimmedFraction(t *testing.T) {
	got, err := parseTime("2024-05-01T10:00:00.1Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 100_000_000, time.UTC), got)
}

func TestSaveRunRollsBackOnDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepository(openMemory(t), nil)

	run := entity.Run{ID: uuid.New(), Input: "in", StartedAt: time.Now(), FinishedAt: time.Now()}
	dup := []entity.Record{{Filename: "a.pdf"}, {Filename: "a.pdf"}}
	assert.Error(t, repo.SaveRun(ctx, run, dup))

	_, err := repo.LatestRun(ctx)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSaveRunRequiresID(t *testing.T) {
	repo := NewRunRepository(openMemory(t), nil)
	err := repo.SaveRun(context.Background(), entity.Run{}, nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestRebind(t *testing.T) {
	pg := &DB{Dialect: DialectPostgres}
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", pg.Rebind("SELECT * FROM t WHERE a = ? AND b = ?"))

	lite := &DB{Dialect: DialectSQLite}
	assert.Equal(t, "a = ?", lite.Rebind("a = ?"))
}

func TestDialectFor(t *testing.T) {
	assert.Equal(t, DialectPostgres, DialectFor("postgres://u:p@localhost/db"))
	assert.Equal(t, DialectPostgres, DialectFor("PostgreSQL://localhost/db"))
	assert.Equal(t, DialectSQLite, DialectFor("runs.db"))
	assert.Equal(t, DialectSQLite, DialectFor(":memory:"))
}
