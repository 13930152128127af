package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/contracts-parser/constants"
	"github.com/joseph-ayodele/contracts-parser/internal/common"
	"github.com/joseph-ayodele/contracts-parser/internal/core"
	"github.com/joseph-ayodele/contracts-parser/internal/entity"
	"github.com/joseph-ayodele/contracts-parser/internal/extract"
	"github.com/joseph-ayodele/contracts-parser/internal/ingest"
	"github.com/joseph-ayodele/contracts-parser/internal/ner"
)

type staticSource struct {
	docs []entity.Document
	err  error
}

func (s staticSource) Discover(context.Context, string) ([]entity.Document, ingest.DirStats, error) {
	return s.docs, ingest.DirStats{Matched: uint32(len(s.docs))}, s.err
}

func docs(n int) []entity.Document {
	out := make([]entity.Document, n)
	for i := range out {
		name := fmt.Sprintf("contract-%02d.pdf", n-i)
		out[i] = entity.Document{Name: name, URL: "/in/" + name}
	}
	return out
}

// converter fails for every document whose index is a multiple of failEvery.
func converter(failEvery int) extract.TextExtractor {
	return extract.TextExtractorFunc(func(_ context.Context, path string) (extract.TextExtractionResult, error) {
		n, _ := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(path, "/in/contract-"), ".pdf"))
		if failEvery > 0 && n%failEvery == 0 {
			return extract.TextExtractionResult{}, errors.New("malformed pdf")
		}
		text := fmt.Sprintf("Dear Jane Doe, your work Item %d, currently open. Initial Payment: $%d,000.50", n, n)
		return extract.TextExtractionResult{Text: text}, nil
	})
}

func newProcessor(t *testing.T, tx extract.TextExtractor) *core.Processor {
	t.Helper()
	fs, err := core.NewFieldsStage(ner.NewRuleRecognizer(), core.FieldsConfig{}, nil)
	require.NoError(t, err)
	return core.NewProcessor(nil, core.NewTextStage(nil, tx, nil), fs)
}

func TestRunKeepsFailedDocuments(t *testing.T) {
	const n = 12
	p := New(staticSource{docs: docs(n)}, newProcessor(t, converter(4)), nil, WithWorkers(4))

	res, err := p.Run(context.Background(), "/in")
	require.NoError(t, err)
	require.Len(t, res.Rows, n)
	assert.False(t, res.NoDocuments)
	assert.Equal(t, constants.Columns, res.Columns)
	assert.Equal(t, 9, res.Run.Succeeded)
	assert.Equal(t, 3, res.Run.Failed)
	assert.Zero(t, res.Run.Omitted)

	failed := 0
	for i, row := range res.Rows {
		assert.Equal(t, res.Records[i].Filename, row[0])
		if res.Records[i].Failed() {
			failed++
			for _, v := range row[1:] {
				assert.Nil(t, v)
			}
		}
	}
	assert.Equal(t, 3, failed)
	assert.True(t, sort.SliceIsSorted(res.Records, func(i, j int) bool {
		return res.Records[i].Filename < res.Records[j].Filename
	}))
}

func TestRunRowValues(t *testing.T) {
	p := New(staticSource{docs: docs(1)}, newProcessor(t, converter(0)), nil)

	res, err := p.Run(context.Background(), "/in")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, []any{"contract-01.pdf", "Jane Doe", nil, []string{"Item 1"}, "$1000", nil}, res.Rows[0])
}

func TestRunIsIdempotent(t *testing.T) {
	p := New(staticSource{docs: docs(10)}, newProcessor(t, converter(3)), nil, WithWorkers(8))

	first, err := p.Run(context.Background(), "/in")
	require.NoError(t, err)
	second, err := p.Run(context.Background(), "/in")
	require.NoError(t, err)

	assert.Equal(t, first.Rows, second.Rows)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestRunNoDocuments(t *testing.T) {
	p := New(staticSource{}, newProcessor(t, converter(0)), nil)

	res, err := p.Run(context.Background(), "/empty")
	require.NoError(t, err)
	assert.True(t, res.NoDocuments)
	assert.True(t, res.Empty())
	assert.Zero(t, res.Run.Discovered)
}

func TestRunInvalidLocation(t *testing.T) {
	p := New(staticSource{err: common.ErrInvalidInput}, newProcessor(t, converter(0)), nil)

	_, err := p.Run(context.Background(), "/missing")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

type panicky struct{ inner *core.Processor }

func (p panicky) Process(ctx context.Context, doc entity.Document) entity.Outcome {
	if doc.Name == "contract-02.pdf" {
		panic("lost task")
	}
	return p.inner.Process(ctx, doc)
}

func TestRunOmitsUncollectableTasks(t *testing.T) {
	p := New(staticSource{docs: docs(3)}, panicky{newProcessor(t, converter(0))}, nil)

	res, err := p.Run(context.Background(), "/in")
	require.NoError(t, err)
	assert.Len(t, res.Rows, 2)
	assert.Equal(t, []string{"contract-02.pdf"}, res.Omitted)
	assert.Equal(t, 1, res.Run.Omitted)
}

func TestRunCancelledContextOmitsEverything(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := New(staticSource{docs: docs(4)}, newProcessor(t, converter(0)), nil)

	res, err := p.Run(ctx, "/in")
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
	assert.Len(t, res.Omitted, 4)
	assert.False(t, res.NoDocuments)
}

func TestRunReportsProgress(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	last := 0
	p := New(staticSource{docs: docs(5)}, newProcessor(t, converter(0)), nil,
		WithProgress(func(done, total int, filename string) {
			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, 5, total)
			assert.Equal(t, last+1, done)
			last = done
			seen = append(seen, filename)
		}))

	_, err := p.Run(context.Background(), "/in")
	require.NoError(t, err)
	assert.Len(t, seen, 5)
}

func TestAssembleSchemaMismatch(t *testing.T) {
	records := []entity.Record{{Filename: "a.pdf"}}

	_, err := Assemble(records, append([]string{}, constants.Columns[0], "Signature"))
	assert.ErrorIs(t, err, common.ErrSchemaMismatch)

	rows, err := Assemble(records, constants.Columns)
	require.NoError(t, err)
	assert.Len(t, rows[0], len(constants.Columns))
}

func TestRunWithColumnsMismatchIsFatal(t *testing.T) {
	p := New(staticSource{docs: docs(2)}, newProcessor(t, converter(0)), nil, WithColumns([]string{"Filename", "Budget"}))

	_, err := p.Run(context.Background(), "/in")
	assert.ErrorIs(t, err, common.ErrSchemaMismatch)
}

func TestRunAnnouncesDiscoveredDocuments(t *testing.T) {
	var found []entity.Document
	calls := 0
	p := New(staticSource{docs: docs(3)}, newProcessor(t, converter(0)), nil,
		WithDiscovered(func(d []entity.Document) {
			calls++
			found = d
		}))

	_, err := p.Run(context.Background(), "/in")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Len(t, found, 3)

	calls = 0
	empty := New(staticSource{}, newProcessor(t, converter(0)), nil,
		WithDiscovered(func([]entity.Document) { calls++ }))
	_, err = empty.Run(context.Background(), "/in")
	require.NoError(t, err)
	assert.Zero(t, calls)
}
