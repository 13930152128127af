package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/contracts-parser/constants"
)

func sample() Table {
	return Table{
		Columns: constants.Columns,
		Rows: [][]any{
			{"a.pdf", "Jane Doe", "March 3, 2021", []string{"Graphic Design", "Copy"}, "$12500", nil},
			{"b.pdf", nil, nil, []string{}, nil, "€300"},
			{"c.pdf", nil, nil, nil, nil, nil},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample()))

	got, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, constants.Columns, got[0])
	assert.Equal(t, []string{"a.pdf", "Jane Doe", "March 3, 2021", `["Graphic Design","Copy"]`, "$12500", ""}, got[1])
	assert.Equal(t, []string{"b.pdf", "", "", "[]", "", "€300"}, got[2])
	assert.Equal(t, []string{"c.pdf", "", "", "", "", ""}, got[3])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sample()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, sheetName, f.GetSheetName(0))
	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, constants.Columns, rows[0])
	assert.Equal(t, "a.pdf", rows[1][0])
	assert.Equal(t, `["Graphic Design","Copy"]`, rows[1][3])
	assert.Equal(t, "€300", rows[2][5])
}

func TestWriterPicksFormatAndCreatesDirs(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(nil)

	csvPath := filepath.Join(dir, "out", "csv", "parsed.csv")
	require.NoError(t, w.Write(context.Background(), sample(), csvPath))
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Filename,Name,Date,Work,Initial Payment,Second Payment\n"))

	xlsxPath := filepath.Join(dir, "out", "parsed.XLSX")
	require.NoError(t, w.Write(context.Background(), sample(), xlsxPath))
	f, err := excelize.OpenFile(xlsxPath)
	require.NoError(t, err)
	_ = f.Close()
}

func TestWriterRejectsEmptyPath(t *testing.T) {
	err := NewWriter(nil).Write(context.Background(), sample(), " ")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "xlsx", Format("x/Report.XLSX"))
	assert.Equal(t, "csv", Format("x/report.csv"))
	assert.Equal(t, "csv", Format("report"))
}

func TestPreviewTruncates(t *testing.T) {
	tbl := Table{
		Columns: []string{"Filename", "Work"},
		Rows:    [][]any{{"a.pdf", []string{strings.Repeat("x", 100)}}},
	}
	var buf bytes.Buffer
	Preview(&buf, tbl, 10)

	out := buf.String()
	assert.Contains(t, out, "Filename")
	assert.Contains(t, out, `["xxxxxxx…`)
	assert.NotContains(t, out, strings.Repeat("x", 20))
}
