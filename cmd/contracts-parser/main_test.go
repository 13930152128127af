package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/contracts-parser/constants"
)

const contract = `Dear Jane Doe,

This agreement is made on March 3, 2021. We are pleased to confirm your work Logo Design, currently scheduled for spring.

Initial Payment: $1,200.00 due upon signing.
Second Payment: $300 due on delivery.
`

func execute(t *testing.T, args ...string) string {
	t.Helper()
	t.Setenv("NER_PROVIDER", "rules")
	t.Setenv("DB_URL", "")
	t.Setenv("CONTRACTS_SECTIONS_FILE", "")

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--no-progress", "--log-level", "error"))
	require.NoError(t, cmd.ExecuteContext(context.Background()), errOut.String())
	return out.String()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestParseWritesTableAndStoresRun(t *testing.T) {
	in := t.TempDir()
	writeFile(t, filepath.Join(in, "alpha.txt"), contract)
	writeFile(t, filepath.Join(in, "broken.docx"), "not a zip archive")
	writeFile(t, filepath.Join(in, "notes.md"), "ignored")
	outDir := t.TempDir()
	output := filepath.Join(outDir, "csv", "parsed.csv")
	db := filepath.Join(outDir, "runs.db")

	stdout := execute(t, "--input", in, "--output", output, "--ext", "txt,docx", "--db", db)
	assert.Contains(t, stdout, "2 files found. Processing...")
	assert.Contains(t, stdout, "Saved results to "+output)

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, constants.Columns, rows[0])
	assert.Equal(t, []string{"alpha.txt", "Jane Doe", "March 3, 2021", `["Logo Design"]`, "$1200", "$300"}, rows[1])
	assert.Equal(t, []string{"broken.docx", "", "", "", "", ""}, rows[2])

	stdout = execute(t, "runs", "--db", db)
	assert.Contains(t, stdout, "2 records")
	assert.Contains(t, stdout, "broken.docx")

	stdout = execute(t, "db-health", "--db", db)
	assert.Contains(t, stdout, "DB health: OK (sqlite)")
	assert.Contains(t, stdout, "stored runs: 1")
}

func TestParseEmptyFolder(t *testing.T) {
	in := t.TempDir()
	output := filepath.Join(t.TempDir(), "parsed.csv")

	stdout := execute(t, "--input", in, "--output", output)
	assert.Contains(t, stdout, "No PDF files found in '"+in+"'")
	assert.Contains(t, stdout, "Whoops, no data was found. Check your files")
	assert.NoFileExists(t, output)
}

func TestParseMissingFolder(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")

	stdout := execute(t, "--input", missing, "--output", filepath.Join(t.TempDir(), "x.csv"))
	assert.Contains(t, stdout, "Whoops, no data was found. Check your files")
}

func TestTextCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alpha.txt")
	writeFile(t, path, contract)

	stdout := execute(t, "text", path)
	assert.Contains(t, stdout, "your work Logo Design, currently")
}

func TestEntitiesCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alpha.txt")
	writeFile(t, path, contract)

	stdout := execute(t, "entities", path)
	assert.Contains(t, stdout, "PERSON")
	assert.Contains(t, stdout, "Jane Doe")
	assert.Contains(t, stdout, "DATE")
}
