package ocr

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/contracts-parser/constants"
)

type stubRunner struct {
	mu    sync.Mutex
	calls []string
	fn    func(name string, args []string) ([]byte, []byte, error)
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.mu.Lock()
	s.calls = append(s.calls, name)
	s.mu.Unlock()
	return s.fn(name, args)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const contractText = "This Agreement covers your work Logo Design, currently in progress.\nInitial Payment: $1,500.00"

func TestExtractPDFFallsBackToPdftotext(t *testing.T) {
	path := writeFile(t, "broken.pdf", "not really a pdf")
	runner := &stubRunner{fn: func(name string, args []string) ([]byte, []byte, error) {
		require.Equal(t, "pdftotext", name)
		assert.Equal(t, path, args[len(args)-2])
		return []byte(contractText + "\f"), nil, nil
	}}
	e := NewExtractorWithRunner(Config{}, runner, nil)

	res, err := e.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, MethodPDFText, res.Method)
	assert.Equal(t, constants.PDF, res.SourceType)
	assert.Equal(t, 1, res.Pages)
	assert.Contains(t, res.Text, "Initial Payment: $1,500.00")
	assert.NotEmpty(t, res.Warnings)
	assert.Equal(t, []string{"pdftotext"}, runner.calls)
}

func TestExtractPDFFallsBackToOCR(t *testing.T) {
	path := writeFile(t, "scan.pdf", "not really a pdf")
	runner := &stubRunner{fn: func(name string, args []string) ([]byte, []byte, error) {
		switch name {
		case "pdftotext":
			return []byte("  \f "), nil, nil
		case "pdftoppm":
			prefix := args[len(args)-1]
			for _, p := range []string{"-1.png", "-2.png"} {
				if err := os.WriteFile(prefix+p, []byte("png"), 0o644); err != nil {
					return nil, nil, err
				}
			}
			return nil, nil, nil
		case "tesseract":
			if strings.HasSuffix(args[0], "-1.png") {
				return []byte("Page one\n-----\n" + contractText), nil, nil
			}
			return nil, []byte("empty page"), errors.New("exit status 1")
		}
		return nil, nil, errors.New("unexpected command " + name)
	}}
	e := NewExtractorWithRunner(Config{TesseractLang: "eng"}, runner, nil)

	res, err := e.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, MethodPDFOCR, res.Method)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, "eng", res.Language)
	assert.NotContains(t, res.Text, "-----")
	assert.Contains(t, res.Text, "your work Logo Design, currently")
	assert.Equal(t, []string{"pdftotext", "pdftoppm", "tesseract", "tesseract"}, runner.calls)
}

func TestExtractPDFAllStrategiesFail(t *testing.T) {
	path := writeFile(t, "dead.pdf", "garbage")
	runner := &stubRunner{fn: func(name string, _ []string) ([]byte, []byte, error) {
		return nil, []byte(name + " failed"), errors.New("exit status 1")
	}}
	e := NewExtractorWithRunner(Config{}, runner, nil)

	_, err := e.Extract(context.Background(), path)
	assert.Error(t, err)
}

func TestExtractPlainText(t *testing.T) {
	path := writeFile(t, "contract.TXT", "Second Payment:\t\t€200\r\n\r\n\r\n\r\nend   ")
	e := NewExtractorWithRunner(Config{}, &stubRunner{}, nil)

	res, err := e.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, MethodPlain, res.Method)
	assert.Equal(t, "Second Payment: €200\n\nend", res.Text)
	assert.Greater(t, res.Confidence, float32(0.2))
}

func TestExtractDOCX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contract.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p><w:r><w:t>Dear Jane Doe,</w:t></w:r></w:p>
<w:p><w:r><w:t>Initial Payment:</w:t><w:tab/><w:t>$900</w:t></w:r></w:p>
</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	e := NewExtractorWithRunner(Config{}, &stubRunner{}, nil)
	res, err := e.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, MethodDOCX, res.Method)
	assert.Equal(t, "Dear Jane Doe,\nInitial Payment: $900", res.Text)
}

func TestExtractUnsupported(t *testing.T) {
	e := NewExtractorWithRunner(Config{}, &stubRunner{}, nil)
	_, err := e.Extract(context.Background(), "scan.heic")
	assert.ErrorContains(t, err, "unsupported extension")
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "a b\nc", Normalize("  a \t  b  \r\nc \n"))
	assert.Equal(t, "a\n\nb", Normalize("a\n \n \n\nb"))
}
