package ocr

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/joseph-ayodele/contracts-parser/constants"
)

func (e *Extractor) extractDOCX(path string) (ExtractionResult, error) {
	res := ExtractionResult{SourceType: constants.DOCX, Method: MethodDOCX, Pages: 1}
	zr, err := zip.OpenReader(path)
	if err != nil {
		return res, fmt.Errorf("open docx: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if !strings.EqualFold(f.Name, "word/document.xml") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return res, fmt.Errorf("open document.xml: %w", err)
		}
		defer rc.Close()
		text, err := docxText(rc)
		if err != nil {
			return res, fmt.Errorf("parse document.xml: %w", err)
		}
		res.Text = text
		res.Pages += strings.Count(text, "\f")
		return res, nil
	}
	return res, fmt.Errorf("docx has no word/document.xml")
}

// docxText flattens WordprocessingML runs into plain text: paragraphs and rows end
// a line, cells are tab separated, explicit page breaks become form feeds.
func docxText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var buf bytes.Buffer
	lastNewline := true
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t", "instrText":
				var text string
				if err := dec.DecodeElement(&text, &t); err != nil {
					return "", err
				}
				buf.WriteString(text)
				lastNewline = false
			case "tab":
				buf.WriteByte('\t')
				lastNewline = false
			case "br", "cr":
				if attr(t, "type") == "page" {
					buf.WriteString("\n\f\n")
				} else {
					buf.WriteByte('\n')
				}
				lastNewline = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p", "tr":
				if !lastNewline {
					buf.WriteByte('\n')
					lastNewline = true
				}
			case "tc":
				if !lastNewline {
					buf.WriteByte('\t')
				}
			}
		}
	}
	return buf.String(), nil
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
