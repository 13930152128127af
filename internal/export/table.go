// Package export writes the batch table to CSV or XLSX and renders a console preview.
package export

import (
	"encoding/json"
	"fmt"
)

// Table is a rendered batch: a header and rows of nil, string or []string cells.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of data rows.
func (t Table) Len() int { return len(t.Rows) }

// cell serialises one value. Work lists become JSON arrays, nulls become empty cells.
func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []string:
		if x == nil {
			return ""
		}
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func (t Table) strings() [][]string {
	out := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = cell(v)
		}
		out[i] = rec
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
