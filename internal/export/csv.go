package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes the header and every row.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}
	if err := cw.WriteAll(t.strings()); err != nil {
		return fmt.Errorf("csv rows: %w", err)
	}
	return nil
}
