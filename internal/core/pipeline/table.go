package pipeline

import (
	"fmt"

	"github.com/joseph-ayodele/contracts-parser/internal/common"
	"github.com/joseph-ayodele/contracts-parser/internal/entity"
)

// Assemble projects records onto columns in order. A column that a record does
// not carry is a schema mismatch and fails the whole table.
func Assemble(records []entity.Record, columns []string) ([][]any, error) {
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		f := r.Fields()
		row := make([]any, len(columns))
		for i, col := range columns {
			v, ok := f[col]
			if !ok {
				return nil, fmt.Errorf("%w: column %q missing for %s", common.ErrSchemaMismatch, col, r.Filename)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}
