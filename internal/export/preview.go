package export

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// PreviewWidth is the default cell truncation for Preview.
const PreviewWidth = 40

// Preview renders the table for a terminal, truncating cells to maxWidth runes.
func Preview(w io.Writer, t Table, maxWidth int) {
	if maxWidth <= 0 {
		maxWidth = PreviewWidth
	}
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(t.Columns)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetRowLine(false)
	for _, row := range t.strings() {
		for i := range row {
			row[i] = truncate(row[i], maxWidth)
		}
		tw.Append(row)
	}
	tw.Render()
}
