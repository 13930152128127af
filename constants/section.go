package constants

// Section names double as output column names.
const (
	SectionInitialPayment = "Initial Payment"
	SectionSecondPayment  = "Second Payment"
)

// WindowSize is the number of characters searched after a section anchor.
const WindowSize = 1000

// DefaultWorkers is the width of the extraction pool.
const DefaultWorkers = 8

// DefaultSectionPhrases maps each section to its candidate anchor phrases, in priority order.
var DefaultSectionPhrases = map[string][]string{
	SectionInitialPayment: {"Initial Payment", "First Payment", "First Installment"},
	SectionSecondPayment:  {"Second Payment", "Second Installment"},
}

// Output columns, in table order.
const (
	ColumnFilename = "Filename"
	ColumnName     = "Name"
	ColumnDate     = "Date"
	ColumnWork     = "Work"
)

// Columns is the fixed BatchResult schema.
var Columns = []string{
	ColumnFilename,
	ColumnName,
	ColumnDate,
	ColumnWork,
	SectionInitialPayment,
	SectionSecondPayment,
}
