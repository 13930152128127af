package constants

// RecordStatus is the outcome stored with every extraction_record row.
type RecordStatus string

// Stable values (store these exact strings in DB).
const (
	RecordStatusOK     RecordStatus = "OK"
	RecordStatusFailed RecordStatus = "FAILED" // null-filled record, filename kept
)

// ErrorKind classifies a per-document failure.
type ErrorKind string

const (
	ErrorKindNone       ErrorKind = ""
	ErrorKindConversion ErrorKind = "CONVERSION" // document-to-text failed
	ErrorKindExtraction ErrorKind = "EXTRACTION" // entity/work/payment step failed
)
