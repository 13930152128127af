package entity

import (
	"github.com/joseph-ayodele/contracts-parser/constants"
)

// Outcome is the result of processing one document: either a populated record, or a
// failure carrying the filename, the failure kind and its cause.
type Outcome struct {
	Record Record
	Kind   constants.ErrorKind
	Err    error
}

// Succeeded builds a successful outcome.
func Succeeded(r Record) Outcome {
	r.Status = constants.RecordStatusOK
	return Outcome{Record: r}
}

// Failed builds a failure outcome whose record is null-filled.
func Failed(filename string, kind constants.ErrorKind, err error) Outcome {
	return Outcome{Record: FailedRecord(filename, err), Kind: kind, Err: err}
}

// OK reports whether the outcome carries a populated record.
func (o Outcome) OK() bool {
	return o.Err == nil
}
