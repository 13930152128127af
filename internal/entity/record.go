package entity

import (
	"github.com/joseph-ayodele/contracts-parser/constants"
)

// Record is the per-document extraction row. Filename is always set; every other
// field is nil when the document failed. Work is an empty, non-nil slice when the
// document converted but no work clause matched.
type Record struct {
	Filename       string
	Name           *string
	Date           *string
	Work           []string
	InitialPayment *string
	SecondPayment  *string

	Status constants.RecordStatus
	Error  string
}

// FailedRecord returns the null-filled row that keeps a failed document visible.
func FailedRecord(filename string, cause error) Record {
	r := Record{Filename: filename, Status: constants.RecordStatusFailed}
	if cause != nil {
		r.Error = cause.Error()
	}
	return r
}

// Failed reports whether the record is a null-filled failure row.
func (r Record) Failed() bool {
	return r.Status == constants.RecordStatusFailed
}

// Fields projects the record onto its named columns. Values are nil, string or []string.
func (r Record) Fields() map[string]any {
	return map[string]any{
		constants.ColumnFilename:        r.Filename,
		constants.ColumnName:            deref(r.Name),
		constants.ColumnDate:            deref(r.Date),
		constants.ColumnWork:            work(r.Work),
		constants.SectionInitialPayment: deref(r.InitialPayment),
		constants.SectionSecondPayment:  deref(r.SecondPayment),
	}
}

func deref(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func work(w []string) any {
	if w == nil {
		return nil
	}
	return w
}

// StringPtr returns nil for ok == false, else a pointer to s.
func StringPtr(s string, ok bool) *string {
	if !ok {
		return nil
	}
	return &s
}
