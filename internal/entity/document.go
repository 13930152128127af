package entity

// Document is one discovered input file. Name is the record identifier; URL is what
// the ingest layer needs to read it back.
type Document struct {
	Name string
	URL  string
	Size int64
}
