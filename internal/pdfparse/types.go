// Package pdfparse extracts structured patient records from the text of ward
// record PDFs. A ward PDF contains one or more patient blocks, each with a
// labeled-field header (Patient ID, Name, Ward, DOB) followed by a
// "Continuous Care Notes" pseudo-table of date/staff/note rows. A block may
// run over a page boundary, in which case the continuation page carries no
// new title.
//
// Two extraction strategies exist because the upstream report generator has
// produced two layouts over time: LineExtractor handles the layout where a
// label and its value may sit on consecutive lines, RegexExtractor handles
// the layout where labels and values share a line. Both implement Extractor
// and both degrade to partial records instead of failing.
package pdfparse

// CareNote is a single row of the Continuous Care Notes table. Notes are
// returned in file order; callers sort by timestamp for display.
type CareNote struct {
	Date  string `json:"date"`
	Staff string `json:"staff"`
	Note  string `json:"note"`
}

// Demographics holds the labeled header fields of a patient block. An empty
// string means the field was not present in the source document.
type Demographics struct {
	Ward   string `json:"ward,omitempty"`
	DOB    string `json:"dob,omitempty"`
	Gender string `json:"gender,omitempty"`
	Age    string `json:"age,omitempty"`
}

// Record is one extracted patient block keyed by hospital ID.
type Record struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Info      Demographics `json:"info"`
	CareNotes []CareNote   `json:"careNotes"`
}

// Extractor turns the page texts of one ward PDF into a map keyed by hospital
// ID. When targetID is non-empty every page is still scanned, but records for
// other patients are not written to the result. If the same hospital ID
// appears more than once in a file the later occurrence wins.
type Extractor interface {
	Extract(pages []string, targetID string) map[string]Record
}

const (
	patientTitle = "Patient Record - Ward"
	notesHeading = "Continuous Care Notes"
	tableHeader  = "Date & Time"

	unknownName = "Unknown"
)
