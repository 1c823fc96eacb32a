package pdfparse

import "strings"

// scanState is the position of the line scanner inside a patient block.
type scanState int

const (
	stateSeekTitle scanState = iota // waiting for a "Patient Record - Ward" title
	stateFields                     // reading labeled header fields
	stateSeekTable                  // notes heading seen, waiting for the header row
	stateNotes                      // consuming date/staff/note line triples
)

// field labels recognised in the header of a patient block.
var fieldLabels = []string{"Patient ID:", "Name:", "Ward:", "DOB:", "Gender:", "Age:"}

// LineExtractor scans page text line by line. A label line such as "Name:"
// captures the next line as its value; a label with text after the colon
// captures that text directly. Scanner state carries across pages so a block
// that continues on the next page is merged into one record.
type LineExtractor struct{}

type lineScan struct {
	state    scanState
	expect   string   // label whose value is expected on the next line
	current  *Record
	triple   []string // partial date/staff/note group, may span pages
	targetID string
	out      map[string]Record
}

// Extract implements Extractor.
func (LineExtractor) Extract(pages []string, targetID string) map[string]Record {
	s := &lineScan{
		state:    stateSeekTitle,
		targetID: targetID,
		out:      make(map[string]Record),
	}
	for _, page := range pages {
		for _, raw := range strings.Split(page, "\n") {
			s.feed(strings.TrimSpace(raw))
		}
	}
	s.flush()
	return s.out
}

func (s *lineScan) feed(line string) {
	if line == "" {
		return
	}

	// A new title ends the in-progress record wherever the scanner is.
	if strings.Contains(line, patientTitle) {
		s.flush()
		s.current = &Record{Name: unknownName}
		s.state = stateFields
		s.expect = ""
		s.triple = nil
		return
	}

	switch s.state {
	case stateSeekTitle:
		// Ignore everything until a patient block starts.
	case stateFields:
		s.feedField(line)
	case stateSeekTable:
		if strings.Contains(line, tableHeader) {
			s.state = stateNotes
		}
	case stateNotes:
		s.triple = append(s.triple, line)
		if len(s.triple) == 3 {
			s.current.CareNotes = append(s.current.CareNotes, CareNote{
				Date:  s.triple[0],
				Staff: s.triple[1],
				Note:  s.triple[2],
			})
			s.triple = nil
		}
	}
}

func (s *lineScan) feedField(line string) {
	if strings.Contains(line, notesHeading) {
		s.state = stateSeekTable
		s.expect = ""
		return
	}

	if s.expect != "" {
		s.setField(s.expect, line)
		s.expect = ""
		return
	}

	for _, label := range fieldLabels {
		if !strings.HasPrefix(line, label) {
			continue
		}
		value := strings.TrimSpace(line[len(label):])
		if value == "" {
			// Label alone on its line: the value follows on the next one.
			s.expect = label
		} else {
			s.setField(label, value)
		}
		return
	}
}

func (s *lineScan) setField(label, value string) {
	switch label {
	case "Patient ID:":
		s.current.ID = value
	case "Name:":
		s.current.Name = value
	case "Ward:":
		s.current.Info.Ward = value
	case "DOB:":
		s.current.Info.DOB = value
	case "Gender:":
		s.current.Info.Gender = value
	case "Age:":
		s.current.Info.Age = value
	}
}

// flush writes the in-progress record to the output map. Records without a
// patient ID are dropped; when a target ID is set, non-matching records are
// scanned but not written.
func (s *lineScan) flush() {
	if s.current == nil || s.current.ID == "" {
		s.current = nil
		return
	}
	if s.targetID == "" || s.current.ID == s.targetID {
		s.out[s.current.ID] = *s.current
	}
	s.current = nil
}
