package pdfparse

import (
	"fmt"
	"reflect"
	"testing"
)

// patientPage builds a page in the label-then-value layout with one note
// triple per entry of notes.
func patientPage(id, name, ward, dob string, notes [][3]string) string {
	page := "Patient Record - Ward " + ward + "\n"
	page += "Patient ID:\n" + id + "\n"
	page += "Name:\n" + name + "\n"
	page += "Ward:\n" + ward + "\n"
	page += "DOB:\n" + dob + "\n"
	page += "Continuous Care Notes\n"
	page += "Date & Time    Staff Member    Notes\n"
	for _, n := range notes {
		page += n[0] + "\n" + n[1] + "\n" + n[2] + "\n"
	}
	return page
}

func TestLineExtractorWellFormedBlocks(t *testing.T) {
	var pages []string
	for i := 0; i < 4; i++ {
		id := fmt.Sprintf("1000%d", i)
		pages = append(pages, patientPage(id, fmt.Sprintf("Patient %d", i), "1", "1980-01-15", [][3]string{
			{"2023-01-01 08:00", "Dr. Jones", "Initial assessment"},
		}))
	}

	got := LineExtractor{}.Extract(pages, "")
	if len(got) != 4 {
		t.Fatalf("expected 4 records, got %d", len(got))
	}
	for i := 0; i < 4; i++ {
		id := fmt.Sprintf("1000%d", i)
		rec, ok := got[id]
		if !ok {
			t.Fatalf("missing record for %s", id)
		}
		if rec.Name != fmt.Sprintf("Patient %d", i) {
			t.Errorf("record %s: wrong name %q", id, rec.Name)
		}
	}
}

func TestLineExtractorSameLineValues(t *testing.T) {
	page := "Patient Record - Ward 1\n" +
		"Patient ID: 12345\n" +
		"Name: John Smith\n" +
		"Ward: 1\n" +
		"DOB: 1980-01-15\n" +
		"Continuous Care Notes\n" +
		"Date & Time    Staff Member    Notes\n" +
		"2023-01-01 08:00\nDr. Jones\nInitial assessment\n"

	got := LineExtractor{}.Extract([]string{page}, "")
	rec, ok := got["12345"]
	if !ok {
		t.Fatalf("expected record 12345, got %v", got)
	}
	want := Record{
		ID:   "12345",
		Name: "John Smith",
		Info: Demographics{Ward: "1", DOB: "1980-01-15"},
		CareNotes: []CareNote{
			{Date: "2023-01-01 08:00", Staff: "Dr. Jones", Note: "Initial assessment"},
		},
	}
	if !reflect.DeepEqual(rec, want) {
		t.Errorf("got %+v, want %+v", rec, want)
	}
}

func TestLineExtractorBlockSpanningPages(t *testing.T) {
	page1 := "Patient Record - Ward 1\n" +
		"Patient ID: 12345\n" +
		"Name: John Smith\n" +
		"Ward: 1\n" +
		"DOB: 1980-01-15\n" +
		"Continuous Care Notes\n" +
		"Date & Time    Staff Member    Notes\n" +
		"2023-01-01 08:00\nDr. Jones\nInitial assessment\n"
	// Continuation page: no repeated title, the notes table resumes, and a
	// triple is split over the boundary.
	page2 := "Nurse Brown\nVitals stable\n" +
		"2023-01-02 14:30\nDr. Smith\nMedication adjusted\n"

	// The split triple opens on page 1.
	page1 += "2023-01-02 09:00\n"

	got := LineExtractor{}.Extract([]string{page1, page2}, "")
	if len(got) != 1 {
		t.Fatalf("expected a single merged record, got %d", len(got))
	}
	rec := got["12345"]
	if len(rec.CareNotes) != 3 {
		t.Fatalf("expected 3 care notes, got %d: %+v", len(rec.CareNotes), rec.CareNotes)
	}
	want := CareNote{Date: "2023-01-02 09:00", Staff: "Nurse Brown", Note: "Vitals stable"}
	if rec.CareNotes[1] != want {
		t.Errorf("cross-page note: got %+v, want %+v", rec.CareNotes[1], want)
	}
}

func TestLineExtractorNoteGroupsInFileOrder(t *testing.T) {
	notes := [][3]string{
		{"2023-01-03 10:00", "Dr. C", "third day"},
		{"2023-01-01 10:00", "Dr. A", "first day"},
		{"2023-01-02 10:00", "Dr. B", "second day"},
	}
	page := patientPage("555", "Jane Doe", "2", "1975-05-20", notes)

	rec := LineExtractor{}.Extract([]string{page}, "")["555"]
	if len(rec.CareNotes) != 3 {
		t.Fatalf("expected 3 notes, got %d", len(rec.CareNotes))
	}
	// File order, not timestamp order.
	for i, n := range notes {
		if rec.CareNotes[i].Date != n[0] {
			t.Errorf("note %d: got date %s, want %s", i, rec.CareNotes[i].Date, n[0])
		}
	}
}

func TestLineExtractorTargetID(t *testing.T) {
	pages := []string{
		patientPage("12345", "John Smith", "1", "1980-01-15", nil),
		patientPage("67890", "Jane Doe", "1", "1975-05-20", nil),
	}

	got := LineExtractor{}.Extract(pages, "12345")
	if len(got) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(got))
	}
	if _, ok := got["12345"]; !ok {
		t.Error("expected record 12345")
	}
	if _, ok := got["67890"]; ok {
		t.Error("record 67890 should have been skipped")
	}
}

func TestLineExtractorMalformedInput(t *testing.T) {
	cases := []struct {
		name string
		page string
	}{
		{"missing dob", "Patient Record - Ward 1\nPatient ID: 42\nName: Sam Pole\nWard: 1\n"},
		{"missing name", "Patient Record - Ward 1\nPatient ID: 42\nWard: 1\n"},
		{"truncated notes table", "Patient Record - Ward 1\nPatient ID: 42\nName: Sam Pole\n" +
			"Continuous Care Notes\nDate & Time    Staff Member    Notes\n2023-01-01 08:00\nDr. Jones\n"},
		{"garbage", "%%&&\nnothing useful here\n:::\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := LineExtractor{}.Extract([]string{tc.page}, "")
			if tc.name == "garbage" {
				if len(got) != 0 {
					t.Fatalf("expected no records, got %v", got)
				}
				return
			}
			rec, ok := got["42"]
			if !ok {
				t.Fatalf("expected degraded record 42, got %v", got)
			}
			switch tc.name {
			case "missing dob":
				if rec.Info.DOB != "" {
					t.Errorf("expected empty DOB, got %q", rec.Info.DOB)
				}
			case "missing name":
				if rec.Name != "Unknown" {
					t.Errorf("expected name Unknown, got %q", rec.Name)
				}
			case "truncated notes table":
				if len(rec.CareNotes) != 0 {
					t.Errorf("incomplete triple must not produce a note: %+v", rec.CareNotes)
				}
			}
		})
	}
}

func TestLineExtractorDuplicateIDLastWins(t *testing.T) {
	pages := []string{
		patientPage("12345", "John Smith", "1", "1980-01-15", nil),
		patientPage("12345", "John Smythe", "3", "1980-01-15", nil),
	}

	got := LineExtractor{}.Extract(pages, "")
	if len(got) != 1 {
		t.Fatalf("expected one record, got %d", len(got))
	}
	if got["12345"].Name != "John Smythe" {
		t.Errorf("later block must overwrite: got %q", got["12345"].Name)
	}
}

func TestLineExtractorIdempotent(t *testing.T) {
	pages := []string{patientPage("12345", "John Smith", "1", "1980-01-15", [][3]string{
		{"2023-01-01 08:00", "Dr. Jones", "Initial assessment"},
	})}

	e := LineExtractor{}
	first := e.Extract(pages, "")
	second := e.Extract(pages, "")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated extraction differs: %+v vs %+v", first, second)
	}
}
