package export

import (
	"bytes"
	"testing"
	"time"

	"ward-notes-server/internal/models"
)

func sampleNotes() []models.CareNote {
	return []models.CareNote{
		{
			PatientID:   "12345",
			PatientName: "John Smith",
			WardID:      "1",
			StaffName:   "Nurse Jones",
			Note:        "Patient comfortable, vital signs stable throughout the shift.",
			Timestamp:   time.Date(2023, 1, 1, 8, 0, 0, 0, time.UTC),
			IsPDFNote:   true,
		},
		{
			PatientID:   "67890",
			PatientName: "Mary Brown",
			WardID:      "Long_2",
			Username:    "nurse1",
			Note:        "Wound dressing changed.",
			Timestamp:   time.Date(2023, 1, 2, 9, 30, 0, 0, time.UTC),
		},
	}
}

func TestStaffLabel(t *testing.T) {
	notes := sampleNotes()
	if got := staffLabel(notes[0]); got != "Nurse Jones" {
		t.Errorf("pdf note staff = %q", got)
	}
	if got := staffLabel(notes[1]); got != "nurse1" {
		t.Errorf("api note staff = %q", got)
	}
}

func TestExcelProducesWorkbook(t *testing.T) {
	data, err := Excel(sampleNotes())
	if err != nil {
		t.Fatal(err)
	}
	// xlsx is a zip container.
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Errorf("not a zip archive, first bytes %q", data[:4])
	}
}

func TestExcelEmptyList(t *testing.T) {
	if _, err := Excel(nil); err != nil {
		t.Fatalf("empty export should still produce a workbook: %v", err)
	}
}

func TestPDFProducesDocument(t *testing.T) {
	data, err := PDF(sampleNotes())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("not a pdf, first bytes %q", data[:4])
	}
}
