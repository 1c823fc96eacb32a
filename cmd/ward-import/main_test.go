package main

import (
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"ward-notes-server/internal/models"
	"ward-notes-server/internal/pdfparse"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "records.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&models.Ward{}, &models.Patient{}, &models.CareNote{}); err != nil {
		t.Fatal(err)
	}
	return db
}

func wardRecords(patients ...pdfparse.Record) map[string]pdfparse.Record {
	out := make(map[string]pdfparse.Record, len(patients))
	for _, p := range patients {
		out[p.ID] = p
	}
	return out
}

func TestLoadWardUpsertsPatientsByHospitalID(t *testing.T) {
	db := testDB(t)

	first := wardRecords(pdfparse.Record{ID: "12345", Name: "John Smith", Info: pdfparse.Demographics{DOB: "1980-01-15"}})
	if err := loadWard(db, "1", "ward_1_records.pdf", first, zap.NewNop()); err != nil {
		t.Fatal(err)
	}
	// Same hospital id reappears with corrected details.
	second := wardRecords(pdfparse.Record{ID: "12345", Name: "John Smythe", Info: pdfparse.Demographics{DOB: "1980-01-15"}})
	if err := loadWard(db, "1", "ward_1_records.pdf", second, zap.NewNop()); err != nil {
		t.Fatal(err)
	}

	var count int64
	if err := db.Model(&models.Patient{}).Where("hospital_id = ?", "12345").Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected one patient row for hospital id, got %d", count)
	}
	var patient models.Patient
	if err := db.Where("hospital_id = ?", "12345").First(&patient).Error; err != nil {
		t.Fatal(err)
	}
	if patient.Name != "John Smythe" {
		t.Errorf("re-import must update in place: got %q", patient.Name)
	}
}

func TestLoadWardDeactivatesDepartedPatients(t *testing.T) {
	db := testDB(t)

	both := wardRecords(
		pdfparse.Record{ID: "111", Name: "Ada Price"},
		pdfparse.Record{ID: "222", Name: "Lee Wong"},
	)
	if err := loadWard(db, "1", "ward_1_records.pdf", both, zap.NewNop()); err != nil {
		t.Fatal(err)
	}

	// Next run the second patient is gone from the file.
	if err := loadWard(db, "1", "ward_1_records.pdf", wardRecords(both["111"]), zap.NewNop()); err != nil {
		t.Fatal(err)
	}

	var stayed, departed models.Patient
	if err := db.Where("hospital_id = ?", "111").First(&stayed).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Where("hospital_id = ?", "222").First(&departed).Error; err != nil {
		t.Fatal(err)
	}
	if !stayed.IsActive {
		t.Error("present patient must stay active")
	}
	if departed.IsActive {
		t.Error("departed patient must be flagged inactive, not deleted")
	}
}

func TestLoadWardReplacesPDFNotesKeepsManualNotes(t *testing.T) {
	db := testDB(t)

	rec := pdfparse.Record{
		ID:   "12345",
		Name: "John Smith",
		CareNotes: []pdfparse.CareNote{
			{Date: "2023-01-01 08:00", Staff: "Dr. Jones", Note: "Initial assessment"},
		},
	}
	if err := loadWard(db, "1", "ward_1_records.pdf", wardRecords(rec), zap.NewNop()); err != nil {
		t.Fatal(err)
	}

	userID := "user-1"
	manual := models.CareNote{
		PatientID: "12345",
		UserID:    &userID,
		Username:  "nurse1",
		Note:      "Family visited this afternoon",
		Timestamp: time.Now(),
		WardID:    "1",
		IsPDFNote: false,
	}
	if err := db.Create(&manual).Error; err != nil {
		t.Fatal(err)
	}

	// Re-import with a revised notes table.
	rec.CareNotes = []pdfparse.CareNote{
		{Date: "2023-01-01 08:00", Staff: "Dr. Jones", Note: "Initial assessment"},
		{Date: "2023-01-02 09:00", Staff: "Nurse Brown", Note: "Vitals stable"},
	}
	if err := loadWard(db, "1", "ward_1_records.pdf", wardRecords(rec), zap.NewNop()); err != nil {
		t.Fatal(err)
	}

	var pdfCount, manualCount int64
	if err := db.Model(&models.CareNote{}).Where("patient_id = ? AND is_pdf_note = ?", "12345", true).Count(&pdfCount).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Model(&models.CareNote{}).Where("patient_id = ? AND is_pdf_note = ?", "12345", false).Count(&manualCount).Error; err != nil {
		t.Fatal(err)
	}
	if pdfCount != 2 {
		t.Errorf("expected PDF notes replaced with the new set of 2, got %d", pdfCount)
	}
	if manualCount != 1 {
		t.Errorf("manual note must survive re-import, got %d rows", manualCount)
	}
}
