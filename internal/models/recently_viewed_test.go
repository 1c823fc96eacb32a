package models

import (
	"fmt"
	"path/filepath"
	"testing"

	"gorm.io/gorm"
)

func viewsDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := openSQLite(filepath.Join(t.TempDir(), "users.db"))
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&RecentlyViewedPatient{}); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestRecordViewPrunesToCap(t *testing.T) {
	db := viewsDB(t)

	for i := 0; i < MaxRecentlyViewed+5; i++ {
		id := fmt.Sprintf("P%03d", i)
		if err := RecordView(db, "user-1", id, "Patient "+id, "1"); err != nil {
			t.Fatalf("view %d: %v", i, err)
		}
	}

	var views []RecentlyViewedPatient
	if err := db.Where("user_id = ?", "user-1").Order("viewed_at DESC").Find(&views).Error; err != nil {
		t.Fatal(err)
	}
	if len(views) != MaxRecentlyViewed {
		t.Fatalf("expected list pruned to %d, got %d", MaxRecentlyViewed, len(views))
	}
	if views[0].PatientID != "P014" {
		t.Errorf("newest view must survive the prune, front is %q", views[0].PatientID)
	}
	for _, v := range views {
		if v.PatientID == "P000" {
			t.Error("oldest view should have been pruned")
		}
	}
}

func TestRecordViewMovesRepeatToFront(t *testing.T) {
	db := viewsDB(t)

	for _, id := range []string{"P001", "P002", "P003"} {
		if err := RecordView(db, "user-1", id, "Patient "+id, "1"); err != nil {
			t.Fatal(err)
		}
	}
	if err := RecordView(db, "user-1", "P001", "Patient P001", "1"); err != nil {
		t.Fatal(err)
	}

	var views []RecentlyViewedPatient
	if err := db.Where("user_id = ?", "user-1").Order("viewed_at DESC").Find(&views).Error; err != nil {
		t.Fatal(err)
	}
	if len(views) != 3 {
		t.Fatalf("re-viewing must not duplicate, got %d rows", len(views))
	}
	if views[0].PatientID != "P001" {
		t.Errorf("re-viewed patient should be first, got %q", views[0].PatientID)
	}
}
