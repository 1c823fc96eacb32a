package models

import (
	"time"

	"gorm.io/gorm"
)

// MaxRecentlyViewed caps the per-user MRU list of patient views.
const MaxRecentlyViewed = 10

// RecentlyViewedPatient is one entry of a user's most-recently-viewed list.
type RecentlyViewedPatient struct {
	BaseModel
	UserID      string    `gorm:"size:36;index;not null" json:"userId"`
	PatientID   string    `gorm:"size:50;not null" json:"patientId"`
	PatientName string    `gorm:"size:100" json:"patientName"`
	WardNum     string    `gorm:"size:50" json:"wardNum"`
	ViewedAt    time.Time `gorm:"index" json:"viewedAt"`
}

// RecordView upserts a view for (user, patient) and prunes the user's list
// back down to MaxRecentlyViewed entries.
func RecordView(db *gorm.DB, userID, patientID, patientName, wardNum string) error {
	// Re-viewing a patient moves it to the front rather than duplicating it.
	if err := db.Where("user_id = ? AND patient_id = ?", userID, patientID).
		Delete(&RecentlyViewedPatient{}).Error; err != nil {
		return err
	}
	view := RecentlyViewedPatient{
		UserID:      userID,
		PatientID:   patientID,
		PatientName: patientName,
		WardNum:     wardNum,
		ViewedAt:    time.Now(),
	}
	if err := db.Create(&view).Error; err != nil {
		return err
	}

	var stale []RecentlyViewedPatient
	if err := db.Where("user_id = ?", userID).
		Order("viewed_at DESC").
		Offset(MaxRecentlyViewed).
		Find(&stale).Error; err != nil {
		return err
	}
	if len(stale) > 0 {
		return db.Delete(&stale).Error
	}
	return nil
}
