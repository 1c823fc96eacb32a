package models

import "time"

// CareNote is a timestamped free-text clinical note attached to a patient.
// Notes imported from a ward PDF carry IsPDFNote=true and are immutable;
// notes added through the API reference the authoring user instead of a
// staff name. Ward id and patient name are denormalized for list and export
// queries.
type CareNote struct {
	BaseModel
	PatientID   string    `gorm:"size:50;index;not null" json:"patientId"` // hospital ID, not surrogate key
	UserID      *string   `gorm:"size:36;index" json:"userId,omitempty"`   // nil for PDF-imported notes
	Username    string    `gorm:"size:80" json:"username,omitempty"`
	StaffName   string    `gorm:"size:100" json:"staffName,omitempty"`
	Note        string    `gorm:"type:text;not null" json:"note"`
	Timestamp   time.Time `gorm:"index" json:"timestamp"`
	WardID      string    `gorm:"size:50;index" json:"wardId"`
	PatientName string    `gorm:"size:100" json:"patientName"`
	IsPDFNote   bool      `gorm:"default:false" json:"isPdfNote"`
}
