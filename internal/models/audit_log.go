package models

import "time"

// AuditLog is one row of the append-only access log. Username is
// denormalized so the log stays readable if the account is removed. Rows are
// only ever inserted, never updated.
type AuditLog struct {
	BaseModel
	UserID    string    `gorm:"size:36;index;not null" json:"userId"`
	Username  string    `gorm:"size:80;not null" json:"username"`
	Action    string    `gorm:"size:50;not null" json:"action"`
	PatientID string    `gorm:"size:50" json:"patientId,omitempty"`
	Timestamp time.Time `gorm:"index;not null" json:"timestamp"`
}
