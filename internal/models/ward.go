package models

import "time"

// Ward is one organizational unit of the hospital; source PDFs arrive one
// file per ward as ward_<id>_records.pdf.
type Ward struct {
	BaseModel
	WardNumber  string    `gorm:"uniqueIndex;size:50;not null" json:"wardNumber"`
	DisplayName string    `gorm:"size:100;not null" json:"displayName"`
	PDFFile     string    `gorm:"size:255;not null" json:"pdfFile"`
	DriveFileID string    `gorm:"size:100" json:"-"`
	LastUpdated time.Time `json:"lastUpdated"`

	Patients []Patient `gorm:"foreignKey:CurrentWard;references:WardNumber" json:"-"`
}
