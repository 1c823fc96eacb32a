package models

// Patient is a parsed patient record. HospitalID is the external identifier
// used for lookups everywhere; it is unique across wards.
type Patient struct {
	BaseModel
	HospitalID  string `gorm:"uniqueIndex;size:50;not null" json:"hospitalId"`
	Name        string `gorm:"size:100;not null" json:"name"`
	DOB         string `gorm:"size:20" json:"dob,omitempty"`
	Gender      string `gorm:"size:20" json:"gender,omitempty"`
	Age         string `gorm:"size:10" json:"age,omitempty"`
	CurrentWard string `gorm:"size:50;index;not null" json:"currentWard"`
	PDFFile     string `gorm:"size:255" json:"-"`
	IsActive    bool   `gorm:"default:true" json:"isActive"`
}
