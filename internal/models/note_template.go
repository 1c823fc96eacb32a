package models

// TemplateCategory groups canned note templates. Soft-deletable so existing
// notes keep their provenance.
type TemplateCategory struct {
	BaseModel
	Name      string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	IsDeleted bool   `gorm:"default:false" json:"isDeleted"`

	Templates []NoteTemplate `gorm:"foreignKey:CategoryID" json:"templates,omitempty"`
}

// NoteTemplate is a canned care-note text staff can insert instead of typing
// a free-text note from scratch.
type NoteTemplate struct {
	BaseModel
	CategoryID string `gorm:"size:36;index" json:"categoryId"`
	Title      string `gorm:"size:100;not null" json:"title"`
	Body       string `gorm:"type:text;not null" json:"body"`
	IsDeleted  bool   `gorm:"default:false" json:"isDeleted"`
}
