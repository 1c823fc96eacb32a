package models

import (
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// Settings keys used by the application.
const (
	SettingNotesEnabled   = "notes_enabled"
	SettingTimeoutEnabled = "timeout_enabled"
	SettingTimeoutMinutes = "timeout_minutes"
)

// Settings is a key/value row for runtime feature toggles.
type Settings struct {
	BaseModel
	Key   string `gorm:"uniqueIndex;size:50;not null" json:"key"`
	Value string `gorm:"size:255;not null" json:"value"`
}

// GetSetting returns the stored value for key, or def if the row is absent.
func GetSetting(db *gorm.DB, key, def string) string {
	var s Settings
	if err := db.Where("key = ?", key).First(&s).Error; err != nil {
		return def
	}
	return s.Value
}

// SetSetting stores value under key, inserting or updating as needed.
func SetSetting(db *gorm.DB, key, value string) error {
	var s Settings
	err := db.Where("key = ?", key).First(&s).Error
	if err == gorm.ErrRecordNotFound {
		return db.Create(&Settings{Key: key, Value: value}).Error
	}
	if err != nil {
		return err
	}
	s.Value = value
	return db.Save(&s).Error
}

// NotesEnabled reports whether adding care notes is currently allowed.
func NotesEnabled(db *gorm.DB) bool {
	return strings.EqualFold(GetSetting(db, SettingNotesEnabled, "true"), "true")
}

// TimeoutEnabled reports whether idle session timeout is on.
func TimeoutEnabled(db *gorm.DB) bool {
	return strings.EqualFold(GetSetting(db, SettingTimeoutEnabled, "false"), "true")
}

// TimeoutMinutes returns the configured session timeout, defaulting to 30
// when the stored value is absent or not a number.
func TimeoutMinutes(db *gorm.DB) int {
	v := GetSetting(db, SettingTimeoutMinutes, "30")
	minutes, err := strconv.Atoi(v)
	if err != nil || minutes <= 0 {
		return 30
	}
	return minutes
}
