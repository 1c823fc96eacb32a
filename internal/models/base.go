package models

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// BaseModel contains common columns for all tables
type BaseModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate will set a UUID rather than numeric ID
func (base *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if base.ID == "" {
		base.ID = uuid.New().String()
	}
	return nil
}

// Databases holds the three SQLite connections the application uses. Audit
// entries live in their own file so the append-only log survives resets of
// the parsed record store.
type Databases struct {
	Users   *gorm.DB // users.db: accounts, settings, templates, MRU
	Audit   *gorm.DB // audit.db: append-only access log
	Records *gorm.DB // pdf_parsed.db: wards, patients, care notes
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	// Directory the SQLite files are created in.
	Dir string
}

func openSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	// SQLite allows one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent handlers.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// InitDB opens the database files and migrates their schemas.
func InitDB(config DatabaseConfig) (*Databases, error) {
	users, err := openSQLite(filepath.Join(config.Dir, "users.db"))
	if err != nil {
		return nil, err
	}
	audit, err := openSQLite(filepath.Join(config.Dir, "audit.db"))
	if err != nil {
		return nil, err
	}
	records, err := openSQLite(filepath.Join(config.Dir, "pdf_parsed.db"))
	if err != nil {
		return nil, err
	}

	if err := users.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Settings{},
		&NoteTemplate{},
		&TemplateCategory{},
		&RecentlyViewedPatient{},
	); err != nil {
		return nil, fmt.Errorf("migrating users.db: %w", err)
	}
	if err := audit.AutoMigrate(&AuditLog{}); err != nil {
		return nil, fmt.Errorf("migrating audit.db: %w", err)
	}
	if err := records.AutoMigrate(&Ward{}, &Patient{}, &CareNote{}); err != nil {
		return nil, fmt.Errorf("migrating pdf_parsed.db: %w", err)
	}

	return &Databases{Users: users, Audit: audit, Records: records}, nil
}
