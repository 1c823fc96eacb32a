// ward-import is the one-shot importer: it parses ward record PDFs and
// loads the extracted wards, patients, and notes into the records database.
// It exists so reporting queries and exports do not depend on the PDFs being
// re-parsed at request time.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ward-notes-server/internal/config"
	"ward-notes-server/internal/drive"
	"ward-notes-server/internal/logger"
	"ward-notes-server/internal/models"
	"ward-notes-server/internal/pdfparse"
	"ward-notes-server/internal/wards"
)

func main() {
	var (
		dirFlag       = flag.String("dir", "", "directory of ward_<id>_records.pdf files (default: PDF_DIRECTORY)")
		driveFolder   = flag.String("drive-folder", "", "Google Drive folder id to import from instead of a local directory")
		wardFlag      = flag.String("ward", "", "import only this ward id")
		extractorFlag = flag.String("extractor", "", "extraction strategy, line or regex (default: PDF_EXTRACTOR)")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	zapLog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Error building logger: %v", err)
	}
	defer zapLog.Sync()

	if *dirFlag == "" {
		*dirFlag = cfg.PDFDirectory
	}
	if *extractorFlag == "" {
		*extractorFlag = cfg.Extractor
	}

	var extractor pdfparse.Extractor
	switch *extractorFlag {
	case "line":
		extractor = pdfparse.LineExtractor{}
	case "regex":
		extractor = pdfparse.RegexExtractor{}
	default:
		zapLog.Error("unknown extractor", zap.String("value", *extractorFlag))
		os.Exit(1)
	}

	dbs, err := models.InitDB(models.DatabaseConfig{Dir: cfg.Database.Dir})
	if err != nil {
		zapLog.Error("database init failed", zap.Error(err))
		os.Exit(1)
	}

	ctx := context.Background()
	files, err := wardFiles(ctx, cfg, *dirFlag, *driveFolder, zapLog)
	if err != nil {
		zapLog.Error("listing ward files failed", zap.Error(err))
		os.Exit(1)
	}

	failed := false
	imported := 0
	for wardID, path := range files {
		if *wardFlag != "" && wardID != *wardFlag {
			continue
		}
		if err := importWard(dbs.Records, extractor, wardID, path, zapLog); err != nil {
			zapLog.Error("ward import failed", zap.String("ward", wardID), zap.Error(err))
			failed = true
			continue
		}
		imported++
	}

	zapLog.Info("import finished", zap.Int("wards", imported))
	if failed || imported == 0 {
		os.Exit(1)
	}
}

// wardFiles maps ward id to a local PDF path, downloading from Drive when a
// folder id was given.
func wardFiles(ctx context.Context, cfg *config.Config, dir, driveFolder string, zapLog *zap.Logger) (map[string]string, error) {
	out := make(map[string]string)

	if driveFolder != "" {
		client, err := drive.NewClient(ctx, cfg.Google, cfg.DataDirectory, zapLog)
		if err != nil {
			return nil, err
		}
		remote, err := client.ListWardFiles(ctx, driveFolder)
		if err != nil {
			return nil, err
		}
		for _, f := range remote {
			id, ok := wards.WardIDFromFilename(f.Name)
			if !ok {
				continue
			}
			path, err := client.LocalPath(ctx, f.ID, f.Name)
			if err != nil {
				return nil, fmt.Errorf("fetching %s: %w", f.Name, err)
			}
			out[id] = path
		}
		return out, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if id, ok := wards.WardIDFromFilename(e.Name()); ok {
			out[id] = filepath.Join(dir, e.Name())
		}
	}
	return out, nil
}

// importWard parses one ward PDF and loads its contents.
func importWard(db *gorm.DB, extractor pdfparse.Extractor, wardID, path string, zapLog *zap.Logger) error {
	records, err := pdfparse.ExtractFile(extractor, path, "")
	if err != nil {
		return err
	}
	return loadWard(db, wardID, path, records, zapLog)
}

// loadWard upserts one ward's extracted records in a single transaction.
// Patients present in the database for this ward but missing from the
// records are marked inactive rather than deleted.
func loadWard(db *gorm.DB, wardID, path string, records map[string]pdfparse.Record, zapLog *zap.Logger) error {
	return db.Transaction(func(tx *gorm.DB) error {
		ward := models.Ward{
			WardNumber:  wardID,
			DisplayName: wards.DisplayName(wardID),
			PDFFile:     path,
			LastUpdated: time.Now(),
		}
		var existing models.Ward
		err := tx.Where("ward_number = ?", wardID).First(&existing).Error
		switch {
		case err == gorm.ErrRecordNotFound:
			if err := tx.Create(&ward).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			existing.DisplayName = ward.DisplayName
			existing.PDFFile = ward.PDFFile
			existing.LastUpdated = ward.LastUpdated
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
		}

		seen := make([]string, 0, len(records))
		noteCount := 0
		for id, rec := range records {
			seen = append(seen, id)
			if err := upsertPatient(tx, wardID, path, rec); err != nil {
				return err
			}
			n, err := replacePDFNotes(tx, wardID, rec)
			if err != nil {
				return err
			}
			noteCount += n
		}

		// Patients no longer present in the file have left the ward.
		q := tx.Model(&models.Patient{}).Where("current_ward = ?", wardID)
		if len(seen) > 0 {
			q = q.Where("hospital_id NOT IN ?", seen)
		}
		if err := q.Update("is_active", false).Error; err != nil {
			return err
		}

		zapLog.Info("ward imported",
			zap.String("ward", wardID),
			zap.Int("patients", len(records)),
			zap.Int("notes", noteCount))
		return nil
	})
}

func upsertPatient(tx *gorm.DB, wardID, path string, rec pdfparse.Record) error {
	patient := models.Patient{
		HospitalID:  rec.ID,
		Name:        rec.Name,
		DOB:         rec.Info.DOB,
		Gender:      rec.Info.Gender,
		Age:         rec.Info.Age,
		CurrentWard: wardID,
		PDFFile:     path,
		IsActive:    true,
	}

	var existing models.Patient
	err := tx.Where("hospital_id = ?", rec.ID).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return tx.Create(&patient).Error
	}
	if err != nil {
		return err
	}
	existing.Name = patient.Name
	existing.DOB = patient.DOB
	existing.Gender = patient.Gender
	existing.Age = patient.Age
	existing.CurrentWard = wardID
	existing.PDFFile = path
	existing.IsActive = true
	return tx.Save(&existing).Error
}

// replacePDFNotes swaps the stored PDF-sourced notes for a patient with the
// freshly parsed set. Manually added notes are untouched.
func replacePDFNotes(tx *gorm.DB, wardID string, rec pdfparse.Record) (int, error) {
	if err := tx.Where("patient_id = ? AND is_pdf_note = ?", rec.ID, true).
		Delete(&models.CareNote{}).Error; err != nil {
		return 0, err
	}

	for _, n := range rec.CareNotes {
		ts, err := time.ParseInLocation("2006-01-02 15:04", n.Date, time.Local)
		if err != nil {
			// A malformed stamp keeps the note but sorts it last.
			ts = time.Time{}
		}
		note := models.CareNote{
			PatientID:   rec.ID,
			StaffName:   n.Staff,
			Note:        n.Note,
			Timestamp:   ts,
			WardID:      wardID,
			PatientName: rec.Name,
			IsPDFNote:   true,
		}
		if err := tx.Create(&note).Error; err != nil {
			return 0, err
		}
	}
	return len(rec.CareNotes), nil
}
