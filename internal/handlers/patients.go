package handlers

import (
	"context"
	"sort"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ward-notes-server/internal/audit"
	"ward-notes-server/internal/middleware"
	"ward-notes-server/internal/models"
	"ward-notes-server/internal/pdfparse"
	"ward-notes-server/internal/utils"
	"ward-notes-server/internal/wards"
)

// PatientHandler serves individual patient records, merging PDF-extracted
// notes with notes added through the API.
type PatientHandler struct {
	Manager  *wards.Manager
	Cache    *wards.Cache
	Resolver PDFResolver
	Records  *gorm.DB
	Users    *gorm.DB
	Audit    *audit.Recorder
	Log      *zap.Logger
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(manager *wards.Manager, cache *wards.Cache, resolver PDFResolver, records, users *gorm.DB, recorder *audit.Recorder, log *zap.Logger) *PatientHandler {
	return &PatientHandler{Manager: manager, Cache: cache, Resolver: resolver, Records: records, Users: users, Audit: recorder, Log: log}
}

func (h *PatientHandler) wardRecords(ctx context.Context, meta wards.Meta) (map[string]pdfparse.Record, error) {
	path := meta.Filename
	if meta.DriveFileID != "" && h.Resolver != nil {
		resolved, err := h.Resolver.LocalPath(ctx, meta.DriveFileID, meta.Filename)
		if err != nil {
			return nil, err
		}
		path = resolved
	}
	return h.Cache.Get(path)
}

// findPatient locates a patient record by hospital id. A ward hint narrows
// the search to one file; without it every ward is scanned.
func (h *PatientHandler) findPatient(ctx context.Context, patientID, wardHint string) (pdfparse.Record, wards.Meta, bool) {
	snap := h.Manager.Snapshot()

	if wardHint != "" {
		if meta, ok := snap[wardHint]; ok {
			if records, err := h.wardRecords(ctx, meta); err == nil {
				if rec, ok := records[patientID]; ok {
					return rec, meta, true
				}
			}
		}
	}

	for wardID, meta := range snap {
		if wardID == wardHint {
			continue
		}
		records, err := h.wardRecords(ctx, meta)
		if err != nil {
			h.Log.Warn("skipping ward in patient lookup", zap.String("ward", wardID), zap.Error(err))
			continue
		}
		if rec, ok := records[patientID]; ok {
			return rec, meta, true
		}
	}
	return pdfparse.Record{}, wards.Meta{}, false
}

// NoteView is one care note in a patient response, from either source.
type NoteView struct {
	Timestamp string `json:"timestamp"`
	Staff     string `json:"staff"`
	Note      string `json:"note"`
	Source    string `json:"source"` // "pdf" or "manual"
}

// PatientResponse is the full patient view.
type PatientResponse struct {
	PatientID string     `json:"patientId"`
	Name      string     `json:"name"`
	WardID    string     `json:"wardId"`
	WardName  string     `json:"wardName"`
	DOB       string     `json:"dob,omitempty"`
	Gender    string     `json:"gender,omitempty"`
	Age       string     `json:"age,omitempty"`
	Notes     []NoteView `json:"notes"`
}

// mergedNotes combines PDF notes with manually added notes for one patient,
// newest first. PDF timestamps are already "YYYY-MM-DD HH:MM" strings, which
// sort correctly as text.
func (h *PatientHandler) mergedNotes(rec pdfparse.Record, patientID string) []NoteView {
	notes := make([]NoteView, 0, len(rec.CareNotes))
	for _, n := range rec.CareNotes {
		notes = append(notes, NoteView{Timestamp: n.Date, Staff: n.Staff, Note: n.Note, Source: "pdf"})
	}

	var manual []models.CareNote
	if err := h.Records.Where("patient_id = ? AND is_pdf_note = ?", patientID, false).Find(&manual).Error; err != nil {
		h.Log.Warn("manual note lookup failed", zap.String("patient", patientID), zap.Error(err))
	}
	for _, n := range manual {
		staff := n.StaffName
		if staff == "" {
			staff = n.Username
		}
		notes = append(notes, NoteView{
			Timestamp: n.Timestamp.Format("2006-01-02 15:04"),
			Staff:     staff,
			Note:      n.Note,
			Source:    "manual",
		})
	}

	sort.SliceStable(notes, func(i, j int) bool { return notes[i].Timestamp > notes[j].Timestamp })
	return notes
}

// GetPatient returns one patient's demographics and notes, and records the
// view in the caller's recently-viewed list.
func (h *PatientHandler) GetPatient(c *gin.Context) {
	patientID := c.Param("patientId")
	wardHint := c.Query("ward")

	rec, meta, found := h.findPatient(c.Request.Context(), patientID, wardHint)
	if !found {
		utils.NotFound(c, "Patient not found")
		return
	}

	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		if err := models.RecordView(h.Users, userID, rec.ID, rec.Name, meta.WardID); err != nil {
			h.Log.Warn("recording recent view failed", zap.Error(err))
		}
	}
	h.Audit.RecordRequest(c, "view_patient", patientID)

	utils.Success(c, "Patient fetched successfully", PatientResponse{
		PatientID: rec.ID,
		Name:      rec.Name,
		WardID:    meta.WardID,
		WardName:  meta.DisplayName,
		DOB:       rec.Info.DOB,
		Gender:    rec.Info.Gender,
		Age:       rec.Info.Age,
		Notes:     h.mergedNotes(rec, patientID),
	})
}

// GetPatientNotes returns only the notes for a patient, newest first.
func (h *PatientHandler) GetPatientNotes(c *gin.Context) {
	patientID := c.Param("patientId")

	rec, _, found := h.findPatient(c.Request.Context(), patientID, c.Query("ward"))
	if !found {
		utils.NotFound(c, "Patient not found")
		return
	}

	h.Audit.RecordRequest(c, "view_patient_notes", patientID)
	utils.Success(c, "Notes fetched successfully", h.mergedNotes(rec, patientID))
}

// GetRecentPatients returns the caller's most recently viewed patients.
func (h *PatientHandler) GetRecentPatients(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var views []models.RecentlyViewedPatient
	if err := h.Users.Where("user_id = ?", userID).
		Order("viewed_at DESC").
		Limit(models.MaxRecentlyViewed).
		Find(&views).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch recent patients: "+err.Error())
		return
	}

	utils.Success(c, "Recent patients fetched successfully", views)
}
