package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ward-notes-server/internal/audit"
	"ward-notes-server/internal/metrics"
	"ward-notes-server/internal/middleware"
	"ward-notes-server/internal/models"
	"ward-notes-server/internal/utils"
)

// shiftWindow bounds the "my shift" view; notes older than this are on the
// previous shift's record.
const shiftWindow = 12 * time.Hour

// NoteHandler handles adding care notes and shift summaries.
type NoteHandler struct {
	Records *gorm.DB
	Users   *gorm.DB
	Metrics *metrics.Collector
	Audit   *audit.Recorder
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(records, users *gorm.DB, collector *metrics.Collector, recorder *audit.Recorder) *NoteHandler {
	return &NoteHandler{Records: records, Users: users, Metrics: collector, Audit: recorder}
}

// AddNoteRequest represents the request body for adding a care note.
type AddNoteRequest struct {
	PatientID   string `json:"patientId"`
	PatientName string `json:"patientName"`
	WardID      string `json:"wardId"`
	Note        string `json:"note" binding:"required"`
}

// AddNote appends a care note for a patient. The patient id comes from the
// route when present, otherwise from the body. Disabled entirely when the
// notes_enabled setting is off.
func (h *NoteHandler) AddNote(c *gin.Context) {
	if !models.NotesEnabled(h.Users) {
		utils.Forbidden(c, "Adding notes is currently disabled by an administrator")
		return
	}

	var req AddNoteRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if id := c.Param("patientId"); id != "" {
		req.PatientID = id
	}
	if req.PatientID == "" {
		utils.BadRequest(c, "Patient id is required")
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	username, _ := middleware.GetUsernameFromContext(c)
	if userID == "" {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	note := models.CareNote{
		PatientID:   req.PatientID,
		UserID:      &userID,
		Username:    username,
		Note:        req.Note,
		Timestamp:   time.Now(),
		WardID:      req.WardID,
		PatientName: req.PatientName,
		IsPDFNote:   false,
	}
	if err := h.Records.Create(&note).Error; err != nil {
		utils.InternalServerError(c, "Failed to save note: "+err.Error())
		return
	}

	if h.Metrics != nil {
		h.Metrics.NotesCreatedTotal.Inc()
	}
	h.Audit.Record(userID, username, "add_note", req.PatientID)
	utils.Created(c, "Note added successfully", note)
}

// MyShiftNotes returns the notes the caller wrote during the current shift
// window, newest first.
func (h *NoteHandler) MyShiftNotes(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var notes []models.CareNote
	if err := h.Records.Where("user_id = ? AND timestamp > ?", userID, time.Now().Add(-shiftWindow)).
		Order("timestamp DESC").
		Find(&notes).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch shift notes: "+err.Error())
		return
	}

	utils.Success(c, "Shift notes fetched successfully", notes)
}
