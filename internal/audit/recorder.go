// Package audit appends access events to the audit database. The log is
// write-only from the application's point of view; nothing ever updates or
// deletes a row.
package audit

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ward-notes-server/internal/middleware"
	"ward-notes-server/internal/models"
)

// Recorder writes audit entries.
type Recorder struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewRecorder creates a Recorder on the audit database connection.
func NewRecorder(db *gorm.DB, log *zap.Logger) *Recorder {
	return &Recorder{db: db, log: log}
}

// Record appends one entry. A failed insert is logged and swallowed: losing
// an audit row must not fail the user-facing action.
func (r *Recorder) Record(userID, username, action, patientID string) {
	entry := models.AuditLog{
		UserID:    userID,
		Username:  username,
		Action:    action,
		PatientID: patientID,
		Timestamp: time.Now(),
	}
	if err := r.db.Create(&entry).Error; err != nil {
		r.log.Warn("audit write failed",
			zap.String("action", action),
			zap.String("user", username),
			zap.Error(err))
	}
}

// RecordRequest reads the authenticated user from the gin context and
// appends an entry on their behalf.
func (r *Recorder) RecordRequest(c *gin.Context, action, patientID string) {
	userID, _ := middleware.GetUserIDFromContext(c)
	username, _ := middleware.GetUsernameFromContext(c)
	if userID == "" {
		return
	}
	r.Record(userID, username, action, patientID)
}
