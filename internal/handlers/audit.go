package handlers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ward-notes-server/internal/models"
	"ward-notes-server/internal/utils"
)

const auditPageSize = 100

// AuditHandler serves the read side of the audit log (admin only). Writes go
// through audit.Recorder; nothing here mutates the log.
type AuditHandler struct {
	DB *gorm.DB
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(db *gorm.DB) *AuditHandler {
	return &AuditHandler{DB: db}
}

// AuditPage is one page of audit entries.
type AuditPage struct {
	Entries    []models.AuditLog `json:"entries"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalCount int64             `json:"totalCount"`
}

// ListAuditLog returns audit entries newest first, filterable by username,
// action, and date range.
func (h *AuditHandler) ListAuditLog(c *gin.Context) {
	q := h.DB.Model(&models.AuditLog{})

	if username := c.Query("username"); username != "" {
		q = q.Where("username = ?", username)
	}
	if action := c.Query("action"); action != "" {
		q = q.Where("action = ?", action)
	}
	if from := c.Query("date_from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			utils.BadRequest(c, fmt.Sprintf("invalid date_from %q", from))
			return
		}
		q = q.Where("timestamp >= ?", t)
	}
	if to := c.Query("date_to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			utils.BadRequest(c, fmt.Sprintf("invalid date_to %q", to))
			return
		}
		q = q.Where("timestamp < ?", t.AddDate(0, 0, 1))
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count audit entries: "+err.Error())
		return
	}

	var entries []models.AuditLog
	if err := q.Order("timestamp DESC").
		Offset((page - 1) * auditPageSize).
		Limit(auditPageSize).
		Find(&entries).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch audit log: "+err.Error())
		return
	}

	utils.Success(c, "Audit log fetched successfully", AuditPage{
		Entries:    entries,
		Page:       page,
		PageSize:   auditPageSize,
		TotalCount: total,
	})
}
