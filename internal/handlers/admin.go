package handlers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ward-notes-server/internal/audit"
	"ward-notes-server/internal/export"
	"ward-notes-server/internal/metrics"
	"ward-notes-server/internal/models"
	"ward-notes-server/internal/utils"
)

const notesPageSize = 50

// AdminHandler handles administration: note review and export, user
// management, runtime settings, and note templates.
type AdminHandler struct {
	Records *gorm.DB
	Users   *gorm.DB
	Metrics *metrics.Collector
	Audit   *audit.Recorder
	Log     *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(records, users *gorm.DB, collector *metrics.Collector, recorder *audit.Recorder, log *zap.Logger) *AdminHandler {
	return &AdminHandler{Records: records, Users: users, Metrics: collector, Audit: recorder, Log: log}
}

// noteQuery applies the ward/username/date filters shared by the list and
// export endpoints. Dates are inclusive day bounds in "2006-01-02" form.
func (h *AdminHandler) noteQuery(c *gin.Context) (*gorm.DB, error) {
	q := h.Records.Model(&models.CareNote{})

	if ward := c.Query("ward"); ward != "" {
		q = q.Where("ward_id = ?", ward)
	}
	if username := c.Query("username"); username != "" {
		q = q.Where("username = ?", username)
	}
	if from := c.Query("date_from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return nil, fmt.Errorf("invalid date_from %q", from)
		}
		q = q.Where("timestamp >= ?", t)
	}
	if to := c.Query("date_to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return nil, fmt.Errorf("invalid date_to %q", to)
		}
		q = q.Where("timestamp < ?", t.AddDate(0, 0, 1))
	}
	return q, nil
}

// NotesPage is one page of the admin note list.
type NotesPage struct {
	Notes      []models.CareNote `json:"notes"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalCount int64             `json:"totalCount"`
}

// ListNotes returns care notes filtered by ward, author, and date range,
// paginated newest first.
func (h *AdminHandler) ListNotes(c *gin.Context) {
	q, err := h.noteQuery(c)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count notes: "+err.Error())
		return
	}

	var notes []models.CareNote
	if err := q.Order("timestamp DESC").
		Offset((page - 1) * notesPageSize).
		Limit(notesPageSize).
		Find(&notes).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch notes: "+err.Error())
		return
	}

	utils.Success(c, "Notes fetched successfully", NotesPage{
		Notes:      notes,
		Page:       page,
		PageSize:   notesPageSize,
		TotalCount: total,
	})
}

// ExportNotes downloads the filtered note set as an Excel workbook or a PDF
// document, selected by the :format route segment (excel|pdf).
func (h *AdminHandler) ExportNotes(c *gin.Context) {
	q, err := h.noteQuery(c)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	var notes []models.CareNote
	if err := q.Order("timestamp DESC").Find(&notes).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch notes: "+err.Error())
		return
	}

	format := c.Param("format")
	stamp := time.Now().Format("20060102_150405")

	var (
		data        []byte
		contentType string
		filename    string
	)
	switch format {
	case "excel":
		data, err = export.Excel(notes)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		filename = "care_notes_" + stamp + ".xlsx"
	case "pdf":
		data, err = export.PDF(notes)
		contentType = "application/pdf"
		filename = "care_notes_" + stamp + ".pdf"
	default:
		utils.BadRequest(c, "format must be excel or pdf")
		return
	}
	if err != nil {
		utils.InternalServerError(c, "Failed to build export: "+err.Error())
		return
	}

	if h.Metrics != nil {
		h.Metrics.NotesExportedTotal.WithLabelValues(format).Inc()
	}
	h.Audit.RecordRequest(c, "export_notes_"+format, "")

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(200, contentType, data)
}

// CreateUserRequest represents the request body for creating a user by an admin.
type CreateUserRequest struct {
	Username    string `json:"username" binding:"required,min=3"`
	Password    string `json:"password" binding:"required,min=8"`
	Role        string `json:"role" binding:"required,oneof=admin user"`
	DefaultWard string `json:"defaultWard"`
}

// CreateUser creates a new staff account.
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var existing models.User
	if err := h.Users.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		utils.BadRequest(c, "User with this username already exists")
		return
	} else if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	user := models.User{
		Username:    req.Username,
		Role:        models.Role(req.Role),
		DefaultWard: req.DefaultWard,
	}
	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}
	if err := h.Users.Create(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to create user: "+err.Error())
		return
	}

	h.Audit.RecordRequest(c, "create_user", "")
	utils.Created(c, "User created successfully", user.Sanitize())
}

// ListUsers returns all staff accounts.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var users []models.User
	if err := h.Users.Find(&users).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch users: "+err.Error())
		return
	}

	sanitized := make([]models.UserSanitized, len(users))
	for i, u := range users {
		sanitized[i] = u.Sanitize()
	}
	utils.Success(c, "Users fetched successfully", sanitized)
}

// ResetPasswordRequest represents the request body for an admin password reset.
type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// ResetPassword sets a new password on the given account.
func (h *AdminHandler) ResetPassword(c *gin.Context) {
	userID := c.Param("id")

	var req ResetPasswordRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.Users.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}
	if err := h.Users.Save(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to update password: "+err.Error())
		return
	}

	// Force re-login everywhere by revoking the account's refresh tokens.
	// The reset itself already succeeded, so a failure here is logged rather
	// than surfaced.
	if err := h.Users.Model(&models.RefreshToken{}).Where("user_id = ?", user.ID).Update("is_revoked", true).Error; err != nil {
		h.Log.Warn("revoking refresh tokens after reset failed", zap.String("user", user.Username), zap.Error(err))
	}

	h.Audit.RecordRequest(c, "reset_password", "")
	utils.Success(c, "Password reset successfully", nil)
}

// SettingsResponse mirrors the runtime toggles.
type SettingsResponse struct {
	NotesEnabled   bool `json:"notesEnabled"`
	TimeoutEnabled bool `json:"timeoutEnabled"`
	TimeoutMinutes int  `json:"timeoutMinutes"`
}

// GetSettings returns the current runtime settings.
func (h *AdminHandler) GetSettings(c *gin.Context) {
	utils.Success(c, "Settings fetched successfully", SettingsResponse{
		NotesEnabled:   models.NotesEnabled(h.Users),
		TimeoutEnabled: models.TimeoutEnabled(h.Users),
		TimeoutMinutes: models.TimeoutMinutes(h.Users),
	})
}

// UpdateSettingsRequest carries partial settings updates; absent fields are
// left unchanged.
type UpdateSettingsRequest struct {
	NotesEnabled   *bool `json:"notesEnabled"`
	TimeoutEnabled *bool `json:"timeoutEnabled"`
	TimeoutMinutes *int  `json:"timeoutMinutes"`
}

// UpdateSettings stores the provided settings.
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	if req.TimeoutMinutes != nil && *req.TimeoutMinutes <= 0 {
		utils.BadRequest(c, "timeoutMinutes must be positive")
		return
	}

	if req.NotesEnabled != nil {
		if err := models.SetSetting(h.Users, models.SettingNotesEnabled, strconv.FormatBool(*req.NotesEnabled)); err != nil {
			utils.InternalServerError(c, "Failed to update settings: "+err.Error())
			return
		}
	}
	if req.TimeoutEnabled != nil {
		if err := models.SetSetting(h.Users, models.SettingTimeoutEnabled, strconv.FormatBool(*req.TimeoutEnabled)); err != nil {
			utils.InternalServerError(c, "Failed to update settings: "+err.Error())
			return
		}
	}
	if req.TimeoutMinutes != nil {
		if err := models.SetSetting(h.Users, models.SettingTimeoutMinutes, strconv.Itoa(*req.TimeoutMinutes)); err != nil {
			utils.InternalServerError(c, "Failed to update settings: "+err.Error())
			return
		}
	}

	h.Audit.RecordRequest(c, "update_settings", "")
	h.GetSettings(c)
}

// ListTemplates returns the non-deleted template categories with their
// non-deleted templates.
func (h *AdminHandler) ListTemplates(c *gin.Context) {
	var categories []models.TemplateCategory
	if err := h.Users.Where("is_deleted = ?", false).
		Preload("Templates", "is_deleted = ?", false).
		Find(&categories).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch templates: "+err.Error())
		return
	}
	utils.Success(c, "Templates fetched successfully", categories)
}

// CreateCategoryRequest represents the request body for a new template category.
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateCategory adds a template category.
func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	category := models.TemplateCategory{Name: req.Name}
	if err := h.Users.Create(&category).Error; err != nil {
		utils.InternalServerError(c, "Failed to create category: "+err.Error())
		return
	}
	utils.Created(c, "Category created successfully", category)
}

// DeleteCategory soft-deletes a category and its templates.
func (h *AdminHandler) DeleteCategory(c *gin.Context) {
	categoryID := c.Param("id")

	if err := h.Users.Model(&models.TemplateCategory{}).
		Where("id = ?", categoryID).
		Update("is_deleted", true).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete category: "+err.Error())
		return
	}
	if err := h.Users.Model(&models.NoteTemplate{}).Where("category_id = ?", categoryID).Update("is_deleted", true).Error; err != nil {
		h.Log.Warn("cascading template delete failed", zap.String("category", categoryID), zap.Error(err))
	}

	utils.Success(c, "Category deleted successfully", nil)
}

// CreateTemplateRequest represents the request body for a new note template.
type CreateTemplateRequest struct {
	CategoryID string `json:"categoryId" binding:"required"`
	Title      string `json:"title" binding:"required"`
	Body       string `json:"body" binding:"required"`
}

// CreateTemplate adds a canned note template.
func (h *AdminHandler) CreateTemplate(c *gin.Context) {
	var req CreateTemplateRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var category models.TemplateCategory
	if err := h.Users.First(&category, "id = ? AND is_deleted = ?", req.CategoryID, false).Error; err != nil {
		utils.BadRequest(c, "Category not found")
		return
	}

	template := models.NoteTemplate{CategoryID: req.CategoryID, Title: req.Title, Body: req.Body}
	if err := h.Users.Create(&template).Error; err != nil {
		utils.InternalServerError(c, "Failed to create template: "+err.Error())
		return
	}
	utils.Created(c, "Template created successfully", template)
}

// UpdateTemplateRequest represents the request body for editing a template.
type UpdateTemplateRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// UpdateTemplate edits a template's title or body.
func (h *AdminHandler) UpdateTemplate(c *gin.Context) {
	templateID := c.Param("id")

	var req UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var template models.NoteTemplate
	if err := h.Users.First(&template, "id = ? AND is_deleted = ?", templateID, false).Error; err != nil {
		utils.NotFound(c, "Template not found")
		return
	}

	if req.Title != "" {
		template.Title = req.Title
	}
	if req.Body != "" {
		template.Body = req.Body
	}
	if err := h.Users.Save(&template).Error; err != nil {
		utils.InternalServerError(c, "Failed to update template: "+err.Error())
		return
	}
	utils.Success(c, "Template updated successfully", template)
}

// DeleteTemplate soft-deletes one template.
func (h *AdminHandler) DeleteTemplate(c *gin.Context) {
	if err := h.Users.Model(&models.NoteTemplate{}).
		Where("id = ?", c.Param("id")).
		Update("is_deleted", true).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete template: "+err.Error())
		return
	}
	utils.Success(c, "Template deleted successfully", nil)
}
