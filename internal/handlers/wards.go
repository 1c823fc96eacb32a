package handlers

import (
	"context"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ward-notes-server/internal/audit"
	"ward-notes-server/internal/pdfparse"
	"ward-notes-server/internal/utils"
	"ward-notes-server/internal/wards"
)

// PDFResolver turns a Drive file reference into a local path. *drive.Client
// implements it; it is nil when Drive sync is not configured.
type PDFResolver interface {
	LocalPath(ctx context.Context, fileID, filename string) (string, error)
}

// WardHandler serves ward listings and ward-level patient data extracted
// from the source PDFs.
type WardHandler struct {
	Manager  *wards.Manager
	Cache    *wards.Cache
	Resolver PDFResolver
	Audit    *audit.Recorder
	Log      *zap.Logger
}

// NewWardHandler creates a new WardHandler. resolver may be nil.
func NewWardHandler(manager *wards.Manager, cache *wards.Cache, resolver PDFResolver, recorder *audit.Recorder, log *zap.Logger) *WardHandler {
	return &WardHandler{Manager: manager, Cache: cache, Resolver: resolver, Audit: recorder, Log: log}
}

// wardRecords resolves a ward's PDF to a local path and returns its parsed
// records through the cache.
func (h *WardHandler) wardRecords(ctx context.Context, meta wards.Meta) (map[string]pdfparse.Record, error) {
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

// WardSummary is one entry of the ward list.
type WardSummary struct {
	WardID      string `json:"wardId"`
	DisplayName string `json:"displayName"`
	Filename    string `json:"filename"`
	LastUpdated string `json:"lastUpdated"`
}

// WardListResponse is the ward list plus the background-load flag so the UI
// can show a spinner while the initial scan runs.
type WardListResponse struct {
	Wards   []WardSummary `json:"wards"`
	Loading bool          `json:"loading"`
}

func wardSummaries(snap map[string]wards.Meta) []WardSummary {
	out := make([]WardSummary, 0, len(snap))
	for _, meta := range snap {
		out = append(out, WardSummary{
			WardID:      meta.WardID,
			DisplayName: meta.DisplayName,
			Filename:    meta.Filename,
			LastUpdated: meta.LastUpdated.Format("2006-01-02 15:04:05"),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	return out
}

// GetWards lists all known wards.
func (h *WardHandler) GetWards(c *gin.Context) {
	utils.Success(c, "Wards fetched successfully", WardListResponse{
		Wards:   wardSummaries(h.Manager.Snapshot()),
		Loading: h.Manager.Loading(),
	})
}

// SearchWards filters the ward list by display name.
func (h *WardHandler) SearchWards(c *gin.Context) {
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))
	all := wardSummaries(h.Manager.Snapshot())
	if q == "" {
		utils.Success(c, "Wards fetched successfully", WardListResponse{Wards: all, Loading: h.Manager.Loading()})
		return
	}

	matched := make([]WardSummary, 0, len(all))
	for _, w := range all {
		if strings.Contains(strings.ToLower(w.DisplayName), q) || strings.Contains(strings.ToLower(w.WardID), q) {
			matched = append(matched, w)
		}
	}
	utils.Success(c, "Wards fetched successfully", WardListResponse{Wards: matched, Loading: h.Manager.Loading()})
}

// WardPatient is one row of a ward's patient list.
type WardPatient struct {
	PatientID string `json:"patientId"`
	Name      string `json:"name"`
	DOB       string `json:"dob,omitempty"`
	Gender    string `json:"gender,omitempty"`
	Age       string `json:"age,omitempty"`
	NoteCount int    `json:"noteCount"`
}

// WardDetailResponse is a ward with its extracted patients.
type WardDetailResponse struct {
	Ward     WardSummary   `json:"ward"`
	Patients []WardPatient `json:"patients"`
}

// GetWard returns one ward and its patients parsed from the ward PDF.
func (h *WardHandler) GetWard(c *gin.Context) {
	wardID := c.Param("wardId")
	meta, ok := h.Manager.Get(wardID)
	if !ok {
		utils.NotFound(c, "Ward not found")
		return
	}

	records, err := h.wardRecords(c.Request.Context(), meta)
	if err != nil {
		h.Log.Error("ward parse failed", zap.String("ward", wardID), zap.Error(err))
		utils.InternalServerError(c, "Failed to read ward records")
		return
	}

	patients := make([]WardPatient, 0, len(records))
	for _, rec := range records {
		patients = append(patients, WardPatient{
			PatientID: rec.ID,
			Name:      rec.Name,
			DOB:       rec.Info.DOB,
			Gender:    rec.Info.Gender,
			Age:       rec.Info.Age,
			NoteCount: len(rec.CareNotes),
		})
	}
	sort.Slice(patients, func(i, j int) bool { return patients[i].Name < patients[j].Name })

	h.Audit.RecordRequest(c, "view_ward", wardID)
	utils.Success(c, "Ward fetched successfully", WardDetailResponse{
		Ward: WardSummary{
			WardID:      meta.WardID,
			DisplayName: meta.DisplayName,
			Filename:    meta.Filename,
			LastUpdated: meta.LastUpdated.Format("2006-01-02 15:04:05"),
		},
		Patients: patients,
	})
}

// PatientSearchHit is one patient search result with its ward.
type PatientSearchHit struct {
	PatientID string `json:"patientId"`
	Name      string `json:"name"`
	WardID    string `json:"wardId"`
	WardName  string `json:"wardName"`
	DOB       string `json:"dob,omitempty"`
}

// SearchPatients finds patients across all wards by hospital id or name
// substring.
func (h *WardHandler) SearchPatients(c *gin.Context) {
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))
	if q == "" {
		utils.BadRequest(c, "Query parameter q is required")
		return
	}

	hits := []PatientSearchHit{}
	for wardID, meta := range h.Manager.Snapshot() {
		records, err := h.wardRecords(c.Request.Context(), meta)
		if err != nil {
			// One unreadable ward must not empty the whole search.
			h.Log.Warn("skipping ward in search", zap.String("ward", wardID), zap.Error(err))
			continue
		}
		for _, rec := range records {
			if strings.Contains(strings.ToLower(rec.ID), q) || strings.Contains(strings.ToLower(rec.Name), q) {
				hits = append(hits, PatientSearchHit{
					PatientID: rec.ID,
					Name:      rec.Name,
					WardID:    wardID,
					WardName:  meta.DisplayName,
					DOB:       rec.Info.DOB,
				})
			}
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].PatientID < hits[j].PatientID })

	h.Audit.RecordRequest(c, "search_patients", "")
	utils.Success(c, "Search complete", hits)
}

// SearchWardPatients finds patients within a single ward by hospital id or
// name substring.
func (h *WardHandler) SearchWardPatients(c *gin.Context) {
	wardID := c.Param("wardId")
	meta, ok := h.Manager.Get(wardID)
	if !ok {
		utils.NotFound(c, "Ward not found")
		return
	}

	q := strings.ToLower(strings.TrimSpace(c.Query("q")))
	if q == "" {
		utils.BadRequest(c, "Query parameter q is required")
		return
	}

	records, err := h.wardRecords(c.Request.Context(), meta)
	if err != nil {
		h.Log.Error("ward parse failed", zap.String("ward", wardID), zap.Error(err))
		utils.InternalServerError(c, "Failed to read ward records")
		return
	}

	hits := []PatientSearchHit{}
	for _, rec := range records {
		if strings.Contains(strings.ToLower(rec.ID), q) || strings.Contains(strings.ToLower(rec.Name), q) {
			hits = append(hits, PatientSearchHit{
				PatientID: rec.ID,
				Name:      rec.Name,
				WardID:    wardID,
				WardName:  meta.DisplayName,
				DOB:       rec.Info.DOB,
			})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].PatientID < hits[j].PatientID })

	h.Audit.RecordRequest(c, "search_ward", wardID)
	utils.Success(c, "Search complete", hits)
}

// RefreshWards re-scans the ward source listing on demand (admin).
func (h *WardHandler) RefreshWards(c *gin.Context) {
	if err := h.Manager.Refresh(c.Request.Context()); err != nil {
		utils.InternalServerError(c, "Failed to refresh ward list: "+err.Error())
		return
	}
	utils.Success(c, "Ward list refreshed", WardListResponse{
		Wards:   wardSummaries(h.Manager.Snapshot()),
		Loading: false,
	})
}
