// Package wards owns ward metadata and the parse cache. All reads go through
// snapshot accessors guarded by a lock, so the background initial load cannot
// race request handlers.
package wards

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	filePrefix = "ward_"
	fileSuffix = "_records.pdf"
)

// Meta describes one ward's source file. DriveFileID is empty for wards
// served from the local PDF directory.
type Meta struct {
	WardID      string
	DisplayName string
	Filename    string
	DriveFileID string
	LastUpdated time.Time
}

// RemoteFile is a ward PDF listed in the configured Drive folder.
type RemoteFile struct {
	ID   string
	Name string
}

// FileLister enumerates ward PDFs in a remote folder. *drive.Client
// implements it; tests substitute fakes.
type FileLister interface {
	ListWardFiles(ctx context.Context, folderID string) ([]RemoteFile, error)
}

// Manager holds the ward metadata map behind a RWMutex and refreshes it from
// the local PDF directory or a Drive folder.
type Manager struct {
	pdfDir   string
	folderID string
	lister   FileLister
	log      *zap.Logger

	mu      sync.RWMutex
	wards   map[string]Meta
	loading bool
}

// NewManager creates a Manager. lister may be nil when Drive is not
// configured; folderID is ignored in that case.
func NewManager(pdfDir, folderID string, lister FileLister, log *zap.Logger) *Manager {
	return &Manager{
		pdfDir:   pdfDir,
		folderID: folderID,
		lister:   lister,
		log:      log,
		wards:    make(map[string]Meta),
	}
}

// Loading reports whether the initial background load is still running.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// Snapshot returns a copy of the current ward metadata map.
func (m *Manager) Snapshot() map[string]Meta {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]Meta, len(m.wards))
	for k, v := range m.wards {
		out[k] = v
	}
	return out
}

// Get returns the metadata for one ward.
func (m *Manager) Get(wardID string) (Meta, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	meta, ok := m.wards[wardID]
	return meta, ok
}

// StartBackgroundLoad kicks off the initial metadata load without blocking
// startup. Requests arriving before it finishes see an empty (not partial)
// ward set.
func (m *Manager) StartBackgroundLoad(ctx context.Context) {
	m.mu.Lock()
	m.loading = true
	m.mu.Unlock()

	go func() {
		if err := m.Refresh(ctx); err != nil {
			m.log.Warn("initial ward load failed", zap.Error(err))
		}
		m.mu.Lock()
		m.loading = false
		m.mu.Unlock()
	}()
}

// Refresh rebuilds the metadata map from Drive when configured, falling back
// to the local PDF directory. The map is swapped in one write so readers
// never observe a half-populated set.
func (m *Manager) Refresh(ctx context.Context) error {
	var (
		wards map[string]Meta
		err   error
	)
	if m.lister != nil && m.folderID != "" {
		wards, err = m.listDrive(ctx)
		if err != nil {
			m.log.Warn("drive listing failed, falling back to local PDFs", zap.Error(err))
		}
	}
	if wards == nil {
		wards, err = m.scanLocal()
		if err != nil {
			return err
		}
	}

	m.mu.Lock()
	m.wards = wards
	m.mu.Unlock()
	m.log.Info("ward metadata loaded", zap.Int("wards", len(wards)))
	return nil
}

func (m *Manager) listDrive(ctx context.Context) (map[string]Meta, error) {
	files, err := m.lister.ListWardFiles(ctx, m.folderID)
	if err != nil {
		return nil, err
	}
	wards := make(map[string]Meta, len(files))
	for _, f := range files {
		id, ok := WardIDFromFilename(f.Name)
		if !ok {
			continue
		}
		wards[id] = Meta{
			WardID:      id,
			DisplayName: DisplayName(id),
			Filename:    f.Name,
			DriveFileID: f.ID,
			LastUpdated: time.Now(),
		}
	}
	return wards, nil
}

func (m *Manager) scanLocal() (map[string]Meta, error) {
	entries, err := os.ReadDir(m.pdfDir)
	if err != nil {
		return nil, fmt.Errorf("reading pdf directory %s: %w", m.pdfDir, err)
	}
	wards := make(map[string]Meta)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		id, ok := WardIDFromFilename(e.Name())
		if !ok {
			continue
		}
		info, err := e.Info()
		updated := time.Now()
		if err == nil {
			updated = info.ModTime()
		}
		wards[id] = Meta{
			WardID:      id,
			DisplayName: DisplayName(id),
			Filename:    filepath.Join(m.pdfDir, e.Name()),
			LastUpdated: updated,
		}
	}
	return wards, nil
}

// WardIDFromFilename pulls the ward id out of ward_<id>_records.pdf.
func WardIDFromFilename(name string) (string, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return "", false
	}
	id := name[len(filePrefix) : len(name)-len(fileSuffix)]
	if id == "" {
		return "", false
	}
	return id, true
}

// DisplayName renders a ward id for the UI: "Long_1" becomes "Long 1",
// plain digits become "Ward N", anything else passes through.
func DisplayName(wardID string) string {
	if strings.HasPrefix(wardID, "Long_") {
		return "Long " + wardID[len("Long_"):]
	}
	if isDigits(wardID) {
		return "Ward " + wardID
	}
	return wardID
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
