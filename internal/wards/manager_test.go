package wards

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestDisplayName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"1", "Ward 1"},
		{"42", "Ward 42"},
		{"Long_1", "Long 1"},
		{"ICU", "ICU"},
	}
	for _, tc := range cases {
		if got := DisplayName(tc.in); got != tc.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestWardIDFromFilename(t *testing.T) {
	cases := []struct {
		in string
		id string
		ok bool
	}{
		{"ward_1_records.pdf", "1", true},
		{"ward_Long_3_records.pdf", "Long_3", true},
		{"ward__records.pdf", "", false},
		{"notes.pdf", "", false},
		{"ward_1_records.txt", "", false},
	}
	for _, tc := range cases {
		id, ok := WardIDFromFilename(tc.in)
		if id != tc.id || ok != tc.ok {
			t.Errorf("WardIDFromFilename(%q) = (%q, %v), want (%q, %v)", tc.in, id, ok, tc.id, tc.ok)
		}
	}
}

func TestRefreshScansLocalDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"ward_1_records.pdf", "ward_Long_2_records.pdf", "unrelated.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	m := NewManager(dir, "", nil, zap.NewNop())
	if err := m.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	snap := m.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 wards, got %d: %v", len(snap), snap)
	}
	if snap["Long_2"].DisplayName != "Long 2" {
		t.Errorf("wrong display name: %+v", snap["Long_2"])
	}
	if _, ok := m.Get("1"); !ok {
		t.Error("ward 1 missing")
	}
}

type fakeLister struct {
	files []RemoteFile
	err   error
}

func (f fakeLister) ListWardFiles(context.Context, string) ([]RemoteFile, error) {
	return f.files, f.err
}

func TestRefreshPrefersDriveListing(t *testing.T) {
	lister := fakeLister{files: []RemoteFile{
		{ID: "abc123", Name: "ward_7_records.pdf"},
		{ID: "def456", Name: "something_else.pdf"},
	}}

	m := NewManager(t.TempDir(), "folder-id", lister, zap.NewNop())
	if err := m.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	snap := m.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected 1 ward, got %v", snap)
	}
	if snap["7"].DriveFileID != "abc123" {
		t.Errorf("drive file id lost: %+v", snap["7"])
	}
}

func TestRefreshFallsBackToLocalOnDriveError(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "ward_5_records.pdf"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewManager(dir, "folder-id", fakeLister{err: errors.New("quota exceeded")}, zap.NewNop())
	if err := m.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, ok := m.Get("5"); !ok {
		t.Error("expected local fallback to find ward 5")
	}
}

func TestBackgroundLoadClearsLoadingFlag(t *testing.T) {
	m := NewManager(t.TempDir(), "", nil, zap.NewNop())
	m.StartBackgroundLoad(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for m.Loading() {
		if time.Now().After(deadline) {
			t.Fatal("loading flag never cleared")
		}
		time.Sleep(5 * time.Millisecond)
	}
	// Empty directory loads an empty, but consistent, ward set.
	if snap := m.Snapshot(); len(snap) != 0 {
		t.Errorf("expected empty snapshot, got %v", snap)
	}
}
