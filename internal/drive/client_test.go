package drive

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"ward-notes-server/internal/wards"
)

type fakeAPI struct {
	files     []wards.RemoteFile
	content   string
	downloads int32
	err       error
}

func (f *fakeAPI) List(context.Context, string) ([]wards.RemoteFile, error) {
	return f.files, f.err
}

func (f *fakeAPI) Download(context.Context, string) (io.ReadCloser, error) {
	if f.err != nil {
		return nil, f.err
	}
	atomic.AddInt32(&f.downloads, 1)
	return io.NopCloser(strings.NewReader(f.content)), nil
}

func TestLocalPathDownloadsOnce(t *testing.T) {
	api := &fakeAPI{content: "pdf bytes"}
	c := newClient(api, filepath.Join(t.TempDir(), "pdf_cache"), zap.NewNop())

	var first string
	for i := 0; i < 3; i++ {
		path, err := c.LocalPath(context.Background(), "file-1", "ward_1_records.pdf")
		if err != nil {
			t.Fatal(err)
		}
		if first == "" {
			first = path
		} else if path != first {
			t.Fatalf("path changed between calls: %q vs %q", first, path)
		}
	}

	if n := atomic.LoadInt32(&api.downloads); n != 1 {
		t.Errorf("expected a single download, got %d", n)
	}
	data, err := os.ReadFile(first)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "pdf bytes" {
		t.Errorf("cached content %q", data)
	}
}

func TestLocalPathRefreshesExpiredCache(t *testing.T) {
	api := &fakeAPI{content: "fresh"}
	c := newClient(api, filepath.Join(t.TempDir(), "pdf_cache"), zap.NewNop())

	path, err := c.LocalPath(context.Background(), "file-1", "ward_1_records.pdf")
	if err != nil {
		t.Fatal(err)
	}
	stale := time.Now().Add(-CacheTTL - time.Minute)
	if err := os.Chtimes(path, stale, stale); err != nil {
		t.Fatal(err)
	}

	if _, err := c.LocalPath(context.Background(), "file-1", "ward_1_records.pdf"); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&api.downloads); n != 2 {
		t.Errorf("expected re-download after TTL, got %d", n)
	}
}

func TestLocalPathPropagatesDownloadError(t *testing.T) {
	api := &fakeAPI{err: errors.New("rate limited")}
	c := newClient(api, filepath.Join(t.TempDir(), "pdf_cache"), zap.NewNop())

	if _, err := c.LocalPath(context.Background(), "file-1", "ward_1_records.pdf"); err == nil {
		t.Error("expected error from failed download")
	}
}

func TestListWardFilesFiltersNonWardPDFs(t *testing.T) {
	api := &fakeAPI{files: []wards.RemoteFile{
		{ID: "a", Name: "ward_1_records.pdf"},
		{ID: "b", Name: "meeting_minutes.pdf"},
		{ID: "c", Name: "ward_Long_2_records.pdf"},
	}}
	c := newClient(api, t.TempDir(), zap.NewNop())

	got, err := c.ListWardFiles(context.Background(), "folder")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("unexpected listing: %v", got)
	}
}
