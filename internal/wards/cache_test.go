package wards

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ward-notes-server/internal/pdfparse"
)

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("pdf bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCacheReusesUnchangedFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "ward_1_records.pdf")

	var calls int32
	c := NewCache(func(string) (map[string]pdfparse.Record, error) {
		atomic.AddInt32(&calls, 1)
		return map[string]pdfparse.Record{"12345": {ID: "12345"}}, nil
	}, 8)

	for i := 0; i < 3; i++ {
		got, err := c.Get(path)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := got["12345"]; !ok {
			t.Fatalf("missing record: %v", got)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected a single parse, got %d", n)
	}
}

func TestCacheReparsesOnMtimeChange(t *testing.T) {
	path := writeFile(t, t.TempDir(), "ward_1_records.pdf")

	var calls int32
	c := NewCache(func(string) (map[string]pdfparse.Record, error) {
		atomic.AddInt32(&calls, 1)
		return map[string]pdfparse.Record{}, nil
	}, 8)

	if _, err := c.Get(path); err != nil {
		t.Fatal(err)
	}
	// Same path, newer mtime: a filename-keyed cache would serve stale
	// data here.
	newTime := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, newTime, newTime); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(path); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("expected re-parse after mtime change, got %d calls", n)
	}
}

func TestCacheSingleParseUnderConcurrency(t *testing.T) {
	path := writeFile(t, t.TempDir(), "ward_1_records.pdf")

	var calls int32
	c := NewCache(func(string) (map[string]pdfparse.Record, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(20 * time.Millisecond) // widen the race window
		return map[string]pdfparse.Record{}, nil
	}, 8)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Get(path); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("concurrent gets must share one parse, got %d", n)
	}
}

func TestCacheEvictsOldestBeyondBound(t *testing.T) {
	dir := t.TempDir()
	var calls int32
	c := NewCache(func(string) (map[string]pdfparse.Record, error) {
		atomic.AddInt32(&calls, 1)
		return map[string]pdfparse.Record{}, nil
	}, 2)

	paths := []string{
		writeFile(t, dir, "ward_1_records.pdf"),
		writeFile(t, dir, "ward_2_records.pdf"),
		writeFile(t, dir, "ward_3_records.pdf"),
	}
	for _, p := range paths {
		if _, err := c.Get(p); err != nil {
			t.Fatal(err)
		}
	}

	// ward_1 was evicted; fetching it again costs a fourth parse.
	if _, err := c.Get(paths[0]); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&calls); n != 4 {
		t.Errorf("expected 4 parses with bound 2, got %d", n)
	}
}

func TestCacheInvalidateForcesReparse(t *testing.T) {
	path := writeFile(t, t.TempDir(), "ward_1_records.pdf")

	var calls int32
	c := NewCache(func(string) (map[string]pdfparse.Record, error) {
		atomic.AddInt32(&calls, 1)
		return map[string]pdfparse.Record{}, nil
	}, 8)

	if _, err := c.Get(path); err != nil {
		t.Fatal(err)
	}
	c.Invalidate(path)
	if _, err := c.Get(path); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("expected re-parse after Invalidate, got %d calls", n)
	}
}

func TestCacheReleasesInFlightLocks(t *testing.T) {
	dir := t.TempDir()
	c := NewCache(func(string) (map[string]pdfparse.Record, error) {
		return map[string]pdfparse.Record{}, nil
	}, 8)

	for _, name := range []string{"ward_1_records.pdf", "ward_2_records.pdf", "ward_3_records.pdf"} {
		if _, err := c.Get(writeFile(t, dir, name)); err != nil {
			t.Fatal(err)
		}
	}

	c.mu.Lock()
	n := len(c.inWork)
	c.mu.Unlock()
	if n != 0 {
		t.Errorf("expected no lingering per-key locks, found %d", n)
	}
}

func TestCacheErrorNotCached(t *testing.T) {
	c := NewCache(func(string) (map[string]pdfparse.Record, error) {
		return map[string]pdfparse.Record{}, nil
	}, 2)
	if _, err := c.Get(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Error("expected error for missing file")
	}
}
