package session

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/duskview/duskview/colorize"
)

func TestStorePutGet(t *testing.T) {
	s, err := NewStore(NewMemoryBackend())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	settings := colorize.DefaultSettings()
	settings.Sepia = 25
	if err := s.Put("fp-1", 7, 1.5, settings); err != nil {
		t.Fatalf("Put: %v", err)
	}

	rec, ok := s.Get("fp-1")
	if !ok {
		t.Fatal("record not found after Put")
	}
	if rec.Page != 7 || rec.Zoom != 1.5 || rec.Settings.Sepia != 25 {
		t.Errorf("record = %+v", rec)
	}
	if rec.UpdatedAt.IsZero() {
		t.Error("record was not timestamped")
	}

	if _, ok := s.Get("fp-missing"); ok {
		t.Error("Get returned a record for an unknown fingerprint")
	}
}

func TestStoreRejectsEmptyFingerprint(t *testing.T) {
	s, _ := NewStore(NewMemoryBackend())
	if err := s.Put("", 1, 1.0, colorize.DefaultSettings()); err == nil {
		t.Fatal("empty fingerprint accepted")
	}
}

func TestStoreEvictsOldest(t *testing.T) {
	backend := NewMemoryBackend()
	s, _ := NewStore(backend)
	for i := 0; i < MaxRecords+5; i++ {
		if err := s.Put(fmt.Sprintf("fp-%d", i), 1, 1.0, colorize.DefaultSettings()); err != nil {
			t.Fatalf("Put %d: %v", i, err)
		}
		// Distinct timestamps so eviction order is deterministic.
		time.Sleep(time.Millisecond)
	}

	if got := s.Len(); got != MaxRecords {
		t.Fatalf("store holds %d records, want %d", got, MaxRecords)
	}
	for i := 0; i < 5; i++ {
		if _, ok := s.Get(fmt.Sprintf("fp-%d", i)); ok {
			t.Errorf("oldest record fp-%d survived eviction", i)
		}
	}
	if _, ok := s.Get(fmt.Sprintf("fp-%d", MaxRecords+4)); !ok {
		t.Error("newest record was evicted")
	}
}

func TestStoreUpdateRefreshesTimestamp(t *testing.T) {
	s, _ := NewStore(NewMemoryBackend())
	for i := 0; i < MaxRecords; i++ {
		s.Put(fmt.Sprintf("fp-%d", i), 1, 1.0, colorize.DefaultSettings())
		time.Sleep(time.Millisecond)
	}
	// Touch the oldest record, then overflow; fp-1 is now the oldest.
	s.Put("fp-0", 9, 1.0, colorize.DefaultSettings())
	time.Sleep(time.Millisecond)
	s.Put("fp-new", 1, 1.0, colorize.DefaultSettings())

	if _, ok := s.Get("fp-0"); !ok {
		t.Error("recently touched record was evicted")
	}
	if _, ok := s.Get("fp-1"); ok {
		t.Error("oldest record was not evicted")
	}
}

func TestStoreDelete(t *testing.T) {
	s, _ := NewStore(NewMemoryBackend())
	s.Put("fp-1", 1, 1.0, colorize.DefaultSettings())
	if err := s.Delete("fp-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := s.Get("fp-1"); ok {
		t.Error("record survived Delete")
	}
	if err := s.Delete("fp-unknown"); err != nil {
		t.Errorf("Delete of unknown fingerprint: %v", err)
	}
}

func TestFileBackendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	s, err := NewStore(NewFileBackend(path))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	settings := colorize.DefaultSettings()
	settings.Brightness = 110
	if err := s.Put("fp-file", 4, 2.0, settings); err != nil {
		t.Fatalf("Put: %v", err)
	}

	reopened, err := NewStore(NewFileBackend(path))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	rec, ok := reopened.Get("fp-file")
	if !ok {
		t.Fatal("record missing after reopen")
	}
	if rec.Page != 4 || rec.Zoom != 2.0 || rec.Settings.Brightness != 110 {
		t.Errorf("record = %+v", rec)
	}
}

func TestFileBackendMissingFile(t *testing.T) {
	backend := NewFileBackend(filepath.Join(t.TempDir(), "absent.json"))
	records, err := backend.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("missing file yielded %d records", len(records))
	}
}

func TestFileBackendCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewStore(NewFileBackend(path)); err == nil {
		t.Fatal("corrupt session file accepted")
	}
}
