package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/duskview/duskview/colorize"
)

// MaxRecords bounds the store to the most-recently-used documents.
const MaxRecords = 50

// Record is the persisted reading state for one document.
type Record struct {
	Fingerprint string            `json:"fingerprint"`
	Page        int               `json:"page"`
	Zoom        float64           `json:"zoom"`
	Settings    colorize.Settings `json:"settings"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// Backend loads and saves the full record set.
type Backend interface {
	Load() ([]Record, error)
	Save(records []Record) error
}

// Store keeps per-document sessions keyed by fingerprint, bounded to
// MaxRecords entries with the oldest UpdatedAt evicted first.
type Store struct {
	mu      sync.Mutex
	backend Backend
	records map[string]Record
}

// NewStore builds a store over backend, loading any existing records.
func NewStore(backend Backend) (*Store, error) {
	records, err := backend.Load()
	if err != nil {
		return nil, fmt.Errorf("session: load records: %w", err)
	}
	byKey := make(map[string]Record, len(records))
	for _, r := range records {
		if r.Fingerprint == "" {
			continue
		}
		byKey[r.Fingerprint] = r
	}
	s := &Store{backend: backend, records: byKey}
	s.evictLocked()
	return s, nil
}

// Get returns the record for fingerprint, if present.
func (s *Store) Get(fingerprint string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[fingerprint]
	return r, ok
}

// Put upserts the record for fingerprint, stamps it, evicts past the
// MRU bound, and persists through the backend.
func (s *Store) Put(fingerprint string, page int, zoom float64, settings colorize.Settings) error {
	if fingerprint == "" {
		return errors.New("session: empty fingerprint")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[fingerprint] = Record{
		Fingerprint: fingerprint,
		Page:        page,
		Zoom:        zoom,
		Settings:    settings,
		UpdatedAt:   time.Now(),
	}
	s.evictLocked()
	return s.saveLocked()
}

// Delete removes the record for fingerprint.
func (s *Store) Delete(fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[fingerprint]; !ok {
		return nil
	}
	delete(s.records, fingerprint)
	return s.saveLocked()
}

// Len reports the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *Store) evictLocked() {
	if len(s.records) <= MaxRecords {
		return
	}
	ordered := s.orderedLocked()
	for _, r := range ordered[:len(ordered)-MaxRecords] {
		delete(s.records, r.Fingerprint)
	}
}

// orderedLocked returns records oldest first.
func (s *Store) orderedLocked() []Record {
	ordered := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		ordered = append(ordered, r)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].UpdatedAt.Before(ordered[j].UpdatedAt)
	})
	return ordered
}

func (s *Store) saveLocked() error {
	if err := s.backend.Save(s.orderedLocked()); err != nil {
		return fmt.Errorf("session: save records: %w", err)
	}
	return nil
}

// MemoryBackend keeps records in process memory. Useful for tests and
// ephemeral sessions.
type MemoryBackend struct {
	mu      sync.Mutex
	records []Record
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend { return &MemoryBackend{} }

func (b *MemoryBackend) Load() ([]Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Record(nil), b.records...), nil
}

func (b *MemoryBackend) Save(records []Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = append([]Record(nil), records...)
	return nil
}

// FileBackend persists records as a JSON array on disk.
type FileBackend struct {
	path string
}

// NewFileBackend persists to path. A missing file reads as empty.
func NewFileBackend(path string) *FileBackend { return &FileBackend{path: path} }

func (b *FileBackend) Load() ([]Record, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", b.path, err)
	}
	return records, nil
}

func (b *FileBackend) Save(records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, b.path)
}
