package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// JsonFileStore keeps the whole collection in memory and mirrors it to a
// single JSON file: a pretty-printed array of record objects. The file is
// read once at construction and rewritten in full after every mutation.
//
// There is no temp-file-and-rename step; a crash mid-write can truncate
// the file. The next start then falls back to an empty collection.
type JsonFileStore struct {
	mu      sync.RWMutex
	path    string
	records []Record
}

// NewJsonFileStore loads the backing file at path into memory. A missing
// file starts an empty collection. An unreadable or unparseable file also
// starts empty unless strict is set, in which case the load error is
// returned instead.
func NewJsonFileStore(path string, strict bool) (*JsonFileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	records, err := loadRecords(path)
	if err != nil {
		if strict && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		records = []Record{}
	}
	return &JsonFileStore{path: path, records: records}, nil
}

// loadRecords reads path and parses it as a JSON array of objects.
func loadRecords(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// persist rewrites the backing file with the current collection.
// Callers hold the write lock.
func (s *JsonFileStore) persist() error {
	b, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o644)
}

func (s *JsonFileStore) ReadAll() ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, len(s.records))
	for i, rec := range s.records {
		out[i] = deepCopy(rec)
	}
	return out, nil
}

func (s *JsonFileStore) Create(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec = deepCopy(rec)
	if rec == nil {
		rec = Record{}
	}
	rec["id"] = coerceID(rec["id"])
	s.records = append(s.records, rec)
	return s.persist()
}

func (s *JsonFileStore) Update(id string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := findByID(s.records, id)
	if idx < 0 {
		return ErrNotFound
	}
	rec = deepCopy(rec)
	if rec == nil {
		rec = Record{}
	}
	rec["id"] = id
	s.records[idx] = rec
	return s.persist()
}

func (s *JsonFileStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := findByID(s.records, id)
	if idx < 0 {
		return ErrNotFound
	}
	s.records = append(s.records[:idx], s.records[idx+1:]...)
	return s.persist()
}
