package store

import (
	"encoding/json"
	"sync"
)

// MemoryStore keeps the collection in memory only. Data is lost on
// restart. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: []Record{}}
}

// deepCopy returns a deep copy of a record by round-tripping through JSON.
func deepCopy(src Record) Record {
	if src == nil {
		return nil
	}
	b, _ := json.Marshal(src)
	var dst Record
	_ = json.Unmarshal(b, &dst)
	return dst
}

func (m *MemoryStore) ReadAll() ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Record, len(m.records))
	for i, rec := range m.records {
		out[i] = deepCopy(rec)
	}
	return out, nil
}

func (m *MemoryStore) Create(rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec = deepCopy(rec)
	if rec == nil {
		rec = Record{}
	}
	rec["id"] = coerceID(rec["id"])
	m.records = append(m.records, rec)
	return nil
}

func (m *MemoryStore) Update(id string, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := findByID(m.records, id)
	if idx < 0 {
		return ErrNotFound
	}
	rec = deepCopy(rec)
	if rec == nil {
		rec = Record{}
	}
	rec["id"] = id
	m.records[idx] = rec
	return nil
}

func (m *MemoryStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := findByID(m.records, id)
	if idx < 0 {
		return ErrNotFound
	}
	m.records = append(m.records[:idx], m.records[idx+1:]...)
	return nil
}
