package store

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// SqliteStore keeps the collection in a single SQLite database.
//
// Table:
//
//	annotations(seq, id, data)  seq INTEGER PRIMARY KEY AUTOINCREMENT
//
// seq carries the insertion order; id is deliberately not a key so that
// duplicate ids stay representable, matching the JSON-file backend.
type SqliteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

func NewSqliteStore(dbPath string) (*SqliteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS annotations (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		data TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, err
	}
	return &SqliteStore{db: db}, nil
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}

// firstSeq returns the seq of the first record with the given id.
// Callers hold at least the read lock.
func (s *SqliteStore) firstSeq(id string) (int64, error) {
	var seq int64
	err := s.db.QueryRow(
		"SELECT seq FROM annotations WHERE id = ? ORDER BY seq LIMIT 1", id,
	).Scan(&seq)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	return seq, err
}

func (s *SqliteStore) ReadAll() ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.Query("SELECT data FROM annotations ORDER BY seq")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	records := []Record{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var rec Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SqliteStore) Create(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec = deepCopy(rec)
	if rec == nil {
		rec = Record{}
	}
	id := coerceID(rec["id"])
	rec["id"] = id
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		"INSERT INTO annotations (id, data) VALUES (?, ?)", id, string(b),
	)
	return err
}

func (s *SqliteStore) Update(id string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq, err := s.firstSeq(id)
	if err != nil {
		return err
	}
	rec = deepCopy(rec)
	if rec == nil {
		rec = Record{}
	}
	rec["id"] = id
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		"UPDATE annotations SET id = ?, data = ? WHERE seq = ?", id, string(b), seq,
	)
	return err
}

func (s *SqliteStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq, err := s.firstSeq(id)
	if err != nil {
		return err
	}
	_, err = s.db.Exec("DELETE FROM annotations WHERE seq = ?", seq)
	return err
}
