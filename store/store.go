// Package store defines the annotation record store and its backends.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Record is a single annotation: an open-ended JSON object whose only
// reserved field is "id". Ids are held as strings; Create coerces
// whatever scalar the caller supplied into its string form.
type Record map[string]any

// ErrNotFound reports an update or delete whose id matched no record.
var ErrNotFound = errors.New("annotation not found")

// Store is the interface that all annotation backends must implement.
// A store owns one ordered collection of records; insertion order is
// preserved and duplicate ids are permitted (lookups take the first
// match). Implementations are safe for concurrent use.
type Store interface {
	// ReadAll returns the whole collection in insertion order. An empty
	// store returns an empty slice, never nil.
	ReadAll() ([]Record, error)

	// Create appends a record to the end of the collection and persists.
	// The record's "id" is coerced to its string form; presence of an id
	// is the caller's responsibility and is not checked here.
	Create(rec Record) error

	// Update replaces the first record whose id equals id, keeping its
	// position, with the record's "id" forced to the given id, then
	// persists. Returns ErrNotFound (and writes nothing) on a miss.
	Update(id string, rec Record) error

	// Delete removes the first record whose id equals id and persists.
	// Returns ErrNotFound (and writes nothing) on a miss.
	Delete(id string) error
}

// coerceID renders an id value the way the JSON the caller sent spelled
// it: numbers without exponent notation, booleans as true/false, strings
// unchanged. A missing (nil) id coerces to "".
func coerceID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case json.Number:
		return id.String()
	case bool:
		return strconv.FormatBool(id)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", id)
	}
}

// findByID returns the index of the first record whose "id" field is the
// given string, or -1. Only string-typed ids can match.
func findByID(records []Record, id string) int {
	for i, rec := range records {
		if v, ok := rec["id"].(string); ok && v == id {
			return i
		}
	}
	return -1
}
