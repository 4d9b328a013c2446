// Command annoseed fills an annotation database with sample records,
// useful for exercising a fresh server.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/cnr-isti-vclab/openlime/store"
)

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func seed(s store.Store, n int) error {
	for i := 0; i < n; i++ {
		// Lay the sample shapes out on a grid so they don't overlap.
		cx := 20 + (i%8)*40
		cy := 20 + (i/8)*40
		rec := store.Record{
			"id":          uuid.NewString(),
			"label":       fmt.Sprintf("Annotation %d", i+1),
			"description": fmt.Sprintf("Sample annotation %d", i+1),
			"svg":         fmt.Sprintf(`<circle cx="%d" cy="%d" r="10"/>`, cx, cy),
		}
		if err := s.Create(rec); err != nil {
			return fmt.Errorf("create annotation %d: %w", i+1, err)
		}
	}
	return nil
}

func main() {
	// A .env next to the tool adjusts the flag defaults below, so the
	// seeder targets the same database as the server. Missing .env is
	// fine.
	_ = godotenv.Load()

	n := flag.Int("n", 10, "number of annotations to create")
	db := flag.String("db", env("DBFNAME", "anno.json"), "database file")
	backend := flag.String("backend", env("STORE_BACKEND", "json"), "store backend (json, sqlite, memory)")
	flag.Parse()

	s, err := store.New(*backend, *db, false)
	if err != nil {
		log.Fatalf("failed to create store (backend=%s): %v", *backend, err)
	}

	if err := seed(s, *n); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}

	if c, ok := s.(io.Closer); ok {
		c.Close()
	}
	log.Printf("seeded %d annotations into %s (store=%s)", *n, *db, *backend)
}
