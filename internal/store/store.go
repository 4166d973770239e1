package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"taskflow-cli/internal/model"
)

const legacyDBFileName = "db.json"

// DB is the in-memory snapshot of the whole store: authoritative task and
// category collections, user settings and the data-format version.
type DB struct {
	Version    string           `json:"version"`
	Tasks      []model.Task     `json:"tasks"`
	Categories []model.Category `json:"categories"`
	Settings   model.UserSettings
}

// Store addresses a data directory. Zero value is invalid; use Dir.
type Store struct {
	Dir string
}

// ConfigDir resolves the per-user taskflow directory.
// TASKFLOW_CONFIG_DIR keeps unit tests from touching ~/.taskflow.
func ConfigDir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("TASKFLOW_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".taskflow"), nil
}

// DefaultDir resolves the store directory: TASKFLOW_DIR when set, otherwise
// the per-user config directory.
func DefaultDir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("TASKFLOW_DIR")); v != "" {
		return v, nil
	}
	return ConfigDir()
}

func (s Store) Ensure() error {
	if strings.TrimSpace(s.Dir) == "" {
		return errors.New("store dir is empty")
	}
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) legacyDBPath() string {
	return filepath.Join(s.Dir, legacyDBFileName)
}

// Load reads the store state. SQLite is the only source of truth; an existing
// legacy db.json (an AppData envelope) is imported once when the SQLite state
// is still empty.
func (s Store) Load() (*DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	return s.loadSQLite(context.Background())
}

// Save writes the whole state back (replace-all, one transaction) and bumps
// the generation counter other processes watch.
func (s Store) Save(db *DB) error {
	if err := s.Ensure(); err != nil {
		return err
	}
	return s.saveSQLite(context.Background(), db)
}

// Generation returns the monotonic save counter, 0 for a fresh store.
func (s Store) Generation() (int64, error) {
	return s.generationSQLite(context.Background())
}

// FindTask returns a pointer into the DB's task slice; mutating through it
// edits the DB in place.
func (db DB) FindTask(id string) (*model.Task, bool) {
	for i := range db.Tasks {
		if db.Tasks[i].ID == id {
			return &db.Tasks[i], true
		}
	}
	return nil, false
}

func (db DB) FindCategory(id string) (*model.Category, bool) {
	for i := range db.Categories {
		if db.Categories[i].ID == id {
			return &db.Categories[i], true
		}
	}
	return nil, false
}

// CategoryName resolves a task's category name, "" when uncategorized or the
// reference dangles (dangling references render as uncategorized).
func (db DB) CategoryName(t model.Task) string {
	ref := t.CategoryRef()
	if ref == "" {
		return ""
	}
	if c, ok := db.FindCategory(ref); ok {
		return c.Name
	}
	return ""
}
