package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"taskflow-cli/internal/model"
)

const sqliteFileName = "taskflow.sqlite"

func (s Store) sqlitePath() string {
	return filepath.Join(s.Dir, sqliteFileName)
}

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.sqlitePath())
	if err != nil {
		return nil, err
	}
	// Pragmas for multi-process local usage.
	// WAL enables one writer + many readers; busy_timeout helps avoid "database is locked" flakiness.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLiteState(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateSQLiteState(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS state_meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			completed INTEGER NOT NULL,
			important INTEGER NOT NULL,
			category_id TEXT NOT NULL,
			due_date TEXT NOT NULL,
			created_at_unixms INTEGER NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_category ON tasks(category_id);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_due ON tasks(due_date);`,
		`CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS cells (
			k TEXT PRIMARY KEY,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

// loadSQLite loads the state snapshot. If the SQLite state is empty but a
// legacy db.json exists, it imports db.json into SQLite once (preserving
// existing data) and then loads from SQLite.
func (s Store) loadSQLite(ctx context.Context) (*DB, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	hasState, err := sqliteStateHasAnyRows(ctx, db)
	if err != nil {
		return nil, err
	}
	if !hasState {
		// One-time import from db.json if present.
		if b, err := os.ReadFile(s.legacyDBPath()); err == nil && len(b) > 0 {
			var legacy model.AppData
			if err := json.Unmarshal(b, &legacy); err != nil {
				return nil, err
			}
			if strings.TrimSpace(legacy.Version) == "" {
				legacy.Version = model.DataVersion
			}
			imported := &DB{
				Version:    legacy.Version,
				Tasks:      legacy.Tasks,
				Categories: legacy.Categories,
				Settings:   legacy.Settings,
			}
			if err := s.saveSQLite(ctx, imported); err != nil {
				return nil, err
			}
		}
	}

	return loadStateFromSQLite(ctx, db)
}

func (s Store) saveSQLite(ctx context.Context, st *DB) error {
	if st == nil {
		return errors.New("nil db")
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	version := strings.TrimSpace(st.Version)
	if version == "" {
		version = model.DataVersion
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO state_meta(k, v) VALUES(?, ?)`, "version", version); err != nil {
		return err
	}
	if err := bumpGeneration(ctx, tx); err != nil {
		return err
	}

	nowMs := time.Now().UTC().UnixMilli()

	settingsRaw, err := json.Marshal(st.Settings)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO cells(k, json, updated_at_unixms) VALUES(?, ?, ?)`,
		settingsCellKey, string(settingsRaw), nowMs); err != nil {
		return err
	}

	// Replace-all strategy keeps the write path trivially correct: one tx,
	// delete then re-insert every row.
	for _, t := range []string{"tasks", "categories"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+t); err != nil {
			return err
		}
	}

	for _, t := range st.Tasks {
		raw, _ := json.Marshal(t)
		cat := t.CategoryRef()
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.UTC().Format("2006-01-02")
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO tasks(
			id, title, completed, important,
			category_id, due_date, created_at_unixms,
			json, updated_at_unixms
		) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Title, boolToInt(t.Completed), boolToInt(t.Important),
			cat, due, t.CreatedAt.UTC().UnixMilli(),
			string(raw), nowMs,
		); err != nil {
			return err
		}
	}
	for _, c := range st.Categories {
		raw, _ := json.Marshal(c)
		if _, err := tx.ExecContext(ctx, `INSERT INTO categories(id, name, json, updated_at_unixms) VALUES(?, ?, ?, ?)`,
			c.ID, c.Name, string(raw), nowMs); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func sqliteStateHasAnyRows(ctx context.Context, db *sql.DB) (bool, error) {
	qs := []string{
		`SELECT COUNT(1) FROM tasks`,
		`SELECT COUNT(1) FROM categories`,
		`SELECT COUNT(1) FROM cells`,
	}
	for _, q := range qs {
		var n int
		if err := db.QueryRowContext(ctx, q).Scan(&n); err != nil {
			// If tables don't exist yet, treat as empty.
			return false, nil
		}
		if n > 0 {
			return true, nil
		}
	}
	return false, nil
}

func loadStateFromSQLite(ctx context.Context, db *sql.DB) (*DB, error) {
	out := &DB{Version: model.DataVersion, Settings: model.DefaultSettings()}

	var v string
	_ = db.QueryRowContext(ctx, `SELECT v FROM state_meta WHERE k = ?`, "version").Scan(&v)
	if v = strings.TrimSpace(v); v != "" {
		out.Version = v
	}

	var settingsJSON string
	err := db.QueryRowContext(ctx, `SELECT json FROM cells WHERE k = ?`, settingsCellKey).Scan(&settingsJSON)
	switch {
	case err == nil:
		// Decode over defaults so fields added later keep their default value.
		if err := json.Unmarshal([]byte(settingsJSON), &out.Settings); err != nil {
			return nil, err
		}
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, err
	}

	if xs, err := readJSONRows[model.Task](ctx, db, `SELECT json FROM tasks ORDER BY created_at_unixms, id`); err == nil {
		out.Tasks = xs
	} else {
		return nil, err
	}
	if xs, err := readJSONRows[model.Category](ctx, db, `SELECT json FROM categories ORDER BY updated_at_unixms, id`); err == nil {
		out.Categories = xs
	} else {
		return nil, err
	}

	// Ensure nil slices are empty for stable callers.
	if out.Tasks == nil {
		out.Tasks = []model.Task{}
	}
	if out.Categories == nil {
		out.Categories = []model.Category{}
	}

	return out, nil
}

// Generation counting lets a long-lived process (the TUI) notice writes made
// by another process without re-reading every row.
const generationKey = "generation"

func bumpGeneration(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO state_meta(k, v) VALUES(?, '1')
		ON CONFLICT(k) DO UPDATE SET v = CAST(CAST(v AS INTEGER) + 1 AS TEXT)`, generationKey)
	return err
}

func (s Store) generationSQLite(ctx context.Context) (int64, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	var v string
	err = db.QueryRowContext(ctx, `SELECT v FROM state_meta WHERE k = ?`, generationKey).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func readJSONRows[T any](ctx context.Context, db *sql.DB, query string) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var js string
		if err := rows.Scan(&js); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(js), &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
