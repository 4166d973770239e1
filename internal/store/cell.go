package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// Cell keys. Each cell holds one JSON document in the cells table.
const (
	settingsCellKey    = "user-settings"
	ChatHistoryCellKey = "ai-chat-history"
)

// ErrCellNotFound reports a cell that has never been written.
var ErrCellNotFound = errors.New("cell not found")

// GetCell reads a JSON cell into v. Returns ErrCellNotFound when the key has
// no stored value; v is left untouched so callers can pre-fill defaults.
func (s Store) GetCell(key string, v any) error {
	ctx := context.Background()
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	var js string
	err = db.QueryRowContext(ctx, `SELECT json FROM cells WHERE k = ?`, key).Scan(&js)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCellNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(js), v)
}

// SetCell stores v as the cell's JSON document, replacing any prior value.
func (s Store) SetCell(key string, v any) error {
	ctx := context.Background()
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `INSERT OR REPLACE INTO cells(k, json, updated_at_unixms) VALUES(?, ?, ?)`,
		key, string(raw), time.Now().UTC().UnixMilli())
	return err
}

// DeleteCell removes a cell. Deleting a missing key is not an error.
func (s Store) DeleteCell(key string) error {
	ctx := context.Background()
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `DELETE FROM cells WHERE k = ?`, key)
	return err
}
