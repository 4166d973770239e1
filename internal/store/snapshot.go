package store

import (
	"encoding/json"
	"fmt"
	"os"

	"taskflow-cli/internal/model"
)

// Export bundles the full state into the portable AppData envelope.
func (ss *Session) Export() model.AppData {
	snap := ss.Snapshot()
	return model.AppData{
		Tasks:      snap.Tasks,
		Categories: snap.Categories,
		Settings:   snap.Settings,
		Version:    model.DataVersion,
	}
}

// ExportFile writes the envelope as indented JSON.
func (ss *Session) ExportFile(path string) error {
	data := ss.Export()
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

// ValidateSnapshot checks the envelope shape before any state is touched.
// All three top-level collections must be present; a partial envelope is
// rejected wholesale.
func ValidateSnapshot(raw []byte) (*model.AppData, error) {
	var probe struct {
		Tasks      *json.RawMessage `json:"tasks"`
		Categories *json.RawMessage `json:"categories"`
		Settings   *json.RawMessage `json:"settings"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("invalid snapshot: %w", err)
	}
	if probe.Tasks == nil || probe.Categories == nil || probe.Settings == nil {
		return nil, fmt.Errorf("invalid snapshot: tasks, categories and settings are all required")
	}
	var data model.AppData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("invalid snapshot: %w", err)
	}
	for i, t := range data.Tasks {
		if t.ID == "" || t.Title == "" {
			return nil, fmt.Errorf("invalid snapshot: task %d is missing id or title", i)
		}
	}
	for i, c := range data.Categories {
		if c.ID == "" || c.Name == "" {
			return nil, fmt.Errorf("invalid snapshot: category %d is missing id or name", i)
		}
	}
	if data.Version == "" {
		data.Version = model.DataVersion
	}
	return &data, nil
}

// Import validates the envelope and replaces the entire state in one commit.
// On any validation error the current state is untouched.
func (ss *Session) Import(raw []byte) error {
	data, err := ValidateSnapshot(raw)
	if err != nil {
		return err
	}
	return ss.mutate(func(db *DB) error {
		db.Version = data.Version
		db.Tasks = data.Tasks
		db.Categories = data.Categories
		db.Settings = data.Settings
		if db.Tasks == nil {
			db.Tasks = []model.Task{}
		}
		if db.Categories == nil {
			db.Categories = []model.Category{}
		}
		return nil
	})
}

// ImportFile reads and imports a snapshot file.
func (ss *Session) ImportFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return ss.Import(b)
}
