package model

import (
	"strings"
	"time"
)

// Task is one unit of work. ID and CreatedAt are set once at creation and
// never rewritten by update operations.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	Important   bool       `json:"important"`
	CategoryID  *string    `json:"categoryId"`
	DueDate     *time.Time `json:"dueDate"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Category is a named, colored grouping applied to tasks. Deleting a category
// never deletes its tasks; they become uncategorized.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// UserSettings holds appearance flags, assistant connection parameters and
// the access-gate fields. AuthCode == "" means the gate is disabled.
type UserSettings struct {
	PrimaryColor     string     `json:"primaryColor"`
	CompactMode      bool       `json:"compactMode"`
	ShowAnimations   bool       `json:"showAnimations"`
	DefaultView      string     `json:"defaultView"`
	SidebarCollapsed bool       `json:"sidebarCollapsed"`
	OpenAIAPIKey     string     `json:"openaiApiKey"`
	OpenAIBaseURL    string     `json:"openaiBaseUrl"`
	OpenAIModel      string     `json:"openaiModel"`
	AuthCode         string     `json:"authCode"`
	AuthCodeExpiry   int        `json:"authCodeExpiry"`
	LastAuthTime     *time.Time `json:"lastAuthTime"`
}

// AppData is the export/import envelope. It exists only at the snapshot
// boundary; runtime state lives in store.DB.
type AppData struct {
	Tasks      []Task       `json:"tasks"`
	Categories []Category   `json:"categories"`
	Settings   UserSettings `json:"settings"`
	Version    string       `json:"version"`
}

const DataVersion = "1.0.0"

// DefaultCategoryColor is applied when a category is created without one.
const DefaultCategoryColor = "#3b82f6"

func DefaultSettings() UserSettings {
	return UserSettings{
		PrimaryColor:   "blue",
		CompactMode:    false,
		ShowAnimations: true,
		DefaultView:    "tasks",
		OpenAIBaseURL:  "https://api.openai.com/v1",
		OpenAIModel:    "gpt-3.5-turbo",
		AuthCodeExpiry: 30,
	}
}

// HasDue reports whether the task carries a due date.
func (t Task) HasDue() bool { return t.DueDate != nil }

// CategoryRef returns the referenced category id, or "" when uncategorized.
func (t Task) CategoryRef() string {
	if t.CategoryID == nil {
		return ""
	}
	return strings.TrimSpace(*t.CategoryID)
}
