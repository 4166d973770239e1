// Package command parses and applies the structured mutation commands the
// assistant emits inside fenced json-command blocks.
package command

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Action string

const (
	ActionAddTask        Action = "addTask"
	ActionUpdateTask     Action = "updateTask"
	ActionDeleteTask     Action = "deleteTask"
	ActionAddCategory    Action = "addCategory"
	ActionUpdateCategory Action = "updateCategory"
	ActionDeleteCategory Action = "deleteCategory"
)

// Command is the validated, tagged form of one assistant command. Exactly the
// payload matching Action is populated.
type Command struct {
	Action Action

	Task       *TaskDraft     // addTask
	TaskID     string         // updateTask, deleteTask
	TaskUpdate *TaskUpdate    // updateTask
	Category   *CategoryDraft // addCategory
	CategoryID string         // updateCategory, deleteCategory
	CatUpdate  *CategoryUpdate
}

// TaskDraft is the addTask payload.
type TaskDraft struct {
	Title       string
	Description string
	Important   bool
	CategoryID  *string
	DueDate     *time.Time
}

// TaskUpdate is the updateTask payload. Nil fields were absent from the
// JSON; the Clear flags record an explicit null.
type TaskUpdate struct {
	Title         *string
	Description   *string
	Completed     *bool
	Important     *bool
	CategoryID    *string
	ClearCategory bool
	DueDate       *time.Time
	ClearDue      bool
}

func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Completed == nil &&
		u.Important == nil && u.CategoryID == nil && !u.ClearCategory &&
		u.DueDate == nil && !u.ClearDue
}

// CategoryDraft is the addCategory payload.
type CategoryDraft struct {
	Name  string
	Color string
}

// CategoryUpdate is the updateCategory payload.
type CategoryUpdate struct {
	Name  *string
	Color *string
}

func (u CategoryUpdate) Empty() bool {
	return u.Name == nil && u.Color == nil
}

// ValidationError reports a command that is structurally present but
// malformed. The command is rejected whole; no fields are applied.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid command: " + e.Reason
}

func invalidf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// wireCommand mirrors the JSON the assistant writes. RawMessage fields keep
// the absent / explicit-null distinction visible.
type wireCommand struct {
	Action     string          `json:"action"`
	Task       json.RawMessage `json:"task"`
	TaskID     string          `json:"taskId"`
	Category   json.RawMessage `json:"category"`
	CategoryID string          `json:"categoryId"`
	Updates    json.RawMessage `json:"updates"`
}

type wireTaskDraft struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Important   bool            `json:"important"`
	CategoryID  *string         `json:"categoryId"`
	DueDate     json.RawMessage `json:"dueDate"`
}

type wireTaskUpdates struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Completed   *bool           `json:"completed"`
	Important   *bool           `json:"important"`
	CategoryID  json.RawMessage `json:"categoryId"`
	DueDate     json.RawMessage `json:"dueDate"`
}

type wireCategoryDraft struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type wireCategoryUpdates struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func parseWireDate(raw json.RawMessage, field string) (*time.Time, bool, error) {
	if len(raw) == 0 {
		return nil, false, nil
	}
	if isJSONNull(raw) {
		return nil, true, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false, invalidf("%s must be an RFC 3339 timestamp or null", field)
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, false, invalidf("%s: %v", field, err)
	}
	return &t, true, nil
}

// Parse validates one json-command document into a Command. Unknown actions
// and malformed payloads are rejected whole.
func Parse(raw []byte) (Command, error) {
	var w wireCommand
	if err := json.Unmarshal(raw, &w); err != nil {
		return Command{}, invalidf("not a JSON object: %v", err)
	}
	switch Action(w.Action) {
	case ActionAddTask:
		return parseAddTask(w)
	case ActionUpdateTask:
		return parseUpdateTask(w)
	case ActionDeleteTask:
		if strings.TrimSpace(w.TaskID) == "" {
			return Command{}, invalidf("deleteTask requires taskId")
		}
		return Command{Action: ActionDeleteTask, TaskID: strings.TrimSpace(w.TaskID)}, nil
	case ActionAddCategory:
		return parseAddCategory(w)
	case ActionUpdateCategory:
		return parseUpdateCategory(w)
	case ActionDeleteCategory:
		if strings.TrimSpace(w.CategoryID) == "" {
			return Command{}, invalidf("deleteCategory requires categoryId")
		}
		return Command{Action: ActionDeleteCategory, CategoryID: strings.TrimSpace(w.CategoryID)}, nil
	case "":
		return Command{}, invalidf("missing action")
	default:
		return Command{}, invalidf("unknown action %q", w.Action)
	}
}

func parseAddTask(w wireCommand) (Command, error) {
	if len(w.Task) == 0 {
		return Command{}, invalidf("addTask requires a task payload")
	}
	var wt wireTaskDraft
	if err := json.Unmarshal(w.Task, &wt); err != nil {
		return Command{}, invalidf("task payload: %v", err)
	}
	title := strings.TrimSpace(wt.Title)
	if title == "" {
		return Command{}, invalidf("addTask requires a non-empty title")
	}
	due, _, err := parseWireDate(wt.DueDate, "task.dueDate")
	if err != nil {
		return Command{}, err
	}
	var catID *string
	if wt.CategoryID != nil && strings.TrimSpace(*wt.CategoryID) != "" {
		v := strings.TrimSpace(*wt.CategoryID)
		catID = &v
	}
	return Command{
		Action: ActionAddTask,
		Task: &TaskDraft{
			Title:       title,
			Description: strings.TrimSpace(wt.Description),
			Important:   wt.Important,
			CategoryID:  catID,
			DueDate:     due,
		},
	}, nil
}

func parseUpdateTask(w wireCommand) (Command, error) {
	if strings.TrimSpace(w.TaskID) == "" {
		return Command{}, invalidf("updateTask requires taskId")
	}
	if len(w.Updates) == 0 {
		return Command{}, invalidf("updateTask requires updates")
	}
	var wu wireTaskUpdates
	if err := json.Unmarshal(w.Updates, &wu); err != nil {
		return Command{}, invalidf("updates payload: %v", err)
	}
	u := &TaskUpdate{
		Title:       wu.Title,
		Description: wu.Description,
		Completed:   wu.Completed,
		Important:   wu.Important,
	}
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		return Command{}, invalidf("updateTask title must not be blank")
	}
	if len(wu.CategoryID) > 0 {
		if isJSONNull(wu.CategoryID) {
			u.ClearCategory = true
		} else {
			var s string
			if err := json.Unmarshal(wu.CategoryID, &s); err != nil {
				return Command{}, invalidf("updates.categoryId must be a string or null")
			}
			s = strings.TrimSpace(s)
			if s == "" {
				u.ClearCategory = true
			} else {
				u.CategoryID = &s
			}
		}
	}
	due, explicitNull, err := parseWireDate(wu.DueDate, "updates.dueDate")
	if err != nil {
		return Command{}, err
	}
	u.DueDate = due
	u.ClearDue = explicitNull && due == nil
	if u.Empty() {
		return Command{}, invalidf("updateTask updates are empty")
	}
	return Command{Action: ActionUpdateTask, TaskID: strings.TrimSpace(w.TaskID), TaskUpdate: u}, nil
}

func parseAddCategory(w wireCommand) (Command, error) {
	if len(w.Category) == 0 {
		return Command{}, invalidf("addCategory requires a category payload")
	}
	var wc wireCategoryDraft
	if err := json.Unmarshal(w.Category, &wc); err != nil {
		return Command{}, invalidf("category payload: %v", err)
	}
	if strings.TrimSpace(wc.Name) == "" {
		return Command{}, invalidf("addCategory requires a non-empty name")
	}
	return Command{
		Action:   ActionAddCategory,
		Category: &CategoryDraft{Name: strings.TrimSpace(wc.Name), Color: strings.TrimSpace(wc.Color)},
	}, nil
}

func parseUpdateCategory(w wireCommand) (Command, error) {
	if strings.TrimSpace(w.CategoryID) == "" {
		return Command{}, invalidf("updateCategory requires categoryId")
	}
	if len(w.Updates) == 0 {
		return Command{}, invalidf("updateCategory requires updates")
	}
	var wu wireCategoryUpdates
	if err := json.Unmarshal(w.Updates, &wu); err != nil {
		return Command{}, invalidf("updates payload: %v", err)
	}
	u := &CategoryUpdate{Name: wu.Name, Color: wu.Color}
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return Command{}, invalidf("updateCategory name must not be blank")
	}
	if u.Empty() {
		return Command{}, invalidf("updateCategory updates are empty")
	}
	return Command{Action: ActionUpdateCategory, CategoryID: strings.TrimSpace(w.CategoryID), CatUpdate: u}, nil
}
