package store

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"taskflow-cli/internal/model"
)

// NotFoundError reports a mutation aimed at an entity that does not exist.
// Mutations fail closed: an unknown ID changes nothing.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// Session owns the authoritative in-memory state and serializes all
// mutations. Every mutation persists write-through before observers are
// notified, so a crash never loses an acknowledged change.
type Session struct {
	store Store

	mu   sync.RWMutex
	db   *DB
	gen  int64
	subs []func()
}

// Open loads the store and returns a live session.
func Open(s Store) (*Session, error) {
	db, err := s.Load()
	if err != nil {
		return nil, err
	}
	gen, err := s.Generation()
	if err != nil {
		return nil, err
	}
	return &Session{store: s, db: db, gen: gen}, nil
}

func (ss *Session) Store() Store { return ss.store }

// Subscribe registers fn to run after every committed mutation or external
// reload. Callbacks run synchronously on the mutating goroutine.
func (ss *Session) Subscribe(fn func()) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.subs = append(ss.subs, fn)
}

func (ss *Session) notifyLocked() {
	for _, fn := range ss.subs {
		fn()
	}
}

// Snapshot returns a deep copy of the current state. Callers may mutate the
// copy freely; projections work off snapshots, never live state.
func (ss *Session) Snapshot() DB {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return copyDB(ss.db)
}

func copyDB(db *DB) DB {
	out := DB{
		Version:  db.Version,
		Settings: db.Settings,
	}
	out.Tasks = make([]model.Task, len(db.Tasks))
	copy(out.Tasks, db.Tasks)
	out.Categories = make([]model.Category, len(db.Categories))
	copy(out.Categories, db.Categories)
	if out.Settings.LastAuthTime != nil {
		t := *out.Settings.LastAuthTime
		out.Settings.LastAuthTime = &t
	}
	for i := range out.Tasks {
		if out.Tasks[i].CategoryID != nil {
			v := *out.Tasks[i].CategoryID
			out.Tasks[i].CategoryID = &v
		}
		if out.Tasks[i].DueDate != nil {
			t := *out.Tasks[i].DueDate
			out.Tasks[i].DueDate = &t
		}
	}
	return out
}

// mutate applies fn to the live state, persists, and notifies subscribers.
// When fn fails the state is untouched.
func (ss *Session) mutate(fn func(db *DB) error) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	work := copyDB(ss.db)
	if err := fn(&work); err != nil {
		return err
	}
	if err := ss.store.Save(&work); err != nil {
		return err
	}
	ss.db = &work
	ss.gen++
	ss.notifyLocked()
	return nil
}

// Reload re-reads the store when another process has written to it since the
// last load. Last writer wins; in-memory state is replaced wholesale.
func (ss *Session) Reload() (bool, error) {
	gen, err := ss.store.Generation()
	if err != nil {
		return false, err
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if gen == ss.gen {
		return false, nil
	}
	db, err := ss.store.Load()
	if err != nil {
		return false, err
	}
	ss.db = db
	ss.gen = gen
	ss.notifyLocked()
	return true, nil
}

// TaskDraft carries the caller-supplied fields of a new task.
type TaskDraft struct {
	Title       string
	Description string
	Important   bool
	CategoryID  *string
	DueDate     *time.Time
}

// AddTask creates a task from the draft. ID and CreatedAt are assigned here;
// new tasks always start incomplete.
func (ss *Session) AddTask(d TaskDraft) (model.Task, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return model.Task{}, fmt.Errorf("task title is required")
	}
	t := model.Task{
		ID:          NewID(),
		Title:       title,
		Description: strings.TrimSpace(d.Description),
		Important:   d.Important,
		CategoryID:  d.CategoryID,
		DueDate:     d.DueDate,
		CreatedAt:   time.Now().UTC(),
	}
	err := ss.mutate(func(db *DB) error {
		if t.CategoryRef() != "" {
			if _, ok := db.FindCategory(t.CategoryRef()); !ok {
				return &NotFoundError{Kind: "category", ID: t.CategoryRef()}
			}
		}
		db.Tasks = append(db.Tasks, t)
		return nil
	})
	if err != nil {
		return model.Task{}, err
	}
	return t, nil
}

// TaskPatch is a partial task update. Nil pointer fields are left unchanged;
// the Clear flags explicitly null out their optional field.
type TaskPatch struct {
	Title         *string
	Description   *string
	Completed     *bool
	Important     *bool
	CategoryID    *string
	ClearCategory bool
	DueDate       *time.Time
	ClearDue      bool
}

// UpdateTask applies a patch to an existing task.
func (ss *Session) UpdateTask(id string, p TaskPatch) (model.Task, error) {
	var updated model.Task
	err := ss.mutate(func(db *DB) error {
		t, ok := db.FindTask(id)
		if !ok {
			return &NotFoundError{Kind: "task", ID: id}
		}
		if p.Title != nil {
			title := strings.TrimSpace(*p.Title)
			if title == "" {
				return fmt.Errorf("task title is required")
			}
			t.Title = title
		}
		if p.Description != nil {
			t.Description = strings.TrimSpace(*p.Description)
		}
		if p.Completed != nil {
			t.Completed = *p.Completed
		}
		if p.Important != nil {
			t.Important = *p.Important
		}
		if p.ClearCategory {
			t.CategoryID = nil
		} else if p.CategoryID != nil {
			if _, ok := db.FindCategory(*p.CategoryID); !ok {
				return &NotFoundError{Kind: "category", ID: *p.CategoryID}
			}
			v := *p.CategoryID
			t.CategoryID = &v
		}
		if p.ClearDue {
			t.DueDate = nil
		} else if p.DueDate != nil {
			d := *p.DueDate
			t.DueDate = &d
		}
		updated = *t
		return nil
	})
	return updated, err
}

// DeleteTask removes a task by ID.
func (ss *Session) DeleteTask(id string) error {
	return ss.mutate(func(db *DB) error {
		for i := range db.Tasks {
			if db.Tasks[i].ID == id {
				db.Tasks = append(db.Tasks[:i], db.Tasks[i+1:]...)
				return nil
			}
		}
		return &NotFoundError{Kind: "task", ID: id}
	})
}

// RestoreTask puts a previously deleted task back, keeping its original ID
// and CreatedAt so undo round-trips exactly. A category deleted in the
// meantime degrades to uncategorized instead of failing the restore.
func (ss *Session) RestoreTask(t model.Task) (model.Task, error) {
	err := ss.mutate(func(db *DB) error {
		if _, ok := db.FindTask(t.ID); ok {
			return fmt.Errorf("task %q already exists", t.ID)
		}
		if t.CategoryRef() != "" {
			if _, ok := db.FindCategory(t.CategoryRef()); !ok {
				t.CategoryID = nil
			}
		}
		db.Tasks = append(db.Tasks, t)
		return nil
	})
	if err != nil {
		return model.Task{}, err
	}
	return t, nil
}

// ToggleComplete flips a task's completed flag and returns the new state.
func (ss *Session) ToggleComplete(id string) (model.Task, error) {
	var updated model.Task
	err := ss.mutate(func(db *DB) error {
		t, ok := db.FindTask(id)
		if !ok {
			return &NotFoundError{Kind: "task", ID: id}
		}
		t.Completed = !t.Completed
		updated = *t
		return nil
	})
	return updated, err
}

// ToggleImportant flips a task's important flag and returns the new state.
func (ss *Session) ToggleImportant(id string) (model.Task, error) {
	var updated model.Task
	err := ss.mutate(func(db *DB) error {
		t, ok := db.FindTask(id)
		if !ok {
			return &NotFoundError{Kind: "task", ID: id}
		}
		t.Important = !t.Important
		updated = *t
		return nil
	})
	return updated, err
}

// AddCategory creates a category. A blank color falls back to the default.
func (ss *Session) AddCategory(name, color string) (model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Category{}, fmt.Errorf("category name is required")
	}
	color = strings.TrimSpace(color)
	if color == "" {
		color = model.DefaultCategoryColor
	}
	c := model.Category{ID: NewID(), Name: name, Color: color}
	err := ss.mutate(func(db *DB) error {
		db.Categories = append(db.Categories, c)
		return nil
	})
	if err != nil {
		return model.Category{}, err
	}
	return c, nil
}

// CategoryPatch is a partial category update.
type CategoryPatch struct {
	Name  *string
	Color *string
}

// UpdateCategory applies a patch to an existing category.
func (ss *Session) UpdateCategory(id string, p CategoryPatch) (model.Category, error) {
	var updated model.Category
	err := ss.mutate(func(db *DB) error {
		c, ok := db.FindCategory(id)
		if !ok {
			return &NotFoundError{Kind: "category", ID: id}
		}
		if p.Name != nil {
			name := strings.TrimSpace(*p.Name)
			if name == "" {
				return fmt.Errorf("category name is required")
			}
			c.Name = name
		}
		if p.Color != nil {
			c.Color = strings.TrimSpace(*p.Color)
		}
		updated = *c
		return nil
	})
	return updated, err
}

// DeleteCategory removes a category and detaches its tasks in the same
// commit. Detached tasks become uncategorized, they are never deleted.
func (ss *Session) DeleteCategory(id string) error {
	return ss.mutate(func(db *DB) error {
		idx := -1
		for i := range db.Categories {
			if db.Categories[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return &NotFoundError{Kind: "category", ID: id}
		}
		db.Categories = append(db.Categories[:idx], db.Categories[idx+1:]...)
		for i := range db.Tasks {
			if db.Tasks[i].CategoryRef() == id {
				db.Tasks[i].CategoryID = nil
			}
		}
		return nil
	})
}

// CategoryByName resolves a category by exact name. When several share the
// name the first in stable order wins.
func (ss *Session) CategoryByName(name string) (model.Category, bool) {
	name = strings.TrimSpace(name)
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	for _, c := range ss.db.Categories {
		if c.Name == name {
			return c, true
		}
	}
	return model.Category{}, false
}

// UpdateSettings applies fn to the current settings and persists the result.
func (ss *Session) UpdateSettings(fn func(s *model.UserSettings)) (model.UserSettings, error) {
	var out model.UserSettings
	err := ss.mutate(func(db *DB) error {
		fn(&db.Settings)
		out = db.Settings
		return nil
	})
	return out, err
}

// Settings returns a copy of the current settings.
func (ss *Session) Settings() model.UserSettings {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	s := ss.db.Settings
	if s.LastAuthTime != nil {
		t := *s.LastAuthTime
		s.LastAuthTime = &t
	}
	return s
}

// SortedTasks returns tasks newest-first, the presentation order shared by
// every surface.
func (ss *Session) SortedTasks() []model.Task {
	snap := ss.Snapshot()
	sort.SliceStable(snap.Tasks, func(i, j int) bool {
		return snap.Tasks[i].CreatedAt.After(snap.Tasks[j].CreatedAt)
	})
	return snap.Tasks
}
