package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"taskflow-cli/internal/format"
	"taskflow-cli/internal/model"
	"taskflow-cli/internal/store"
	"taskflow-cli/internal/view"

	"github.com/spf13/cobra"
)

type taskOut struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Completed    bool       `json:"completed"`
	Important    bool       `json:"important"`
	CategoryID   *string    `json:"categoryId"`
	CategoryName string     `json:"categoryName,omitempty"`
	DueDate      *time.Time `json:"dueDate"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func taskToOut(db store.DB, t model.Task) taskOut {
	return taskOut{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Completed:    t.Completed,
		Important:    t.Important,
		CategoryID:   t.CategoryID,
		CategoryName: db.CategoryName(t),
		DueDate:      t.DueDate,
		CreatedAt:    t.CreatedAt,
	}
}

type taskList []taskOut

func (l taskList) TableHeader() []string {
	return []string{"ID", "DONE", "IMP", "TITLE", "CATEGORY", "DUE"}
}

func (l taskList) TableRows() [][]string {
	now := time.Now()
	rows := make([][]string, 0, len(l))
	for _, t := range l {
		done := ""
		if t.Completed {
			done = "x"
		}
		imp := ""
		if t.Important {
			imp = "*"
		}
		rows = append(rows, []string{shortID(t.ID), done, imp, t.Title, t.CategoryName, format.DueLabel(t.DueDate, now)})
	}
	return rows
}

type taskDetail taskOut

func (d taskDetail) TableHeader() []string { return []string{"FIELD", "VALUE"} }
func (d taskDetail) TableRows() [][]string {
	now := time.Now()
	status := "todo"
	if d.Completed {
		status = "done"
	}
	rows := [][]string{
		{"id", d.ID},
		{"title", d.Title},
		{"status", status},
	}
	if d.Important {
		rows = append(rows, []string{"important", "yes"})
	}
	if d.CategoryName != "" {
		rows = append(rows, []string{"category", d.CategoryName})
	}
	if d.DueDate != nil {
		rows = append(rows, []string{"due", format.DueLabel(d.DueDate, now)})
	}
	if d.Description != "" {
		rows = append(rows, []string{"description", d.Description})
	}
	rows = append(rows, []string{"created", d.CreatedAt.Local().Format("2006-01-02 15:04")})
	return rows
}

// shortID keeps table output readable; JSON output carries the full ID.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// resolveTask accepts a full ID or an unambiguous prefix.
func resolveTask(db store.DB, ref string) (model.Task, error) {
	ref = strings.TrimSpace(ref)
	if t, ok := db.FindTask(ref); ok {
		return *t, nil
	}
	var matches []model.Task
	for _, t := range db.Tasks {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return model.Task{}, &store.NotFoundError{Kind: "task", ID: ref}
	default:
		return model.Task{}, fmt.Errorf("task id %q is ambiguous (%d matches)", ref, len(matches))
	}
}

func resolveCategoryRef(db store.DB, ref string) (model.Category, error) {
	ref = strings.TrimSpace(ref)
	if c, ok := db.FindCategory(ref); ok {
		return *c, nil
	}
	for _, c := range db.Categories {
		if strings.EqualFold(c.Name, ref) {
			return c, nil
		}
	}
	var matches []model.Category
	for _, c := range db.Categories {
		if strings.HasPrefix(c.ID, ref) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return model.Category{}, &store.NotFoundError{Kind: "category", ID: ref}
	default:
		return model.Category{}, fmt.Errorf("category %q is ambiguous (%d matches)", ref, len(matches))
	}
}

// parseDue accepts a bare date or a full RFC 3339 timestamp.
func parseDue(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return d, nil
	}
	if d, err := time.Parse(time.RFC3339, s); err == nil {
		return d, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD or RFC 3339)", s)
}

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Task commands",
	}

	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksAddCmd(app))
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksUpdateCmd(app))
	cmd.AddCommand(newTasksDoneCmd(app))
	cmd.AddCommand(newTasksStarCmd(app))
	cmd.AddCommand(newTasksDeleteCmd(app))

	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	var filter string
	var search string
	var date string
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks (newest first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := gatedSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			db := ss.Snapshot()

			f := view.Filter{Query: search}
			switch filter {
			case "", view.FilterCompleted, view.FilterImportant, view.FilterToday, view.FilterOverdue:
				f.Active = filter
			default:
				return writeErr(cmd, fmt.Errorf("unknown filter %q (want completed|important|today|overdue)", filter))
			}
			if category != "" {
				c, err := resolveCategoryRef(db, category)
				if err != nil {
					return writeErr(cmd, err)
				}
				f.Active = c.ID
			}
			if date != "" {
				d, err := parseDue(date)
				if err != nil {
					return writeErr(cmd, err)
				}
				f.Date = &d
			}

			tasks := view.Apply(ss.SortedTasks(), db.Categories, f, time.Now())
			out := make(taskList, 0, len(tasks))
			for _, t := range tasks {
				out = append(out, taskToOut(db, t))
			}
			return writeOut(cmd, app, out)
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Status filter (completed|important|today|overdue)")
	cmd.Flags().StringVar(&search, "search", "", "Search title+description, or 'category:<name>'")
	cmd.Flags().StringVar(&category, "category", "", "Only tasks in this category (id or name)")
	cmd.Flags().StringVar(&date, "date", "", "Only tasks due on this date (YYYY-MM-DD)")
	return cmd
}

func newTasksAddCmd(app *App) *cobra.Command {
	var description string
	var categoryRef string
	var due string
	var important bool

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := gatedSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			draft := store.TaskDraft{
				Title:       args[0],
				Description: description,
				Important:   important,
			}
			if categoryRef != "" {
				c, err := resolveCategoryRef(ss.Snapshot(), categoryRef)
				if err != nil {
					return writeErr(cmd, err)
				}
				draft.CategoryID = &c.ID
			}
			if due != "" {
				d, err := parseDue(due)
				if err != nil {
					return writeErr(cmd, err)
				}
				draft.DueDate = &d
			}
			t, err := ss.AddTask(draft)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, taskDetail(taskToOut(ss.Snapshot(), t)))
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Task description")
	cmd.Flags().StringVar(&categoryRef, "category", "", "Category (id or name)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().BoolVar(&important, "important", false, "Mark as important")
	return cmd
}

func newTasksShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := gatedSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			db := ss.Snapshot()
			t, err := resolveTask(db, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, taskDetail(taskToOut(db, t)))
		},
	}
	return cmd
}

func newTasksUpdateCmd(app *App) *cobra.Command {
	var title string
	var description string
	var categoryRef string
	var due string
	var clearCategory bool
	var clearDue bool

	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Update task fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := gatedSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			db := ss.Snapshot()
			t, err := resolveTask(db, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}

			var p store.TaskPatch
			if cmd.Flags().Changed("title") {
				p.Title = &title
			}
			if cmd.Flags().Changed("description") {
				p.Description = &description
			}
			if clearCategory {
				p.ClearCategory = true
			} else if categoryRef != "" {
				c, err := resolveCategoryRef(db, categoryRef)
				if err != nil {
					return writeErr(cmd, err)
				}
				p.CategoryID = &c.ID
			}
			if clearDue {
				p.ClearDue = true
			} else if due != "" {
				d, err := parseDue(due)
				if err != nil {
					return writeErr(cmd, err)
				}
				p.DueDate = &d
			}
			if p == (store.TaskPatch{}) {
				return writeErr(cmd, errors.New("nothing to update; pass at least one flag"))
			}

			updated, err := ss.UpdateTask(t.ID, p)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, taskDetail(taskToOut(ss.Snapshot(), updated)))
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().StringVar(&categoryRef, "category", "", "New category (id or name)")
	cmd.Flags().BoolVar(&clearCategory, "clear-category", false, "Remove the category")
	cmd.Flags().StringVar(&due, "due", "", "New due date")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "Remove the due date")
	return cmd
}

func newTasksDoneCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "done <task-id>",
		Short: "Toggle task completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := gatedSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := resolveTask(ss.Snapshot(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			updated, err := ss.ToggleComplete(t.ID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, taskDetail(taskToOut(ss.Snapshot(), updated)))
		},
	}
	return cmd
}

func newTasksStarCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "star <task-id>",
		Short: "Toggle task importance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := gatedSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := resolveTask(ss.Snapshot(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			updated, err := ss.ToggleImportant(t.ID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, taskDetail(taskToOut(ss.Snapshot(), updated)))
		},
	}
	return cmd
}

func newTasksDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := gatedSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := resolveTask(ss.Snapshot(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := ss.DeleteTask(t.ID); err != nil {
				return writeErr(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted task %q\n", t.Title)
			return nil
		},
	}
	return cmd
}
