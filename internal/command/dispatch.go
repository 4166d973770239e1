package command

import (
	"fmt"

	"taskflow-cli/internal/store"
)

// Result describes an applied command for surfacing to the user.
type Result struct {
	Notice string
}

// Dispatch applies a validated command against the session. Commands that
// reference a missing task or category fail closed: nothing is created or
// changed, and the not-found error propagates.
func Dispatch(ss *store.Session, cmd Command) (Result, error) {
	switch cmd.Action {
	case ActionAddTask:
		t, err := ss.AddTask(store.TaskDraft{
			Title:       cmd.Task.Title,
			Description: cmd.Task.Description,
			Important:   cmd.Task.Important,
			CategoryID:  cmd.Task.CategoryID,
			DueDate:     cmd.Task.DueDate,
		})
		if err != nil {
			return Result{}, err
		}
		return Result{Notice: fmt.Sprintf("added task %q", t.Title)}, nil

	case ActionUpdateTask:
		u := cmd.TaskUpdate
		t, err := ss.UpdateTask(cmd.TaskID, store.TaskPatch{
			Title:         u.Title,
			Description:   u.Description,
			Completed:     u.Completed,
			Important:     u.Important,
			CategoryID:    u.CategoryID,
			ClearCategory: u.ClearCategory,
			DueDate:       u.DueDate,
			ClearDue:      u.ClearDue,
		})
		if err != nil {
			return Result{}, err
		}
		return Result{Notice: fmt.Sprintf("updated task %q", t.Title)}, nil

	case ActionDeleteTask:
		snap := ss.Snapshot()
		t, ok := snap.FindTask(cmd.TaskID)
		if !ok {
			return Result{}, &store.NotFoundError{Kind: "task", ID: cmd.TaskID}
		}
		if err := ss.DeleteTask(cmd.TaskID); err != nil {
			return Result{}, err
		}
		return Result{Notice: fmt.Sprintf("deleted task %q", t.Title)}, nil

	case ActionAddCategory:
		c, err := ss.AddCategory(cmd.Category.Name, cmd.Category.Color)
		if err != nil {
			return Result{}, err
		}
		return Result{Notice: fmt.Sprintf("added category %q", c.Name)}, nil

	case ActionUpdateCategory:
		c, err := ss.UpdateCategory(cmd.CategoryID, store.CategoryPatch{
			Name:  cmd.CatUpdate.Name,
			Color: cmd.CatUpdate.Color,
		})
		if err != nil {
			return Result{}, err
		}
		return Result{Notice: fmt.Sprintf("updated category %q", c.Name)}, nil

	case ActionDeleteCategory:
		snap := ss.Snapshot()
		c, ok := snap.FindCategory(cmd.CategoryID)
		if !ok {
			return Result{}, &store.NotFoundError{Kind: "category", ID: cmd.CategoryID}
		}
		if err := ss.DeleteCategory(cmd.CategoryID); err != nil {
			return Result{}, err
		}
		return Result{Notice: fmt.Sprintf("deleted category %q", c.Name)}, nil

	default:
		return Result{}, invalidf("unknown action %q", cmd.Action)
	}
}
