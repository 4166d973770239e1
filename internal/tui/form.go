package tui

import (
	"fmt"
	"strings"
	"time"

	"taskflow-cli/internal/model"
	"taskflow-cli/internal/store"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	fieldTitle = iota
	fieldDescription
	fieldCategory
	fieldDue
	fieldCount
)

// taskForm is the inline add/edit form. An empty editingID means "add".
type taskForm struct {
	inputs    []textinput.Model
	focus     int
	editingID string
	hadCat    bool
	hadDue    bool
	err       string
}

func newTaskForm(t *model.Task, categoryName string) taskForm {
	f := taskForm{inputs: make([]textinput.Model, fieldCount)}

	title := textinput.New()
	title.Placeholder = "Title"
	title.CharLimit = 200
	f.inputs[fieldTitle] = title

	desc := textinput.New()
	desc.Placeholder = "Description (optional)"
	f.inputs[fieldDescription] = desc

	cat := textinput.New()
	cat.Placeholder = "Category name (optional)"
	f.inputs[fieldCategory] = cat

	due := textinput.New()
	due.Placeholder = "Due date YYYY-MM-DD (optional)"
	due.CharLimit = 10
	f.inputs[fieldDue] = due

	if t != nil {
		f.editingID = t.ID
		f.inputs[fieldTitle].SetValue(t.Title)
		f.inputs[fieldDescription].SetValue(t.Description)
		f.inputs[fieldCategory].SetValue(categoryName)
		f.hadCat = t.CategoryRef() != ""
		if t.HasDue() {
			f.inputs[fieldDue].SetValue(t.DueDate.Format("2006-01-02"))
			f.hadDue = true
		}
	}

	f.inputs[fieldTitle].Focus()
	return f
}

func (f taskForm) editing() bool { return f.editingID != "" }

func (f *taskForm) cycle(delta int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	return f.inputs[f.focus].Focus()
}

func (f taskForm) update(msg tea.Msg) (taskForm, tea.Cmd) {
	cmds := make([]tea.Cmd, len(f.inputs))
	for i := range f.inputs {
		f.inputs[i], cmds[i] = f.inputs[i].Update(msg)
	}
	return f, tea.Batch(cmds...)
}

// submit turns the form into a store mutation. The returned error stays in
// the form so the user can fix the field and retry.
func (f taskForm) submit(ss *store.Session) error {
	title := strings.TrimSpace(f.inputs[fieldTitle].Value())
	if title == "" {
		return fmt.Errorf("title is required")
	}

	var catID *string
	catName := strings.TrimSpace(f.inputs[fieldCategory].Value())
	if catName != "" {
		c, ok := ss.CategoryByName(catName)
		if !ok {
			return fmt.Errorf("no category named %q", catName)
		}
		catID = &c.ID
	}

	var due *time.Time
	dueRaw := strings.TrimSpace(f.inputs[fieldDue].Value())
	if dueRaw != "" {
		d, err := time.ParseInLocation("2006-01-02", dueRaw, time.Local)
		if err != nil {
			return fmt.Errorf("invalid due date %q (want YYYY-MM-DD)", dueRaw)
		}
		due = &d
	}

	desc := strings.TrimSpace(f.inputs[fieldDescription].Value())

	if !f.editing() {
		_, err := ss.AddTask(store.TaskDraft{
			Title:       title,
			Description: desc,
			CategoryID:  catID,
			DueDate:     due,
		})
		return err
	}

	p := store.TaskPatch{Title: &title, Description: &desc}
	if catID != nil {
		p.CategoryID = catID
	} else if f.hadCat {
		p.ClearCategory = true
	}
	if due != nil {
		p.DueDate = due
	} else if f.hadDue {
		p.ClearDue = true
	}
	_, err := ss.UpdateTask(f.editingID, p)
	return err
}

var formLabels = [fieldCount]string{"Title", "Description", "Category", "Due"}

func (f taskForm) view(width int) string {
	heading := "Add task"
	if f.editing() {
		heading = "Edit task"
	}

	var b strings.Builder
	b.WriteString(styleHeader().Render(heading))
	b.WriteString("\n\n")
	for i := range f.inputs {
		label := formLabels[i]
		st := styleMuted()
		if i == f.focus {
			st = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
		}
		fmt.Fprintf(&b, "%s\n%s\n", st.Render(label), f.inputs[i].View())
	}
	if f.err != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(colorOverdue).Render(f.err))
	}
	b.WriteString("\n" + styleMuted().Render("tab: next field  enter: save  esc: cancel"))
	return lipgloss.NewStyle().Width(width).Render(b.String())
}
