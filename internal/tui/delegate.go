package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"taskflow-cli/internal/format"
	"taskflow-cli/internal/model"
	"taskflow-cli/internal/store"
	"taskflow-cli/internal/view"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// taskItem adapts a task for the bubbles list. FilterValue includes the
// category name so typing "/" and a category narrows the list too.
type taskItem struct {
	task     model.Task
	category string
	color    string
}

func (i taskItem) Title() string       { return i.task.Title }
func (i taskItem) Description() string { return i.task.Description }
func (i taskItem) FilterValue() string {
	return i.task.Title + " " + i.task.Description + " " + i.category
}

func taskItems(db store.DB, tasks []model.Task) []list.Item {
	items := make([]list.Item, 0, len(tasks))
	for _, t := range tasks {
		it := taskItem{task: t, category: db.CategoryName(t)}
		if c, ok := db.FindCategory(t.CategoryRef()); ok {
			it.color = c.Color
		}
		items = append(items, it)
	}
	return items
}

// taskDelegate renders one task per row: checkbox, star, title, category,
// due label.
type taskDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
	now      func() time.Time
}

func newTaskDelegate() taskDelegate {
	return taskDelegate{
		normal: lipgloss.NewStyle(),
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
		now: time.Now,
	}
}

func (d taskDelegate) Height() int                             { return 1 }
func (d taskDelegate) Spacing() int                            { return 0 }
func (d taskDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d taskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		return
	}

	it, ok := item.(taskItem)
	if !ok {
		fmt.Fprint(w, d.normal.Render(fmt.Sprint(item)))
		return
	}

	selected := index == m.Index()
	line := d.renderLine(it, selected)

	lineW := xansi.StringWidth(line)
	if lineW < contentW {
		line += strings.Repeat(" ", contentW-lineW)
	} else if lineW > contentW {
		line = xansi.Cut(line, 0, contentW)
	}

	if selected {
		fmt.Fprint(w, d.selected.Render(line))
		return
	}
	fmt.Fprint(w, line)
}

func (d taskDelegate) renderLine(it taskItem, selected bool) string {
	t := it.task
	now := d.now()

	box := "[ ]"
	if t.Completed {
		box = lipgloss.NewStyle().Foreground(colorDone).Render("[x]")
	}

	star := "  "
	if t.Important {
		star = lipgloss.NewStyle().Foreground(colorImportant).Render("* ")
	}

	title := t.Title
	if t.Completed && !selected {
		title = styleMuted().Strikethrough(true).Render(title)
	}

	var meta []string
	if it.category != "" {
		dot := lipgloss.NewStyle().Foreground(categoryColor(it.color)).Render("●")
		meta = append(meta, dot+" "+styleMuted().Render(it.category))
	}
	if t.HasDue() {
		label := format.DueLabel(t.DueDate, now)
		st := styleMuted()
		if view.Overdue(t, now) {
			st = lipgloss.NewStyle().Foreground(colorOverdue)
		} else if view.DueToday(t, now) {
			st = lipgloss.NewStyle().Foreground(colorAccent)
		}
		meta = append(meta, st.Render(label))
	}

	line := fmt.Sprintf(" %s %s%s", box, star, title)
	if len(meta) > 0 {
		line += "  " + strings.Join(meta, "  ")
	}
	return line
}
