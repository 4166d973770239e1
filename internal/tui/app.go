package tui

import (
	"fmt"
	"strings"
	"time"

	"taskflow-cli/internal/auth"
	"taskflow-cli/internal/model"
	"taskflow-cli/internal/view"

	"taskflow-cli/internal/store"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type mode int

const (
	modeList mode = iota
	modeForm
	modeChat
	modeStats
	modeUnlock
)

type reloadTickMsg struct{}

func tickReload() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg { return reloadTickMsg{} })
}

type appModel struct {
	ss   *store.Session
	gate auth.Gate

	mode mode
	tabs []string
	tab  int

	taskList list.Model
	form     taskForm
	chat     chatModel

	unlock    textinput.Model
	unlockErr string

	lastDeleted *model.Task

	status string

	width  int
	height int
}

func newAppModel(ss *store.Session) appModel {
	m := appModel{
		ss:   ss,
		gate: auth.Gate{Session: ss},
		tabs: view.Tabs(),
	}

	m.taskList = newTaskList()
	m.chat = newChatModel(ss.Store())

	m.unlock = textinput.New()
	m.unlock.Placeholder = "Access code"
	m.unlock.EchoMode = textinput.EchoPassword
	m.unlock.Focus()

	if tab, ok := tabIndex(m.tabs, view.TabForFilter(defaultTabFilter(ss))); ok {
		m.tab = tab
	}

	m.mode = modeList
	if !m.gate.Authorized(time.Now()) {
		m.mode = modeUnlock
	}

	m.refreshTasks()
	return m
}

// defaultTabFilter seeds the starting tab from the saved default view.
func defaultTabFilter(ss *store.Session) string {
	if f, ok := view.FilterForTab(ss.Settings().DefaultView); ok {
		return f
	}
	return view.FilterNone
}

func tabIndex(tabs []string, tab string) (int, bool) {
	for i, t := range tabs {
		if t == tab {
			return i, true
		}
	}
	return 0, false
}

func newTaskList() list.Model {
	l := list.New([]list.Item{}, newTaskDelegate(), 0, 0)
	// The app renders its own header, tabs and footer; keep list chrome off.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(true)
	l.SetStatusBarItemName("task", "tasks")
	// ESC means "back/cancel" here, never quit.
	l.KeyMap.Quit.SetKeys("q")
	return l
}

func (m appModel) Init() tea.Cmd { return tickReload() }

func (m *appModel) refreshTasks() {
	db := m.ss.Snapshot()

	curID := ""
	if it, ok := m.taskList.SelectedItem().(taskItem); ok {
		curID = it.task.ID
	}

	active, _ := view.FilterForTab(m.tabs[m.tab])
	tasks := view.Apply(m.ss.SortedTasks(), db.Categories, view.Filter{Active: active}, time.Now())
	m.taskList.SetItems(taskItems(db, tasks))

	if curID != "" {
		for i, it := range m.taskList.Items() {
			if ti, ok := it.(taskItem); ok && ti.task.ID == curID {
				m.taskList.Select(i)
				break
			}
		}
	}
}

func (m *appModel) resize() {
	bodyH := m.height - 5
	if bodyH < 8 {
		bodyH = 8
	}
	w := m.width
	if w < 40 {
		w = 40
	}
	m.taskList.SetSize(w, bodyH)
	m.chat.setSize(w, bodyH)
}

func (m *appModel) selectedTask() (model.Task, bool) {
	it, ok := m.taskList.SelectedItem().(taskItem)
	if !ok {
		return model.Task{}, false
	}
	return it.task, true
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case reloadTickMsg:
		if changed, err := m.ss.Reload(); err == nil && changed {
			m.refreshTasks()
		}
		return m, tickReload()

	case chatDeltaMsg:
		if msg.seq != m.chat.seq || !m.chat.streaming {
			return m, nil
		}
		m.chat.pending += msg.delta
		m.chat.refreshViewport()
		return m, listenChat(m.chat.ch)

	case chatDoneMsg:
		if msg.seq != m.chat.seq {
			return m, nil
		}
		m.chat.finish(m.ss, msg)
		m.refreshTasks()
		return m, nil

	case spinner.TickMsg:
		if !m.chat.streaming {
			return m, nil
		}
		var cmd tea.Cmd
		m.chat.spin, cmd = m.chat.spin.Update(msg)
		m.chat.refreshViewport()
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case modeUnlock:
		return m.updateUnlock(msg)
	case modeForm:
		return m.updateForm(msg)
	case modeChat:
		return m.updateChat(msg)
	case modeStats:
		switch msg.String() {
		case "esc", "q", "v":
			m.mode = modeList
		}
		return m, nil
	default:
		return m.updateList(msg)
	}
}

func (m appModel) updateUnlock(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if err := m.gate.Verify(m.unlock.Value(), time.Now()); err != nil {
			m.unlockErr = err.Error()
			m.unlock.SetValue("")
			return m, nil
		}
		m.unlockErr = ""
		m.mode = modeList
		m.refreshTasks()
		return m, nil
	case "esc":
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.unlock, cmd = m.unlock.Update(msg)
	return m, cmd
}

func (m appModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		return m, nil
	case "tab", "down":
		return m, m.form.cycle(1)
	case "shift+tab", "up":
		return m, m.form.cycle(-1)
	case "enter":
		if m.form.focus < fieldCount-1 {
			return m, m.form.cycle(1)
		}
		if err := m.form.submit(m.ss); err != nil {
			m.form.err = err.Error()
			return m, nil
		}
		if m.form.editing() {
			m.status = "task updated"
		} else {
			m.status = "task added"
		}
		m.mode = modeList
		m.refreshTasks()
		return m, nil
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m appModel) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.chat.streaming {
			m.chat.abort()
			return m, nil
		}
		m.mode = modeList
		return m, nil
	case "ctrl+l":
		m.chat.clear(m.ss)
		return m, nil
	case "enter":
		return m, m.chat.send(m.ss)
	}
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.chat.input, cmd = m.chat.input.Update(msg)
	cmds = append(cmds, cmd)
	m.chat.vp, cmd = m.chat.vp.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m appModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While the list's "/" filter is live, it owns the keyboard.
	if m.taskList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.taskList, cmd = m.taskList.Update(msg)
		return m, cmd
	}

	m.status = ""

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "tab":
		m.tab = (m.tab + 1) % len(m.tabs)
		m.refreshTasks()
		return m, nil
	case "shift+tab":
		m.tab = (m.tab - 1 + len(m.tabs)) % len(m.tabs)
		m.refreshTasks()
		return m, nil
	case "1", "2", "3", "4":
		i := int(msg.String()[0] - '1')
		if i < len(m.tabs) {
			m.tab = i
			m.refreshTasks()
		}
		return m, nil

	case "a":
		m.form = newTaskForm(nil, "")
		m.mode = modeForm
		return m, nil

	case "e":
		if t, ok := m.selectedTask(); ok {
			db := m.ss.Snapshot()
			m.form = newTaskForm(&t, db.CategoryName(t))
			m.mode = modeForm
		}
		return m, nil

	case " ", "enter":
		if t, ok := m.selectedTask(); ok {
			if _, err := m.ss.ToggleComplete(t.ID); err != nil {
				m.status = err.Error()
			}
			m.refreshTasks()
		}
		return m, nil

	case "s":
		if t, ok := m.selectedTask(); ok {
			if _, err := m.ss.ToggleImportant(t.ID); err != nil {
				m.status = err.Error()
			}
			m.refreshTasks()
		}
		return m, nil

	case "d":
		if t, ok := m.selectedTask(); ok {
			if err := m.ss.DeleteTask(t.ID); err != nil {
				m.status = err.Error()
			} else {
				deleted := t
				m.lastDeleted = &deleted
				m.status = fmt.Sprintf("deleted %q (u: undo)", t.Title)
			}
			m.refreshTasks()
		}
		return m, nil

	case "u":
		if m.lastDeleted != nil {
			if _, err := m.ss.RestoreTask(*m.lastDeleted); err != nil {
				m.status = err.Error()
			} else {
				m.status = fmt.Sprintf("restored %q", m.lastDeleted.Title)
			}
			m.lastDeleted = nil
			m.refreshTasks()
		}
		return m, nil

	case "c":
		m.mode = modeChat
		m.chat.refreshViewport()
		return m, nil

	case "v":
		m.mode = modeStats
		return m, nil

	case "r":
		if _, err := m.ss.Reload(); err != nil {
			m.status = err.Error()
		}
		m.refreshTasks()
		return m, nil
	}

	var cmd tea.Cmd
	m.taskList, cmd = m.taskList.Update(msg)
	return m, cmd
}

func (m appModel) View() string {
	if m.mode == modeUnlock {
		body := strings.Join([]string{
			styleHeader().Render("TaskFlow is locked"),
			"",
			m.unlock.View(),
			"",
			styleMuted().Render("enter: unlock  esc: quit"),
		}, "\n")
		if m.unlockErr != "" {
			body += "\n" + lipgloss.NewStyle().Foreground(colorOverdue).Render(m.unlockErr)
		}
		return lipgloss.NewStyle().Padding(1, 2).Render(body)
	}

	header := m.viewHeader()

	var body string
	switch m.mode {
	case modeForm:
		body = m.form.view(m.width)
	case modeChat:
		body = m.chat.view()
	case modeStats:
		body = renderStats(m.ss.Snapshot(), m.width, time.Now())
	default:
		body = m.taskList.View()
	}

	footer := m.viewFooter()
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m appModel) viewHeader() string {
	title := styleHeader().Render("TaskFlow")

	now := time.Now()
	db := m.ss.Snapshot()
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		active, _ := view.FilterForTab(tab)
		label := fmt.Sprintf("%s (%d)", tab, view.Count(db.Tasks, active, now))
		if i == m.tab && m.mode == modeList {
			parts = append(parts, styleTabActive().Render(label))
		} else {
			parts = append(parts, styleMuted().Render(label))
		}
	}

	return title + "  " + strings.Join(parts, "  ")
}

func (m appModel) viewFooter() string {
	if m.status != "" {
		return lipgloss.NewStyle().Foreground(colorAccent).Render(m.status)
	}
	switch m.mode {
	case modeForm, modeChat:
		return ""
	case modeStats:
		return ""
	}
	return styleMuted().Render("a: add  e: edit  space: done  s: star  d: delete  /: search  tab: view  c: chat  v: stats  q: quit")
}
