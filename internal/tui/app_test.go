package tui

import (
	"errors"
	"testing"
	"time"

	"taskflow-cli/internal/model"
	"taskflow-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestApp(t *testing.T) (*store.Session, appModel) {
	t.Helper()
	ss, err := store.Open(store.Store{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	m := newAppModel(ss)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return ss, next.(appModel)
}

func press(t *testing.T, m appModel, msg tea.Msg) appModel {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(appModel)
}

func typeRunes(t *testing.T, m appModel, s string) appModel {
	t.Helper()
	for _, r := range s {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestStartsLockedWhenGateConfigured(t *testing.T) {
	ss, err := store.Open(store.Store{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	if _, err := ss.UpdateSettings(func(s *model.UserSettings) {
		s.AuthCode = "sesame"
	}); err != nil {
		t.Fatalf("set code: %v", err)
	}

	m := newAppModel(ss)
	if m.mode != modeUnlock {
		t.Fatalf("expected unlock mode at start, got %v", m.mode)
	}

	m = typeRunes(t, m, "wrong")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != modeUnlock || m.unlockErr == "" {
		t.Fatalf("expected wrong code to stay locked with error, mode=%v err=%q", m.mode, m.unlockErr)
	}

	m = typeRunes(t, m, "sesame")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != modeList {
		t.Fatalf("expected list mode after unlock, got %v", m.mode)
	}
	if !m.gate.Authorized(time.Now()) {
		t.Fatalf("expected gate authorized after unlock")
	}
}

func TestTabCyclingFiltersTasks(t *testing.T) {
	ss, m := newTestApp(t)

	open, err := ss.AddTask(store.TaskDraft{Title: "Open"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	done, err := ss.AddTask(store.TaskDraft{Title: "Done"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := ss.ToggleComplete(done.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	m.refreshTasks()
	if got := len(m.taskList.Items()); got != 2 {
		t.Fatalf("all tab: want 2 items, got %d", got)
	}

	// all -> today -> important -> completed
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.tabs[m.tab] != "completed" {
		t.Fatalf("expected completed tab, got %q", m.tabs[m.tab])
	}
	items := m.taskList.Items()
	if len(items) != 1 || items[0].(taskItem).task.ID != done.ID {
		t.Fatalf("completed tab: got %+v", items)
	}

	// Wraps back to "all".
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.tabs[m.tab] != "all" {
		t.Fatalf("expected wrap to all, got %q", m.tabs[m.tab])
	}
	_ = open
}

func TestSpaceTogglesSelectedTask(t *testing.T) {
	ss, m := newTestApp(t)

	task, err := ss.AddTask(store.TaskDraft{Title: "Toggle me"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	m.refreshTasks()

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(" ")})

	db := ss.Snapshot()
	got, ok := db.FindTask(task.ID)
	if !ok || !got.Completed {
		t.Fatalf("expected task completed after space, got %+v", got)
	}
}

func TestAddFormFlow(t *testing.T) {
	ss, m := newTestApp(t)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	if m.mode != modeForm {
		t.Fatalf("expected form mode, got %v", m.mode)
	}

	m = typeRunes(t, m, "Buy groceries")
	// Enter advances through the remaining fields, then submits.
	for i := 0; i < fieldCount; i++ {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	}
	if m.mode != modeList {
		t.Fatalf("expected list mode after submit, got %v (err %q)", m.mode, m.form.err)
	}

	tasks := ss.Snapshot().Tasks
	if len(tasks) != 1 || tasks[0].Title != "Buy groceries" {
		t.Fatalf("expected one task from form, got %+v", tasks)
	}
}

func TestFormRejectsEmptyTitle(t *testing.T) {
	_, m := newTestApp(t)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	for i := 0; i < fieldCount; i++ {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	}
	if m.mode != modeForm || m.form.err == "" {
		t.Fatalf("expected form to stay open with error, mode=%v err=%q", m.mode, m.form.err)
	}
}

func TestChatDropsStaleDeltas(t *testing.T) {
	_, m := newTestApp(t)

	m.mode = modeChat
	m.chat.seq = 2
	m.chat.streaming = true

	m = press(t, m, chatDeltaMsg{seq: 1, delta: "old"})
	if m.chat.pending != "" {
		t.Fatalf("expected stale delta to be dropped, got %q", m.chat.pending)
	}

	m = press(t, m, chatDeltaMsg{seq: 2, delta: "new"})
	if m.chat.pending != "new" {
		t.Fatalf("expected live delta appended, got %q", m.chat.pending)
	}

	// A stale done must not close the live stream.
	m = press(t, m, chatDoneMsg{seq: 1, full: "old"})
	if !m.chat.streaming {
		t.Fatalf("expected stream still live after stale done")
	}
}

func TestChatDiscardsPartialReplyOnTransportError(t *testing.T) {
	ss, m := newTestApp(t)

	m.mode = modeChat
	m.chat.seq = 1
	m.chat.streaming = true
	m.chat.pending = "Sure, adding"
	before := len(m.chat.msgs)

	// A truncated reply may still carry a complete-looking command fence;
	// it must not reach the store.
	full := "Sure.\n\n```json-command\n{\"action\":\"addTask\",\"task\":{\"title\":\"From truncated stream\"}}\n```"
	m = press(t, m, chatDoneMsg{seq: 1, full: full, err: errors.New("connection reset")})

	if got := len(ss.Snapshot().Tasks); got != 0 {
		t.Fatalf("expected no task from truncated reply, got %d", got)
	}
	if len(m.chat.msgs) != before {
		t.Fatalf("expected partial reply dropped from history, got %d messages", len(m.chat.msgs))
	}
	if m.chat.streaming || m.chat.err == "" {
		t.Fatalf("expected stream closed with error, streaming=%v err=%q", m.chat.streaming, m.chat.err)
	}
}

func TestDeleteFromList(t *testing.T) {
	ss, m := newTestApp(t)

	if _, err := ss.AddTask(store.TaskDraft{Title: "Doomed"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	m.refreshTasks()

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	if len(ss.Snapshot().Tasks) != 0 {
		t.Fatalf("expected task deleted")
	}
	if m.status == "" {
		t.Fatalf("expected delete status message")
	}
}

func TestUndoRestoresDeletedTask(t *testing.T) {
	ss, m := newTestApp(t)

	task, err := ss.AddTask(store.TaskDraft{Title: "Oops"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	m.refreshTasks()

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	if len(ss.Snapshot().Tasks) != 0 {
		t.Fatalf("expected task deleted")
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("u")})
	got, ok := ss.Snapshot().FindTask(task.ID)
	if !ok || got.Title != "Oops" {
		t.Fatalf("expected task restored, got %+v ok=%v", got, ok)
	}
	if m.lastDeleted != nil {
		t.Fatalf("expected undo buffer cleared")
	}

	// A second undo is a no-op.
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("u")})
	if got := len(ss.Snapshot().Tasks); got != 1 {
		t.Fatalf("expected single task after repeat undo, got %d", got)
	}
}
