package command

import (
	"errors"
	"strings"
	"testing"
	"time"

	"taskflow-cli/internal/store"
)

func TestParse_AddTask(t *testing.T) {
	raw := `{
		"action": "addTask",
		"task": {
			"title": "  Write weekly report  ",
			"description": "for monday standup",
			"categoryId": "cat-1",
			"important": true,
			"dueDate": "2026-09-01T00:00:00.000Z"
		}
	}`
	cmd, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cmd.Action != ActionAddTask || cmd.Task == nil {
		t.Fatalf("unexpected command: %+v", cmd)
	}
	if cmd.Task.Title != "Write weekly report" || !cmd.Task.Important {
		t.Fatalf("task fields: %+v", cmd.Task)
	}
	if cmd.Task.CategoryID == nil || *cmd.Task.CategoryID != "cat-1" {
		t.Fatalf("category: %+v", cmd.Task.CategoryID)
	}
	want := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	if cmd.Task.DueDate == nil || !cmd.Task.DueDate.Equal(want) {
		t.Fatalf("due date: %+v", cmd.Task.DueDate)
	}
}

func TestParse_AddTaskNullCategory(t *testing.T) {
	cmd, err := Parse([]byte(`{"action":"addTask","task":{"title":"x","categoryId":null,"dueDate":null}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cmd.Task.CategoryID != nil || cmd.Task.DueDate != nil {
		t.Fatalf("null fields should stay unset: %+v", cmd.Task)
	}
}

func TestParse_UpdateTaskNullClearsFields(t *testing.T) {
	raw := `{"action":"updateTask","taskId":"task-1","updates":{"categoryId":null,"dueDate":null}}`
	cmd, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	u := cmd.TaskUpdate
	if !u.ClearCategory || !u.ClearDue {
		t.Fatalf("explicit nulls should clear: %+v", u)
	}
	if u.Title != nil || u.Completed != nil {
		t.Fatalf("absent fields must stay nil: %+v", u)
	}
}

func TestParse_UpdateTaskAbsentFieldsStayNil(t *testing.T) {
	cmd, err := Parse([]byte(`{"action":"updateTask","taskId":"task-1","updates":{"completed":true}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	u := cmd.TaskUpdate
	if u.Completed == nil || !*u.Completed {
		t.Fatalf("completed should be set true: %+v", u)
	}
	if u.ClearCategory || u.ClearDue || u.Title != nil {
		t.Fatalf("absent fields leaked: %+v", u)
	}
}

func TestParse_Rejections(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"missing action", `{"task":{"title":"x"}}`},
		{"unknown action", `{"action":"explodeTask"}`},
		{"addTask without payload", `{"action":"addTask"}`},
		{"addTask blank title", `{"action":"addTask","task":{"title":"  "}}`},
		{"addTask bad date", `{"action":"addTask","task":{"title":"x","dueDate":"tomorrow"}}`},
		{"updateTask without id", `{"action":"updateTask","updates":{"completed":true}}`},
		{"updateTask without updates", `{"action":"updateTask","taskId":"t1"}`},
		{"updateTask empty updates", `{"action":"updateTask","taskId":"t1","updates":{}}`},
		{"updateTask blank title", `{"action":"updateTask","taskId":"t1","updates":{"title":" "}}`},
		{"deleteTask without id", `{"action":"deleteTask"}`},
		{"addCategory without payload", `{"action":"addCategory"}`},
		{"addCategory blank name", `{"action":"addCategory","category":{"name":""}}`},
		{"updateCategory empty updates", `{"action":"updateCategory","categoryId":"c1","updates":{}}`},
		{"deleteCategory without id", `{"action":"deleteCategory"}`},
		{"not json", `nope`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.raw))
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestExtract(t *testing.T) {
	content := "I added it for you.\n\n```json-command\n{\"action\":\"deleteTask\",\"taskId\":\"task-1\"}\n```\n\nAnything else?"
	cmd, found, err := Extract(content)
	if err != nil || !found {
		t.Fatalf("extract: found=%v err=%v", found, err)
	}
	if cmd.Action != ActionDeleteTask || cmd.TaskID != "task-1" {
		t.Fatalf("unexpected command: %+v", cmd)
	}
}

func TestExtract_NoFence(t *testing.T) {
	_, found, err := Extract("just a chat reply, no commands here")
	if found || err != nil {
		t.Fatalf("expected no command: found=%v err=%v", found, err)
	}
}

func TestExtract_MalformedFenceIsAnError(t *testing.T) {
	_, found, err := Extract("```json-command\n{\"action\":\n```")
	if !found || err == nil {
		t.Fatalf("malformed fence must surface an error: found=%v err=%v", found, err)
	}
}

func TestStrip(t *testing.T) {
	content := "Done!\n\n```json-command\n{\"action\":\"deleteTask\",\"taskId\":\"t1\"}\n```\n\nAnything else?"
	got := Strip(content)
	if strings.Contains(got, "json-command") || strings.Contains(got, "deleteTask") {
		t.Fatalf("fence not removed: %q", got)
	}
	if !strings.Contains(got, "Done!") || !strings.Contains(got, "Anything else?") {
		t.Fatalf("surrounding text lost: %q", got)
	}
	if strings.Contains(got, "\n\n\n") {
		t.Fatalf("blank runs not collapsed: %q", got)
	}
}

func newDispatchSession(t *testing.T) *store.Session {
	t.Helper()
	ss, err := store.Open(store.Store{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	return ss
}

func TestDispatch_AddAndUpdateTask(t *testing.T) {
	ss := newDispatchSession(t)

	cmd, err := Parse([]byte(`{"action":"addTask","task":{"title":"Pay rent","important":true}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	res, err := Dispatch(ss, cmd)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !strings.Contains(res.Notice, "Pay rent") {
		t.Fatalf("notice: %q", res.Notice)
	}

	snap := ss.Snapshot()
	if len(snap.Tasks) != 1 || !snap.Tasks[0].Important {
		t.Fatalf("task not created: %+v", snap.Tasks)
	}
	id := snap.Tasks[0].ID

	cmd, err = Parse([]byte(`{"action":"updateTask","taskId":"` + id + `","updates":{"completed":true}}`))
	if err != nil {
		t.Fatalf("parse update: %v", err)
	}
	if _, err := Dispatch(ss, cmd); err != nil {
		t.Fatalf("dispatch update: %v", err)
	}
	got, _ := ss.Snapshot().FindTask(id)
	if !got.Completed {
		t.Fatalf("update not applied: %+v", got)
	}
}

func TestDispatch_UpdateMissingTaskFailsClosed(t *testing.T) {
	ss := newDispatchSession(t)
	cmd, err := Parse([]byte(`{"action":"updateTask","taskId":"ghost","updates":{"completed":true}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var nf *store.NotFoundError
	if _, err := Dispatch(ss, cmd); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if snap := ss.Snapshot(); len(snap.Tasks) != 0 {
		t.Fatalf("fail-closed update created state: %+v", snap.Tasks)
	}
}

func TestDispatch_DeleteCategoryCascades(t *testing.T) {
	ss := newDispatchSession(t)
	cat, err := ss.AddCategory("Chores", "#f59e0b")
	if err != nil {
		t.Fatalf("add category: %v", err)
	}
	tk, err := ss.AddTask(store.TaskDraft{Title: "laundry", CategoryID: &cat.ID})
	if err != nil {
		t.Fatalf("add task: %v", err)
	}

	cmd, err := Parse([]byte(`{"action":"deleteCategory","categoryId":"` + cat.ID + `"}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	res, err := Dispatch(ss, cmd)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !strings.Contains(res.Notice, "Chores") {
		t.Fatalf("notice: %q", res.Notice)
	}
	got, ok := ss.Snapshot().FindTask(tk.ID)
	if !ok || got.CategoryID != nil {
		t.Fatalf("task should survive detached: %+v", got)
	}
}
