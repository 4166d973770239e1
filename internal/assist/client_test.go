package assist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskflow-cli/internal/model"
	"taskflow-cli/internal/store"
)

func testSettings(baseURL string) model.UserSettings {
	s := model.DefaultSettings()
	s.OpenAIAPIKey = "test-key"
	s.OpenAIBaseURL = baseURL
	return s
}

func sseChunk(content string) string {
	return fmt.Sprintf(`data: {"choices":[{"delta":{"content":%q}}]}`+"\n\n", content)
}

func TestClient_StreamsDeltasInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header: %q", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, sseChunk("Hello"))
		fmt.Fprint(w, sseChunk(" there"))
		fmt.Fprint(w, `data: {"choices":[{"delta":{}}]}`+"\n\n") // empty delta, skipped
		fmt.Fprint(w, sseChunk("!"))
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	c := NewClient(testSettings(srv.URL))
	stream, err := c.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	var deltas []string
	full, err := Collect(stream, func(d string) { deltas = append(deltas, d) })
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if full != "Hello there!" {
		t.Fatalf("full response: %q", full)
	}
	if len(deltas) != 3 || deltas[0] != "Hello" {
		t.Fatalf("deltas: %v", deltas)
	}
}

func TestClient_RequestShape(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	s := testSettings(srv.URL)
	s.OpenAIModel = "gpt-4o-mini"
	c := NewClient(s)
	stream, err := c.Chat(context.Background(), []Message{{Role: RoleSystem, Content: "sys"}, {Role: RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if _, err := Collect(stream, nil); err != nil {
		t.Fatalf("collect: %v", err)
	}
	for _, want := range []string{`"model":"gpt-4o-mini"`, `"stream":true`, `"role":"system"`, `"role":"user"`} {
		if !strings.Contains(gotBody, want) {
			t.Fatalf("request body missing %s: %s", want, gotBody)
		}
	}
}

func TestClient_APIErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	c := NewClient(testSettings(srv.URL))
	_, err := c.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	if err == nil || !strings.Contains(err.Error(), "Incorrect API key") {
		t.Fatalf("expected API error message, got %v", err)
	}
	if !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected status code in error, got %v", err)
	}
}

func TestClient_MissingKey(t *testing.T) {
	s := model.DefaultSettings()
	c := NewClient(s)
	if _, err := c.Chat(context.Background(), nil); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestClient_Cancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sseChunk("partial"))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	c := NewClient(testSettings(srv.URL))
	stream, err := c.Chat(ctx, []Message{{Role: RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	defer stream.Close()

	if delta, err := stream.Recv(); err != nil || delta != "partial" {
		t.Fatalf("first delta: %q, %v", delta, err)
	}
	cancel()
	if _, err := stream.Recv(); err == nil {
		t.Fatalf("recv after cancel must fail")
	}
}

func TestBuildConversation(t *testing.T) {
	catID := "cat-1"
	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	db := store.DB{
		Tasks: []model.Task{
			{ID: "task-1", Title: "Ship release", Important: true, CategoryID: &catID, DueDate: &due, Description: "cut the tag"},
			{ID: "task-2", Title: "Done thing", Completed: true},
		},
		Categories: []model.Category{{ID: catID, Name: "Work", Color: "#3b82f6"}},
	}
	history := make([]Message, 0, 14)
	for i := 0; i < 14; i++ {
		history = append(history, Message{Role: RoleUser, Content: fmt.Sprintf("turn %d", i)})
	}

	msgs := BuildConversation(db, history, "what's due?", time.Now())
	// instructions + context + 10 trailing turns + new user turn
	if len(msgs) != 13 {
		t.Fatalf("expected 13 messages, got %d", len(msgs))
	}
	sys := msgs[0].Content
	for _, want := range []string{"json-command", "addTask", "deleteCategory", "task-1: Ship release", "cat-1: Work"} {
		if !strings.Contains(sys, want) {
			t.Fatalf("system prompt missing %q", want)
		}
	}
	ctxMsg := msgs[1].Content
	for _, want := range []string{"Ship release [todo] [important] [category: Work] due: 2026-09-01", "description: cut the tag", "Done thing [done]", "2 tasks total, 1 completed (50%)"} {
		if !strings.Contains(ctxMsg, want) {
			t.Fatalf("context missing %q in:\n%s", want, ctxMsg)
		}
	}
	if msgs[2].Content != "turn 4" {
		t.Fatalf("history window should keep the last 10 turns, first kept: %q", msgs[2].Content)
	}
	last := msgs[len(msgs)-1]
	if last.Role != RoleUser || last.Content != "what's due?" {
		t.Fatalf("final turn: %+v", last)
	}
}

func TestHistoryPersistence(t *testing.T) {
	s := store.Store{Dir: t.TempDir()}

	msgs, err := LoadHistory(s)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Role != RoleAssistant {
		t.Fatalf("fresh history should be the greeting: %+v", msgs)
	}

	msgs = append(msgs, Message{Role: RoleUser, Content: "hello"})
	if err := SaveHistory(s, msgs); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := LoadHistory(s)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(got) != 2 || got[1].Content != "hello" {
		t.Fatalf("history lost: %+v", got)
	}

	if err := ClearHistory(s); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, err = LoadHistory(s)
	if err != nil {
		t.Fatalf("load after clear: %v", err)
	}
	if len(got) != 1 || got[0].Content != Greeting().Content {
		t.Fatalf("cleared history should reset to greeting: %+v", got)
	}
}
