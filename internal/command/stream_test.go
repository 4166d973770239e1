package command

import (
	"strings"
	"testing"
)

func filterAll(deltas ...string) string {
	var f StreamFilter
	var b strings.Builder
	for _, d := range deltas {
		b.WriteString(f.Push(d))
	}
	b.WriteString(f.Flush())
	return b.String()
}

func TestStreamFilterHidesFenceSplitAcrossDeltas(t *testing.T) {
	got := filterAll(
		"On it.", "\n\n``", "`json-com", "mand\n",
		`{"action":"addTask",`, `"task":{"title":"Buy milk"}}`,
		"\n``", "`\n\nDone.",
	)
	if strings.Contains(got, "json-command") || strings.Contains(got, "addTask") {
		t.Fatalf("fence leaked into output: %q", got)
	}
	if !strings.Contains(got, "On it.") || !strings.Contains(got, "Done.") {
		t.Fatalf("surrounding text lost: %q", got)
	}
}

func TestStreamFilterReleasesFalsePrefix(t *testing.T) {
	if got := filterAll("see ``", "` ticks"); got != "see ``` ticks" {
		t.Fatalf("plain backticks mangled: %q", got)
	}
	if got := filterAll("ends with ``"); got != "ends with ``" {
		t.Fatalf("held tail not flushed: %q", got)
	}
}

func TestStreamFilterDropsUnclosedFence(t *testing.T) {
	got := filterAll("Half\n", "```json-command\n{\"action\":")
	if got != "Half\n" {
		t.Fatalf("unclosed fence leaked: %q", got)
	}
}
