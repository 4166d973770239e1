package format

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

type fakeTable struct {
	header []string
	rows   [][]string
}

func (f fakeTable) TableHeader() []string { return f.header }
func (f fakeTable) TableRows() [][]string { return f.rows }

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTable(&buf, fakeTable{
		header: []string{"ID", "TITLE"},
		rows:   [][]string{{"1", "Buy milk"}, {"2", "Pay rent"}},
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "ID") || !strings.Contains(lines[1], "Buy milk") {
		t.Fatalf("table content: %q", buf.String())
	}
	// Columns align.
	if strings.Index(lines[1], "Buy") != strings.Index(lines[2], "Pay") {
		t.Fatalf("columns misaligned:\n%s", buf.String())
	}
}

func TestWrite_FormatSwitch(t *testing.T) {
	ft := fakeTable{header: []string{"A"}, rows: nil}

	var buf bytes.Buffer
	if err := Write(&buf, ft, "", false); err != nil {
		t.Fatalf("default format: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "A") {
		t.Fatalf("default should be table: %q", buf.String())
	}

	buf.Reset()
	if err := Write(&buf, ft, "json", false); err != nil {
		t.Fatalf("json format: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "{") {
		t.Fatalf("json output: %q", buf.String())
	}

	if err := Write(&buf, ft, "yaml", false); err == nil {
		t.Fatalf("unknown format must error")
	}
}

func TestDueLabel(t *testing.T) {
	now := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)
	day := func(offset int) *time.Time {
		d := now.AddDate(0, 0, offset)
		return &d
	}
	cases := []struct {
		due  *time.Time
		want string
	}{
		{nil, ""},
		{day(0), "due today"},
		{day(1), "due tomorrow"},
		{day(-3), "3d overdue"},
		{day(14), "due Sep 12"},
	}
	for _, tc := range cases {
		if got := DueLabel(tc.due, now); got != tc.want {
			t.Fatalf("DueLabel(%v) = %q, want %q", tc.due, got, tc.want)
		}
	}
	next := time.Date(2027, 1, 5, 0, 0, 0, 0, time.UTC)
	if got := DueLabel(&next, now); got != "due Jan 5 2027" {
		t.Fatalf("cross-year label: %q", got)
	}
}
