package view

import (
	"testing"
	"time"

	"taskflow-cli/internal/model"
)

var statsNow = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

func TestRate(t *testing.T) {
	if got := Rate(0, 0); got != 0 {
		t.Fatalf("rate with zero total must be 0, got %d", got)
	}
	if got := Rate(1, 3); got != 33 {
		t.Fatalf("rate 1/3: %d", got)
	}
	if got := Rate(2, 3); got != 67 {
		t.Fatalf("rate 2/3: %d", got)
	}
	if got := Rate(3, 3); got != 100 {
		t.Fatalf("rate 3/3: %d", got)
	}
}

func TestSummarize(t *testing.T) {
	tasks := []model.Task{
		{ID: "t1", Completed: true, Important: true},
		{ID: "t2", DueDate: ptr(statsNow)},
		{ID: "t3", DueDate: ptr(statsNow.AddDate(0, 0, -2))},
		{ID: "t4", Completed: true, DueDate: ptr(statsNow.AddDate(0, 0, -2))},
	}
	s := Summarize(tasks, statsNow)
	if s.Total != 4 || s.Completed != 2 || s.Important != 1 || s.WithDueDate != 3 {
		t.Fatalf("summary: %+v", s)
	}
	if s.DueToday != 1 || s.Overdue != 1 {
		t.Fatalf("due buckets: %+v", s)
	}
	if s.CompletionRate != 50 {
		t.Fatalf("completion rate: %d", s.CompletionRate)
	}

	empty := Summarize(nil, statsNow)
	if empty.CompletionRate != 0 {
		t.Fatalf("empty store rate must be 0, got %d", empty.CompletionRate)
	}
}

func TestByCategory(t *testing.T) {
	work := "cat-work"
	home := "cat-home"
	categories := []model.Category{
		{ID: home, Name: "Home", Color: "#22c55e"},
		{ID: work, Name: "Work", Color: "#3b82f6"},
	}
	tasks := []model.Task{
		{ID: "t1", CategoryID: &work, Completed: true},
		{ID: "t2", CategoryID: &work},
		{ID: "t3", CategoryID: &work},
		{ID: "t4", CategoryID: &home},
	}
	got := ByCategory(tasks, categories)
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	// Busiest category first.
	if got[0].ID != work || got[0].Count != 3 || got[0].Completed != 1 || got[0].CompletionRate != 33 {
		t.Fatalf("work row: %+v", got[0])
	}
	if got[1].ID != home || got[1].Count != 1 || got[1].CompletionRate != 0 {
		t.Fatalf("home row: %+v", got[1])
	}

	// A category with no tasks still shows with zero counts, rate 0.
	lone := ByCategory(nil, categories[:1])
	if len(lone) != 1 || lone[0].Count != 0 || lone[0].CompletionRate != 0 {
		t.Fatalf("empty category: %+v", lone)
	}
}

func TestMonthlyTrend(t *testing.T) {
	tasks := []model.Task{
		{ID: "t1", CreatedAt: statsNow, Completed: true},
		{ID: "t2", CreatedAt: statsNow},
		{ID: "t3", CreatedAt: statsNow.AddDate(0, -1, 0)},
		{ID: "t4", CreatedAt: statsNow.AddDate(0, -7, 0)}, // outside the window
	}
	got := MonthlyTrend(tasks, statsNow)
	if len(got) != 6 {
		t.Fatalf("expected 6 months, got %d", len(got))
	}
	if got[0].Month != time.March || got[5].Month != time.August {
		t.Fatalf("window: %v .. %v", got[0].Month, got[5].Month)
	}
	if got[5].Count != 2 || got[5].Completed != 1 || got[5].CompletionRate != 50 {
		t.Fatalf("current month: %+v", got[5])
	}
	if got[4].Count != 1 {
		t.Fatalf("previous month: %+v", got[4])
	}
	if got[0].Count != 0 || got[0].CompletionRate != 0 {
		t.Fatalf("empty month: %+v", got[0])
	}
}

func TestMonthlyTrend_EndOfMonthAnchor(t *testing.T) {
	// Jan 31: naive month subtraction would skip short months.
	now := time.Date(2026, 1, 31, 10, 0, 0, 0, time.UTC)
	got := MonthlyTrend(nil, now)
	want := []time.Month{time.August, time.September, time.October, time.November, time.December, time.January}
	for i, m := range want {
		if got[i].Month != m {
			t.Fatalf("month %d: want %v, got %v", i, m, got[i].Month)
		}
	}
}

func TestHeatmap(t *testing.T) {
	tasks := []model.Task{
		{ID: "t1", DueDate: ptr(time.Date(2026, 8, 15, 9, 0, 0, 0, time.UTC)), Completed: true},
		{ID: "t2", DueDate: ptr(time.Date(2026, 8, 15, 18, 0, 0, 0, time.UTC))},
		{ID: "t3", DueDate: ptr(time.Date(2026, 7, 15, 9, 0, 0, 0, time.UTC))},
		{ID: "t4"}, // no due date, never appears
	}
	got := Heatmap(tasks, statsNow)
	if len(got) != 31 {
		t.Fatalf("august has 31 days, got %d", len(got))
	}
	day15 := got[14]
	if day15.Count != 2 || day15.Completed != 1 {
		t.Fatalf("day 15: %+v", day15)
	}
	var total int
	for _, d := range got {
		total += d.Count
	}
	if total != 2 {
		t.Fatalf("only august dues should count, got %d", total)
	}
}

func TestCompletionTrend(t *testing.T) {
	tasks := []model.Task{
		{ID: "t1", CreatedAt: statsNow, Completed: true},
		{ID: "t2", CreatedAt: statsNow.AddDate(0, 0, -29)},
		{ID: "t3", CreatedAt: statsNow.AddDate(0, 0, -30)}, // outside
	}
	got := CompletionTrend(tasks, statsNow)
	if len(got) != 30 {
		t.Fatalf("expected 30 points, got %d", len(got))
	}
	if got[0].Total != 1 || got[0].Completed != 0 {
		t.Fatalf("oldest point: %+v", got[0])
	}
	last := got[29]
	if last.Total != 1 || last.Completed != 1 || last.Rate != 100 {
		t.Fatalf("today point: %+v", last)
	}
	if got[10].Total != 0 || got[10].Rate != 0 {
		t.Fatalf("empty day rate must be 0: %+v", got[10])
	}
}

func TestMonthOverMonth(t *testing.T) {
	tasks := []model.Task{
		{ID: "t1", CreatedAt: statsNow, Completed: true},
		{ID: "t2", CreatedAt: statsNow},
		{ID: "t3", CreatedAt: statsNow.AddDate(0, -1, 0), Completed: true},
	}
	d := MonthOverMonth(tasks, statsNow)
	if d.ThisMonthCount != 2 || d.LastMonthCount != 1 {
		t.Fatalf("counts: %+v", d)
	}
	if d.CountChange != 100 {
		t.Fatalf("count change: %v", d.CountChange)
	}
	if d.CompletedChange != 0 {
		t.Fatalf("completed change: %v", d.CompletedChange)
	}
}

func TestMonthOverMonth_ZeroPriorMonth(t *testing.T) {
	tasks := []model.Task{{ID: "t1", CreatedAt: statsNow, Completed: true}}
	d := MonthOverMonth(tasks, statsNow)
	if d.CountChange != 0 || d.CompletedChange != 0 {
		t.Fatalf("empty prior month must yield 0, got %+v", d)
	}
}
