package view

import (
	"time"

	"taskflow-cli/internal/model"
)

// TimelineSpan places one task inside a timeline window.
type TimelineSpan struct {
	Task   model.Task
	Offset int // day index from the window start
}

// TimelineRow groups a category's spans. The uncategorized row has an empty
// ID and no color.
type TimelineRow struct {
	CategoryID string
	Name       string
	Color      string
	Spans      []TimelineSpan
}

// Timeline is a Gantt-style window of Days days starting at Start (always a
// Monday).
type Timeline struct {
	Start time.Time
	Days  int
	Rows  []TimelineRow
}

func (tl Timeline) End() time.Time {
	return tl.Start.AddDate(0, 0, tl.Days-1)
}

// StartOfWeek returns the Monday of t's week at midnight.
func StartOfWeek(t time.Time) time.Time {
	d := DayOf(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// BuildTimeline lays out tasks with a due date inside the window, grouped by
// category in category order with uncategorized tasks last. Rows with no
// visible tasks are omitted.
func BuildTimeline(tasks []model.Task, categories []model.Category, anchor time.Time, days int) Timeline {
	if days <= 0 {
		days = 14
	}
	start := StartOfWeek(anchor)
	tl := Timeline{Start: start, Days: days}

	known := map[string]bool{}
	for _, c := range categories {
		known[c.ID] = true
	}
	// Dangling references render as uncategorized.
	spansFor := func(categoryID string) []TimelineSpan {
		var spans []TimelineSpan
		for _, t := range tasks {
			ref := t.CategoryRef()
			if !known[ref] {
				ref = ""
			}
			if ref != categoryID || t.DueDate == nil {
				continue
			}
			due := DayOf(t.DueDate.In(start.Location()))
			offset := int(due.Sub(start).Hours() / 24)
			if offset < 0 || offset >= days {
				continue
			}
			spans = append(spans, TimelineSpan{Task: t, Offset: offset})
		}
		return spans
	}

	for _, c := range categories {
		if spans := spansFor(c.ID); len(spans) > 0 {
			tl.Rows = append(tl.Rows, TimelineRow{CategoryID: c.ID, Name: c.Name, Color: c.Color, Spans: spans})
		}
	}
	if spans := spansFor(""); len(spans) > 0 {
		tl.Rows = append(tl.Rows, TimelineRow{Name: "Uncategorized", Spans: spans})
	}
	return tl
}
