// Package view derives read-only projections from store state: filtered
// lists, aggregates, trends and the timeline. Everything here is a pure
// function of (tasks, categories, criteria, now).
package view

import (
	"time"

	"taskflow-cli/internal/model"
)

// DayOf strips the time of day, keeping t's location. Due-date comparisons
// work at calendar-day granularity.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func SameDay(a, b time.Time) bool {
	return DayOf(a).Equal(DayOf(b.In(a.Location())))
}

// DueToday reports whether the task's due date falls on now's calendar day.
func DueToday(t model.Task, now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	return SameDay(now, *t.DueDate)
}

// Overdue reports whether the task's due day is strictly before now's
// calendar day. Completed tasks are never overdue.
func Overdue(t model.Task, now time.Time) bool {
	if t.DueDate == nil || t.Completed {
		return false
	}
	return DayOf(t.DueDate.In(now.Location())).Before(DayOf(now))
}
