package format

import (
	"fmt"
	"time"
)

// DueDate renders a due date compactly:
// - same year: "Sep 1"
// - other years: "Sep 1 2027"
// Empty string for no due date.
func DueDate(due *time.Time, now time.Time) string {
	if due == nil {
		return ""
	}
	d := due.In(now.Location())
	if d.Year() == now.Year() {
		return d.Format("Jan 2")
	}
	return d.Format("Jan 2 2006")
}

// DueLabel renders a due date relative to today: "due today", "due
// tomorrow", "3d overdue" or "due Sep 12".
func DueLabel(due *time.Time, now time.Time) string {
	if due == nil {
		return ""
	}
	day := func(t time.Time) time.Time {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	}
	diff := int(day(due.In(now.Location())).Sub(day(now)).Hours() / 24)
	switch {
	case diff == 0:
		return "due today"
	case diff == 1:
		return "due tomorrow"
	case diff < 0:
		return fmt.Sprintf("%dd overdue", -diff)
	default:
		return "due " + DueDate(due, now)
	}
}
