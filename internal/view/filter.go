package view

import (
	"strings"
	"time"

	"taskflow-cli/internal/model"
)

// Status filter values. Any other non-empty Active value is treated as a
// category ID.
const (
	FilterNone      = ""
	FilterCompleted = "completed"
	FilterImportant = "important"
	FilterToday     = "today"
	FilterOverdue   = "overdue"
)

// CategoryQueryPrefix switches the search box into category-name search.
const CategoryQueryPrefix = "category:"

// Filter is the full list-filter state. Query, Active and Date compose by
// logical AND.
type Filter struct {
	Query  string
	Active string // one of the Filter* values or a category ID
	Date   *time.Time
}

// tabFilters is the single mapping between list tabs and status filters.
// Tab selection and filter state are one value; there is no second copy to
// drift out of sync.
var tabFilters = []struct {
	Tab    string
	Active string
}{
	{"all", FilterNone},
	{"today", FilterToday},
	{"important", FilterImportant},
	{"completed", FilterCompleted},
}

// FilterForTab maps a tab name to its status filter.
func FilterForTab(tab string) (string, bool) {
	for _, tf := range tabFilters {
		if tf.Tab == tab {
			return tf.Active, true
		}
	}
	return FilterNone, false
}

// TabForFilter maps a status filter back to its tab. Category filters and
// anything else without a dedicated tab land on "all".
func TabForFilter(active string) string {
	for _, tf := range tabFilters {
		if tf.Active == active {
			return tf.Tab
		}
	}
	return "all"
}

// Tabs returns the tab names in display order.
func Tabs() []string {
	out := make([]string, len(tabFilters))
	for i, tf := range tabFilters {
		out[i] = tf.Tab
	}
	return out
}

// Apply runs the three filter stages in order: text search, status filter,
// exact-date filter. The input slice is never modified.
func Apply(tasks []model.Task, categories []model.Category, f Filter, now time.Time) []model.Task {
	result := make([]model.Task, len(tasks))
	copy(result, tasks)

	if q := strings.TrimSpace(f.Query); q != "" {
		lq := strings.ToLower(q)
		if strings.HasPrefix(lq, CategoryQueryPrefix) {
			name := strings.TrimSpace(strings.TrimPrefix(lq, CategoryQueryPrefix))
			ids := map[string]bool{}
			for _, c := range categories {
				if strings.Contains(strings.ToLower(c.Name), name) {
					ids[c.ID] = true
				}
			}
			result = keep(result, func(t model.Task) bool {
				return t.CategoryRef() != "" && ids[t.CategoryRef()]
			})
		} else {
			result = keep(result, func(t model.Task) bool {
				return strings.Contains(strings.ToLower(t.Title), lq) ||
					strings.Contains(strings.ToLower(t.Description), lq)
			})
		}
	}

	switch f.Active {
	case FilterNone:
	case FilterCompleted:
		result = keep(result, func(t model.Task) bool { return t.Completed })
	case FilterImportant:
		result = keep(result, func(t model.Task) bool { return t.Important })
	case FilterToday:
		result = keep(result, func(t model.Task) bool { return DueToday(t, now) })
	case FilterOverdue:
		result = keep(result, func(t model.Task) bool { return Overdue(t, now) })
	default:
		result = keep(result, func(t model.Task) bool { return t.CategoryRef() == f.Active })
	}

	if f.Date != nil {
		day := *f.Date
		result = keep(result, func(t model.Task) bool {
			return t.DueDate != nil && SameDay(day, *t.DueDate)
		})
	}

	return result
}

// Count returns how many tasks a status filter would keep, for sidebar
// badges.
func Count(tasks []model.Task, active string, now time.Time) int {
	return len(Apply(tasks, nil, Filter{Active: active}, now))
}

func keep(tasks []model.Task, pred func(model.Task) bool) []model.Task {
	out := tasks[:0]
	for _, t := range tasks {
		if pred(t) {
			out = append(out, t)
		}
	}
	return out
}
