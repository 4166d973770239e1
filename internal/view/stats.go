package view

import (
	"math"
	"sort"
	"time"

	"taskflow-cli/internal/model"
)

// Rate returns round(completed/total*100), 0 when total is 0.
func Rate(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// Summary is the headline aggregate over all tasks.
type Summary struct {
	Total          int
	Completed      int
	Important      int
	WithDueDate    int
	DueToday       int
	Overdue        int
	CompletionRate int
}

func Summarize(tasks []model.Task, now time.Time) Summary {
	var s Summary
	s.Total = len(tasks)
	for _, t := range tasks {
		if t.Completed {
			s.Completed++
		}
		if t.Important {
			s.Important++
		}
		if t.DueDate != nil {
			s.WithDueDate++
		}
		if DueToday(t, now) {
			s.DueToday++
		}
		if Overdue(t, now) {
			s.Overdue++
		}
	}
	s.CompletionRate = Rate(s.Completed, s.Total)
	return s
}

// CategoryStat aggregates one category's tasks.
type CategoryStat struct {
	ID             string
	Name           string
	Color          string
	Count          int
	Completed      int
	CompletionRate int
}

// ByCategory aggregates per category, busiest first. Categories with no
// tasks still appear with zero counts.
func ByCategory(tasks []model.Task, categories []model.Category) []CategoryStat {
	out := make([]CategoryStat, 0, len(categories))
	for _, c := range categories {
		st := CategoryStat{ID: c.ID, Name: c.Name, Color: c.Color}
		for _, t := range tasks {
			if t.CategoryRef() != c.ID {
				continue
			}
			st.Count++
			if t.Completed {
				st.Completed++
			}
		}
		st.CompletionRate = Rate(st.Completed, st.Count)
		out = append(out, st)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// MonthStat counts tasks created in one calendar month.
type MonthStat struct {
	Year           int
	Month          time.Month
	Count          int
	Completed      int
	CompletionRate int
}

// MonthlyTrend covers the trailing 6 calendar months including the current
// one, oldest first.
func MonthlyTrend(tasks []model.Task, now time.Time) []MonthStat {
	out := make([]MonthStat, 0, 6)
	for i := 5; i >= 0; i-- {
		ref := now.AddDate(0, -i, -now.Day()+1) // first of the month, avoids end-of-month rollover
		st := MonthStat{Year: ref.Year(), Month: ref.Month()}
		for _, t := range tasks {
			c := t.CreatedAt.In(now.Location())
			if c.Year() != st.Year || c.Month() != st.Month {
				continue
			}
			st.Count++
			if t.Completed {
				st.Completed++
			}
		}
		st.CompletionRate = Rate(st.Completed, st.Count)
		out = append(out, st)
	}
	return out
}

// DayStat counts tasks due on one calendar day.
type DayStat struct {
	Date      time.Time
	Count     int
	Completed int
}

// Heatmap buckets tasks by due day across every day of the month containing
// ref.
func Heatmap(tasks []model.Task, ref time.Time) []DayStat {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	next := first.AddDate(0, 1, 0)
	var out []DayStat
	for day := first; day.Before(next); day = day.AddDate(0, 0, 1) {
		st := DayStat{Date: day}
		for _, t := range tasks {
			if t.DueDate == nil || !SameDay(day, *t.DueDate) {
				continue
			}
			st.Count++
			if t.Completed {
				st.Completed++
			}
		}
		out = append(out, st)
	}
	return out
}

// TrendPoint is one day of the creation/completion trend.
type TrendPoint struct {
	Date      time.Time
	Total     int
	Completed int
	Rate      int
}

// CompletionTrend covers the trailing 30 calendar days including today,
// oldest first, bucketing tasks by creation day.
func CompletionTrend(tasks []model.Task, now time.Time) []TrendPoint {
	out := make([]TrendPoint, 0, 30)
	for i := 29; i >= 0; i-- {
		day := DayOf(now).AddDate(0, 0, -i)
		p := TrendPoint{Date: day}
		for _, t := range tasks {
			if !SameDay(day, t.CreatedAt) {
				continue
			}
			p.Total++
			if t.Completed {
				p.Completed++
			}
		}
		p.Rate = Rate(p.Completed, p.Total)
		out = append(out, p)
	}
	return out
}

// MonthDelta compares the current calendar month with the previous one.
// Changes are 0 when the prior month's denominator is 0.
type MonthDelta struct {
	ThisMonthCount     int
	ThisMonthCompleted int
	LastMonthCount     int
	LastMonthCompleted int
	CountChange        float64 // percent
	CompletedChange    float64 // percent
}

func MonthOverMonth(tasks []model.Task, now time.Time) MonthDelta {
	prev := now.AddDate(0, -1, -now.Day()+1)
	var d MonthDelta
	for _, t := range tasks {
		c := t.CreatedAt.In(now.Location())
		switch {
		case c.Year() == now.Year() && c.Month() == now.Month():
			d.ThisMonthCount++
			if t.Completed {
				d.ThisMonthCompleted++
			}
		case c.Year() == prev.Year() && c.Month() == prev.Month():
			d.LastMonthCount++
			if t.Completed {
				d.LastMonthCompleted++
			}
		}
	}
	if d.LastMonthCount > 0 {
		d.CountChange = float64(d.ThisMonthCount-d.LastMonthCount) / float64(d.LastMonthCount) * 100
	}
	if d.LastMonthCompleted > 0 {
		d.CompletedChange = float64(d.ThisMonthCompleted-d.LastMonthCompleted) / float64(d.LastMonthCompleted) * 100
	}
	return d
}
