package tui

import (
	"fmt"
	"strings"
	"time"

	"taskflow-cli/internal/store"
	"taskflow-cli/internal/view"

	"github.com/charmbracelet/lipgloss"
)

func bar(n, max, width int, color lipgloss.TerminalColor) string {
	if max <= 0 || width <= 0 {
		return ""
	}
	w := n * width / max
	if n > 0 && w == 0 {
		w = 1
	}
	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", w))
}

// renderStats draws the statistics dashboard as plain text: summary counts,
// the per-category breakdown and the 6-month trend.
func renderStats(db store.DB, width int, now time.Time) string {
	sum := view.Summarize(db.Tasks, now)
	cats := view.ByCategory(db.Tasks, db.Categories)
	months := view.MonthlyTrend(db.Tasks, now)
	delta := view.MonthOverMonth(db.Tasks, now)

	barW := width / 3
	if barW < 10 {
		barW = 10
	}
	if barW > 40 {
		barW = 40
	}

	var b strings.Builder

	b.WriteString(styleHeader().Render("Overview") + "\n")
	fmt.Fprintf(&b, "  %d tasks, %d done (%d%%)", sum.Total, sum.Completed, sum.CompletionRate)
	if sum.Important > 0 {
		fmt.Fprintf(&b, ", %d important", sum.Important)
	}
	if sum.DueToday > 0 {
		b.WriteString(", " + lipgloss.NewStyle().Foreground(colorAccent).Render(fmt.Sprintf("%d due today", sum.DueToday)))
	}
	if sum.Overdue > 0 {
		b.WriteString(", " + lipgloss.NewStyle().Foreground(colorOverdue).Render(fmt.Sprintf("%d overdue", sum.Overdue)))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "  vs last month: %+.1f%% created, %+.1f%% completed\n", delta.CountChange, delta.CompletedChange)

	if len(cats) > 0 {
		b.WriteString("\n" + styleHeader().Render("Categories") + "\n")
		maxCount := 0
		nameW := 0
		for _, c := range cats {
			if c.Count > maxCount {
				maxCount = c.Count
			}
			if len(c.Name) > nameW {
				nameW = len(c.Name)
			}
		}
		for _, c := range cats {
			fmt.Fprintf(&b, "  %-*s %s %d/%d\n",
				nameW, c.Name, bar(c.Count, maxCount, barW, categoryColor(c.Color)), c.Completed, c.Count)
		}
	}

	b.WriteString("\n" + styleHeader().Render("Last 6 months") + "\n")
	maxMonth := 0
	for _, m := range months {
		if m.Count > maxMonth {
			maxMonth = m.Count
		}
	}
	for _, m := range months {
		label := fmt.Sprintf("%s %d", m.Month.String()[:3], m.Year)
		fmt.Fprintf(&b, "  %-8s %s %d created, %d done\n",
			label, bar(m.Count, maxMonth, barW, colorAccent), m.Count, m.Completed)
	}

	b.WriteString("\n" + styleMuted().Render("esc: back  q: quit"))
	return b.String()
}
