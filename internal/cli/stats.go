package cli

import (
	"fmt"
	"strconv"
	"time"

	"taskflow-cli/internal/view"

	"github.com/spf13/cobra"
)

type statsOut struct {
	Summary    view.Summary        `json:"summary"`
	ByCategory []view.CategoryStat `json:"byCategory"`
	Monthly    []view.MonthStat    `json:"monthlyTrend"`
	Delta      view.MonthDelta     `json:"monthOverMonth"`
}

func (s statsOut) TableHeader() []string { return []string{"METRIC", "VALUE"} }
func (s statsOut) TableRows() [][]string {
	rows := [][]string{
		{"total tasks", strconv.Itoa(s.Summary.Total)},
		{"completed", fmt.Sprintf("%d (%d%%)", s.Summary.Completed, s.Summary.CompletionRate)},
		{"important", strconv.Itoa(s.Summary.Important)},
		{"due today", strconv.Itoa(s.Summary.DueToday)},
		{"overdue", strconv.Itoa(s.Summary.Overdue)},
		{"created vs last month", fmt.Sprintf("%+.1f%%", s.Delta.CountChange)},
		{"completed vs last month", fmt.Sprintf("%+.1f%%", s.Delta.CompletedChange)},
	}
	for _, c := range s.ByCategory {
		rows = append(rows, []string{"category " + c.Name, fmt.Sprintf("%d/%d (%d%%)", c.Completed, c.Count, c.CompletionRate)})
	}
	for _, m := range s.Monthly {
		rows = append(rows, []string{fmt.Sprintf("%s %d", m.Month.String()[:3], m.Year), fmt.Sprintf("%d created, %d completed", m.Count, m.Completed)})
	}
	return rows
}

type heatmapOut []view.DayStat

func (h heatmapOut) TableHeader() []string { return []string{"DATE", "DUE", "DONE"} }
func (h heatmapOut) TableRows() [][]string {
	rows := make([][]string, 0, len(h))
	for _, d := range h {
		if d.Count == 0 {
			continue
		}
		rows = append(rows, []string{d.Date.Format("2006-01-02"), strconv.Itoa(d.Count), strconv.Itoa(d.Completed)})
	}
	return rows
}

func newStatsCmd(app *App) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Task statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := gatedSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			db := ss.Snapshot()
			now := time.Now()
			out := statsOut{
				Summary:    view.Summarize(db.Tasks, now),
				ByCategory: view.ByCategory(db.Tasks, db.Categories),
				Monthly:    view.MonthlyTrend(db.Tasks, now),
				Delta:      view.MonthOverMonth(db.Tasks, now),
			}
			return writeOut(cmd, app, out)
		},
	}

	heatmap := &cobra.Command{
		Use:   "heatmap",
		Short: "Tasks due per day of a month",
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := gatedSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ref := time.Now()
			if month != "" {
				m, err := time.ParseInLocation("2006-01", month, time.Local)
				if err != nil {
					return writeErr(cmd, fmt.Errorf("invalid month %q (want YYYY-MM)", month))
				}
				ref = m
			}
			db := ss.Snapshot()
			return writeOut(cmd, app, heatmapOut(view.Heatmap(db.Tasks, ref)))
		},
	}
	heatmap.Flags().StringVar(&month, "month", "", "Target month (YYYY-MM, default: current)")
	cmd.AddCommand(heatmap)

	trend := &cobra.Command{
		Use:   "trend",
		Short: "30-day creation/completion trend",
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := gatedSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			db := ss.Snapshot()
			return writeOut(cmd, app, trendOut(view.CompletionTrend(db.Tasks, time.Now())))
		},
	}
	cmd.AddCommand(trend)

	return cmd
}

type trendOut []view.TrendPoint

func (tr trendOut) TableHeader() []string { return []string{"DATE", "CREATED", "DONE", "RATE"} }
func (tr trendOut) TableRows() [][]string {
	rows := make([][]string, 0, len(tr))
	for _, p := range tr {
		rows = append(rows, []string{p.Date.Format("2006-01-02"), strconv.Itoa(p.Total), strconv.Itoa(p.Completed), strconv.Itoa(p.Rate) + "%"})
	}
	return rows
}
