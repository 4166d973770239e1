package cli

import (
	"fmt"
	"time"

	"taskflow-cli/internal/view"

	"github.com/spf13/cobra"
)

type ganttOut view.Timeline

func (g ganttOut) TableHeader() []string {
	header := make([]string, 0, g.Days+1)
	header = append(header, "TASK")
	for i := 0; i < g.Days; i++ {
		header = append(header, g.Start.AddDate(0, 0, i).Format("02"))
	}
	return header
}

func (g ganttOut) TableRows() [][]string {
	var rows [][]string
	for _, row := range g.Rows {
		rows = append(rows, append([]string{"[" + row.Name + "]"}, make([]string, g.Days)...))
		for _, span := range row.Spans {
			cells := make([]string, g.Days+1)
			cells[0] = "  " + span.Task.Title
			mark := "#"
			if span.Task.Completed {
				mark = "x"
			}
			cells[span.Offset+1] = mark
			rows = append(rows, cells)
		}
	}
	return rows
}

func newGanttCmd(app *App) *cobra.Command {
	var from string
	var days int

	cmd := &cobra.Command{
		Use:   "gantt",
		Short: "Timeline of tasks by due date",
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := gatedSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			anchor := time.Now()
			if from != "" {
				d, err := parseDue(from)
				if err != nil {
					return writeErr(cmd, err)
				}
				anchor = d
			}
			if days != 7 && days != 14 && days != 30 {
				return writeErr(cmd, fmt.Errorf("invalid window %d (want 7, 14 or 30 days)", days))
			}
			db := ss.Snapshot()
			tl := view.BuildTimeline(db.Tasks, db.Categories, anchor, days)
			if len(tl.Rows) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no tasks due between %s and %s\n",
					tl.Start.Format("2006-01-02"), tl.End().Format("2006-01-02"))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s .. %s\n", tl.Start.Format("Mon Jan 2"), tl.End().Format("Mon Jan 2"))
			return writeOut(cmd, app, ganttOut(tl))
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Anchor date (YYYY-MM-DD, default: today; window starts that week's Monday)")
	cmd.Flags().IntVar(&days, "days", 14, "Window size in days (7|14|30)")
	return cmd
}
