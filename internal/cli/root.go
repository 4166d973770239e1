package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"taskflow-cli/internal/auth"
	"taskflow-cli/internal/format"
	"taskflow-cli/internal/store"
	"taskflow-cli/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	PrettyJSON bool
	Format     string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "taskflow",
		Short:        "Local-first task manager CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  taskflow

  # Scriptable commands
  taskflow tasks list
  taskflow tasks add "Pay rent" --due 2026-09-01
  taskflow stats

  # Talk to the assistant
  taskflow chat "plan my week"
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("TASKFLOW_DIR", ""), "Path to store dir (default: ~/.taskflow; for fixtures/tests)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("TASKFLOW_FORMAT", "table"), "Output format (table|json)")

	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newCategoriesCmd(app))
	cmd.AddCommand(newStatsCmd(app))
	cmd.AddCommand(newGanttCmd(app))
	cmd.AddCommand(newChatCmd(app))
	cmd.AddCommand(newSnapshotCmd(app))
	cmd.AddCommand(newSettingsCmd(app))
	cmd.AddCommand(newAuthCmd(app))

	return cmd
}

func runTUI(app *App) error {
	ss, err := openSession(app)
	if err != nil {
		return err
	}
	return tui.Run(ss)
}

// openSession resolves the store dir and opens the session. Gate checks
// happen per command; auth commands need the session before authorization.
func openSession(app *App) (*store.Session, error) {
	dir := app.Dir
	if dir == "" {
		d, err := store.DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
		app.Dir = dir
	}
	return store.Open(store.Store{Dir: dir})
}

// gatedSession opens the session and refuses when the access gate is locked.
// Every data command goes through here; only auth commands bypass it.
func gatedSession(app *App) (*store.Session, error) {
	ss, err := openSession(app)
	if err != nil {
		return nil, err
	}
	g := auth.Gate{Session: ss}
	if !g.Authorized(time.Now()) {
		return nil, errors.New("access gate is locked; run `taskflow auth unlock`")
	}
	return ss, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v format.Tabler) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
