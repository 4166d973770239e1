package cli

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"taskflow-cli/internal/auth"
	"taskflow-cli/internal/model"

	"github.com/spf13/cobra"
)

type authOut struct {
	Enabled    bool   `json:"enabled"`
	Authorized bool   `json:"authorized"`
	Remaining  string `json:"remaining,omitempty"`
}

func (a authOut) TableHeader() []string { return []string{"GATE", "AUTHORIZED", "REMAINING"} }
func (a authOut) TableRows() [][]string {
	gate := "disabled"
	if a.Enabled {
		gate = "enabled"
	}
	rem := a.Remaining
	if rem == "" {
		rem = "-"
	}
	return [][]string{{gate, fmt.Sprintf("%t", a.Authorized), rem}}
}

func newAuthCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Access gate status and unlock",
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show gate status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			g := auth.Gate{Session: ss}
			now := time.Now()
			out := authOut{
				Enabled:    ss.Settings().AuthCode != "",
				Authorized: g.Authorized(now),
			}
			if d, ok := g.Remaining(now); ok {
				out.Remaining = d.Round(time.Minute).String()
			}
			return writeOut(cmd, app, out)
		},
	}
	cmd.AddCommand(status)

	unlock := &cobra.Command{
		Use:   "unlock [code]",
		Short: "Unlock the access gate",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			g := auth.Gate{Session: ss}
			if ss.Settings().AuthCode == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "access gate is disabled")
				return nil
			}
			code := ""
			if len(args) == 1 {
				code = args[0]
			} else {
				fmt.Fprint(cmd.OutOrStdout(), "access code: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return writeErr(cmd, err)
				}
				code = strings.TrimRight(line, "\r\n")
			}
			if err := g.Verify(code, time.Now()); err != nil {
				return writeErr(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "unlocked")
			return nil
		},
	}
	cmd.AddCommand(unlock)

	lock := &cobra.Command{
		Use:   "lock",
		Short: "Expire the current authorization",
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := ss.UpdateSettings(func(s *model.UserSettings) {
				s.LastAuthTime = nil
			}); err != nil {
				return writeErr(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "locked")
			return nil
		},
	}
	cmd.AddCommand(lock)

	return cmd
}
