package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"taskflow-cli/internal/assist"
	"taskflow-cli/internal/command"

	"github.com/spf13/cobra"
)

func newChatCmd(app *App) *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Send one message to the assistant",
		Long: strings.TrimSpace(`
Send one message to the assistant and stream the reply. The assistant sees
the current tasks and categories and may apply a single change (add, update
or delete a task or category); applied changes are reported after the reply.

Conversation history carries over between invocations; --clear resets it.
`),
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := gatedSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if clear {
				if err := assist.ClearHistory(ss.Store()); err != nil {
					return writeErr(cmd, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "chat history cleared")
				if len(args) == 0 {
					return nil
				}
			}
			input := strings.TrimSpace(strings.Join(args, " "))
			if input == "" {
				return writeErr(cmd, errors.New("nothing to send; pass a message"))
			}

			history, err := assist.LoadHistory(ss.Store())
			if err != nil {
				return writeErr(cmd, err)
			}
			msgs := assist.BuildConversation(ss.Snapshot(), history, input, time.Now())

			client := assist.NewClient(ss.Settings())
			stream, err := client.Chat(cmd.Context(), msgs)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer stream.Close()

			// The reply streams through a filter so the command fence never
			// reaches the terminal; the unfiltered text still feeds Extract.
			out := cmd.OutOrStdout()
			var filter command.StreamFilter
			full, err := assist.Collect(stream, func(delta string) {
				fmt.Fprint(out, filter.Push(delta))
			})
			fmt.Fprint(out, filter.Flush())
			fmt.Fprintln(out)
			if err != nil {
				return writeErr(cmd, err)
			}

			if parsed, found, perr := command.Extract(full); found {
				if perr != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "assistant command ignored: %v\n", perr)
				} else if res, derr := command.Dispatch(ss, parsed); derr != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "assistant command failed: %v\n", derr)
				} else {
					fmt.Fprintf(out, "\n%s\n", res.Notice)
				}
			}

			history = append(history,
				assist.Message{Role: assist.RoleUser, Content: input},
				assist.Message{Role: assist.RoleAssistant, Content: command.Strip(full)},
			)
			if err := assist.SaveHistory(ss.Store(), history); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "Reset the conversation history first")

	return cmd
}
