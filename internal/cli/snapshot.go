package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSnapshotCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Export or import the full data set",
	}

	export := &cobra.Command{
		Use:   "export <file>",
		Short: "Write tasks, categories and settings to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := gatedSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := ss.ExportFile(args[0]); err != nil {
				return writeErr(cmd, err)
			}
			data := ss.Export()
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d tasks, %d categories to %s\n",
				len(data.Tasks), len(data.Categories), args[0])
			return nil
		},
	}
	cmd.AddCommand(export)

	imp := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all data from a snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := gatedSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := ss.ImportFile(args[0]); err != nil {
				return writeErr(cmd, err)
			}
			db := ss.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d tasks, %d categories from %s\n",
				len(db.Tasks), len(db.Categories), args[0])
			return nil
		},
	}
	cmd.AddCommand(imp)

	return cmd
}
