package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"taskflow-cli/internal/store"
	"taskflow-cli/internal/view"

	"github.com/spf13/cobra"
)

type categoryOut struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Count     int    `json:"count"`
	Completed int    `json:"completed"`
}

type categoryList []categoryOut

func (l categoryList) TableHeader() []string {
	return []string{"ID", "NAME", "COLOR", "TASKS", "DONE"}
}

func (l categoryList) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, c := range l {
		rows = append(rows, []string{shortID(c.ID), c.Name, c.Color, strconv.Itoa(c.Count), strconv.Itoa(c.Completed)})
	}
	return rows
}

func newCategoriesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cats"},
		Short:   "Category commands",
	}

	cmd.AddCommand(newCategoriesListCmd(app))
	cmd.AddCommand(newCategoriesAddCmd(app))
	cmd.AddCommand(newCategoriesUpdateCmd(app))
	cmd.AddCommand(newCategoriesDeleteCmd(app))

	return cmd
}

func newCategoriesListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories with task counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := gatedSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			db := ss.Snapshot()
			out := make(categoryList, 0, len(db.Categories))
			for _, c := range db.Categories {
				row := categoryOut{ID: c.ID, Name: c.Name, Color: c.Color}
				for _, t := range db.Tasks {
					if t.CategoryRef() != c.ID {
						continue
					}
					row.Count++
					if t.Completed {
						row.Completed++
					}
				}
				out = append(out, row)
			}
			return writeOut(cmd, app, out)
		},
	}
	return cmd
}

func newCategoriesAddCmd(app *App) *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := gatedSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			c, err := ss.AddCategory(args[0], color)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, categoryList{{ID: c.ID, Name: c.Name, Color: c.Color}})
		},
	}

	cmd.Flags().StringVar(&color, "color", "", "Hex color (default "+`"#3b82f6"`+")")
	return cmd
}

func newCategoriesUpdateCmd(app *App) *cobra.Command {
	var name string
	var color string

	cmd := &cobra.Command{
		Use:   "update <category>",
		Short: "Rename or recolor a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := gatedSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			c, err := resolveCategoryRef(ss.Snapshot(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			var p store.CategoryPatch
			if cmd.Flags().Changed("name") {
				p.Name = &name
			}
			if cmd.Flags().Changed("color") {
				p.Color = &color
			}
			if p == (store.CategoryPatch{}) {
				return writeErr(cmd, errors.New("nothing to update; pass --name or --color"))
			}
			updated, err := ss.UpdateCategory(c.ID, p)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, categoryList{{ID: updated.ID, Name: updated.Name, Color: updated.Color}})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&color, "color", "", "New hex color")
	return cmd
}

func newCategoriesDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <category>",
		Short: "Delete a category (its tasks become uncategorized)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := gatedSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			db := ss.Snapshot()
			c, err := resolveCategoryRef(db, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			detached := view.Count(db.Tasks, c.ID, time.Now())
			if err := ss.DeleteCategory(c.ID); err != nil {
				return writeErr(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted category %q (%d tasks detached)\n", c.Name, detached)
			return nil
		},
	}
	return cmd
}
