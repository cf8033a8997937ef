package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/planline/internal/store"
	"github.com/sadopc/planline/internal/timeline"
)

const defaultRowColor = "#6C63FF"

// findRow matches ref against row ids first, then names.
func findRow(b *store.Board, ref string) (*timeline.Row, error) {
	for i := range b.Rows {
		if b.Rows[i].ID == ref {
			return &b.Rows[i], nil
		}
	}
	for i := range b.Rows {
		if strings.EqualFold(b.Rows[i].Name, ref) {
			return &b.Rows[i], nil
		}
	}
	return nil, fmt.Errorf("row %q in %s: %w", ref, b.Project.Name, store.ErrNotFound)
}

// loadBoard resolves the project and loads its board.
func loadBoard(app *App) (*store.Board, error) {
	p, err := app.resolveProject()
	if err != nil {
		return nil, err
	}
	return app.Store.LoadBoard(p.ID)
}

func newRowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "row",
		Short: "Manage timeline rows",
	}

	cmd.AddCommand(
		newRowAddCmd(app),
		newRowListCmd(app),
	)

	return cmd
}

func newRowAddCmd(app *App) *cobra.Command {
	var parent, color string

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a row, or a child row under --parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := loadBoard(app)
			if err != nil {
				return err
			}

			var parentID *string
			if parent != "" {
				r, err := findRow(b, parent)
				if err != nil {
					return err
				}
				parentID = &r.ID
			}

			row, err := app.Store.CreateRow(b.Project.ID, strings.TrimSpace(args[0]), color, parentID)
			if err != nil {
				return err
			}
			app.Logger.Info("row created", "id", row.ID, "project", b.Project.ID)
			printf(cmd.OutOrStdout(), "Added row %s to %s\n", row.Name, b.Project.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "Parent row id or name")
	cmd.Flags().StringVar(&color, "color", defaultRowColor, "Row color (hex)")

	return cmd
}

func newRowListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rows in display order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := loadBoard(app)
			if err != nil {
				return err
			}
			if len(b.Rows) == 0 {
				printf(cmd.OutOrStdout(), "No rows in %s.\n", b.Project.Name)
				return nil
			}

			placed := timeline.IndexMilestones(b.Milestones, b.Rows)
			var rows [][]string
			for _, g := range timeline.GroupRows(b.Rows) {
				for _, r := range g.Lanes() {
					name := r.Name
					if !r.IsTopLevel() {
						name = "  " + name
					}
					rows = append(rows, []string{name, fmt.Sprint(placed.Count(r.ID)), r.ID})
				}
			}
			printf(cmd.OutOrStdout(), "%s", renderTable([]string{"ROW", "MILESTONES", "ID"}, rows))
			return nil
		},
	}
}
