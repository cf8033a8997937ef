package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/planline/internal/store"
)

const dayLayout = "2006-01-02"

func parseDay(s string) (time.Time, error) {
	t, err := time.Parse(dayLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

func parseOptionalDay(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := parseDay(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatOptionalDay(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(dayLayout)
}

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	cmd.AddCommand(
		newProjectCreateCmd(app),
		newProjectListCmd(app),
		newProjectUseCmd(app),
		newProjectRemoveCmd(app),
	)

	return cmd
}

func newProjectCreateCmd(app *App) *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a project, optionally bounded by start and end dates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return fmt.Errorf("project name is required")
			}
			startDate, err := parseOptionalDay(start)
			if err != nil {
				return err
			}
			endDate, err := parseOptionalDay(end)
			if err != nil {
				return err
			}

			p, err := app.Store.CreateProject(name, startDate, endDate)
			if err != nil {
				return err
			}
			if err := app.Store.SetSetting(store.SettingActiveProject, p.ID); err != nil {
				return err
			}
			app.Logger.Info("project created", "id", p.ID, "name", p.Name)

			bound := p.Bound(time.Now())
			printf(cmd.OutOrStdout(), "Created project %s (%s .. %s)\n",
				p.Name, bound.Start.Format(dayLayout), bound.End.Format(dayLayout))
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD)")

	return cmd
}

func newProjectListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			projects, err := app.Store.ListProjects()
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				printf(cmd.OutOrStdout(), "No projects found.\n")
				return nil
			}

			active, _ := app.Store.GetSetting(store.SettingActiveProject)
			rows := make([][]string, 0, len(projects))
			for _, p := range projects {
				mark := ""
				if p.ID == active {
					mark = "*"
				}
				rows = append(rows, []string{mark, p.Name, formatOptionalDay(p.StartDate), formatOptionalDay(p.EndDate), p.ID})
			}
			printf(cmd.OutOrStdout(), "%s", renderTable([]string{"", "NAME", "START", "END", "ID"}, rows))
			return nil
		},
	}
}

func newProjectUseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "use PROJECT",
		Short: "Make a project the one opened by default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Store.FindProject(args[0])
			if err != nil {
				return err
			}
			if err := app.Store.SetSetting(store.SettingActiveProject, p.ID); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Now using %s\n", p.Name)
			return nil
		},
	}
}

func newProjectRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove PROJECT",
		Short: "Delete a project with its rows, milestones and pinpoints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Store.FindProject(args[0])
			if err != nil {
				return err
			}
			if err := app.Store.DeleteProject(p.ID); err != nil {
				return err
			}
			app.Logger.Info("project deleted", "id", p.ID)
			printf(cmd.OutOrStdout(), "Removed project %s\n", p.Name)
			return nil
		},
	}
}
