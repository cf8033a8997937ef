package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/planline/internal/timeline"
)

func newMilestoneCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "milestone",
		Short: "Manage milestones",
	}
	cmd.AddCommand(newMilestoneAddCmd(app))
	return cmd
}

func newMilestoneAddCmd(app *App) *cobra.Command {
	var start, end, row, status, color string

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Schedule a milestone, optionally on a row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			startDate, err := parseDay(start)
			if err != nil {
				return err
			}
			endDate := startDate
			if end != "" {
				if endDate, err = parseDay(end); err != nil {
					return err
				}
			}
			st := timeline.Status(status)
			if !st.Valid() {
				return fmt.Errorf("unknown status %q", status)
			}

			b, err := loadBoard(app)
			if err != nil {
				return err
			}
			var rowID *string
			if row != "" {
				r, err := findRow(b, row)
				if err != nil {
					return err
				}
				rowID = &r.ID
			}

			m, err := app.Store.CreateMilestone(b.Project.ID, rowID, strings.TrimSpace(args[0]), startDate, endDate, st, color)
			if err != nil {
				return err
			}
			app.Logger.Info("milestone created", "id", m.ID, "project", b.Project.ID)
			printf(cmd.OutOrStdout(), "Added milestone %s (%s .. %s) on %s\n",
				m.Name, m.Start.Format(dayLayout), m.End.Format(dayLayout), b.RowName(m.RowID))
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD), defaults to the start date")
	cmd.Flags().StringVar(&row, "row", "", "Row id or name")
	cmd.Flags().StringVar(&status, "status", string(timeline.StatusPlanned), "planned, in_progress, done or blocked")
	cmd.Flags().StringVar(&color, "color", "", "Bar color (hex), defaults to the status color")
	_ = cmd.MarkFlagRequired("start")

	return cmd
}

func newPinpointCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pinpoint",
		Short: "Manage pinpoints",
	}
	cmd.AddCommand(newPinpointAddCmd(app))
	return cmd
}

func newPinpointAddCmd(app *App) *cobra.Command {
	var date, row, description, color string

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Mark a single date on a row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			b, err := loadBoard(app)
			if err != nil {
				return err
			}
			r, err := findRow(b, row)
			if err != nil {
				return err
			}

			p, err := app.Store.CreatePinpoint(b.Project.ID, r.ID, day, strings.TrimSpace(args[0]), color, description)
			if err != nil {
				return err
			}
			app.Logger.Info("pinpoint created", "id", p.ID, "project", b.Project.ID)
			printf(cmd.OutOrStdout(), "Added pinpoint %s on %s at %s\n", p.Name, r.Name, p.Date.Format(dayLayout))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&row, "row", "", "Row id or name")
	cmd.Flags().StringVar(&description, "description", "", "Free-form note")
	cmd.Flags().StringVar(&color, "color", "", "Marker color (hex)")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("row")

	return cmd
}
