package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/planline/internal/export"
)

func newExportCmd(app *App) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a project's milestones and pinpoints to CSV, JSON or YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// An explicit --format wins; otherwise the --out extension decides.
			f, ok := export.ParseFormat(format)
			if !cmd.Flags().Changed("format") && out != "" {
				if byExt, extOK := export.ParseFormat(filepath.Ext(out)); extOK {
					f, ok = byExt, true
				}
			}
			if !ok {
				return fmt.Errorf("unknown export format %q (want csv, json or yaml)", format)
			}

			b, err := loadBoard(app)
			if err != nil {
				return err
			}
			path := out
			if path == "" {
				path = export.FileName(b.Project.Name, f, time.Now())
			}
			if err := export.Write(f, b, path); err != nil {
				return fmt.Errorf("export %s: %w", path, err)
			}
			app.Logger.Info("exported", "project", b.Project.ID, "format", f, "path", path)
			printf(cmd.OutOrStdout(), "Exported %s to %s\n", b.Project.Name, path)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", string(export.FormatCSV), "csv, json or yaml")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: <project>_<timestamp>.<format> in the current directory)")

	return cmd
}
