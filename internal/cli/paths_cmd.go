package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sadopc/planline/internal/config"
)

func newPathsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print the config, database and log locations in use",
		RunE: func(cmd *cobra.Command, _ []string) error {
			printf(cmd.OutOrStdout(), "config    %s\n", app.activeConfigPath())
			printf(cmd.OutOrStdout(), "database  %s\n", app.Config.Database.Path)
			printf(cmd.OutOrStdout(), "log       %s\n", app.Config.Log.Path)
			return nil
		},
	}
}

func (a *App) activeConfigPath() string {
	if a.configPath != "" {
		return a.configPath
	}
	return a.Paths.ConfigPath
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}
	cmd.AddCommand(
		newConfigShowCmd(app),
		newConfigInitCmd(app),
	)
	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective config and the settings stored in the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := app.Config.Encode()
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "%s\n", data)

			settings, err := app.Store.GetAllSettings()
			if err != nil {
				return err
			}
			if len(settings) == 0 {
				return nil
			}
			rows := make([][]string, len(settings))
			for i, s := range settings {
				rows[i] = []string{s.Key, s.Value}
			}
			printf(cmd.OutOrStdout(), "%s", renderTable([]string{"SETTING", "VALUE"}, rows))
			return nil
		},
	}
}

func newConfigInitCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config.toml with the current settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := app.activeConfigPath()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("stat config: %w", err)
			}

			data, err := app.Config.Encode()
			if err != nil {
				return err
			}
			if err := config.EnsureConfigDir(path); err != nil {
				return fmt.Errorf("create config dir: %w", err)
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			printf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	return cmd
}
