package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/sadopc/planline/internal/config"
	"github.com/sadopc/planline/internal/store"
	"github.com/sadopc/planline/internal/tui"
)

// App holds the state shared by every command. Store is opened lazily from
// the resolved config unless a caller injects one.
type App struct {
	Paths  config.Paths
	Config config.Config
	Store  *store.Store

	// Logger receives CLI diagnostics. Nil means a stderr logger is built
	// from the config on first use.
	Logger *log.Logger

	IsInteractive func() bool
	RunTUI        func(*store.Store, tui.Options) error

	configPath string
	dbPath     string
	project    string
	ownsStore  bool
}

// NewApp returns an App with default paths and config under paths.
func NewApp(paths config.Paths) *App {
	return &App{
		Paths:         paths,
		Config:        config.Default(paths),
		IsInteractive: func() bool { return false },
		RunTUI:        tui.Run,
	}
}

// NewRootCmd creates the top-level "planline" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "planline",
		Short:         "Terminal timeline planner for projects, milestones and pinpoints",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return app.Close()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !app.IsInteractive() {
				return cmd.Help()
			}
			return runTimeline(app)
		},
	}

	root.PersistentFlags().StringVar(&app.configPath, "config", "", "path to config.toml")
	root.PersistentFlags().StringVar(&app.dbPath, "db", "", "path to the SQLite database")
	root.PersistentFlags().StringVar(&app.project, "project", "", "project id or name")

	root.AddCommand(
		newExportCmd(app),
		newProjectCmd(app),
		newRowCmd(app),
		newMilestoneCmd(app),
		newPinpointCmd(app),
		newPathsCmd(app),
		newConfigCmd(app),
	)

	return root
}

// setup loads the config file, applies flag overrides and opens the store.
func (a *App) setup(cmd *cobra.Command) error {
	path := a.configPath
	if path == "" {
		path = a.Paths.ConfigPath
	}
	cfg, err := config.Load(path, a.Config)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	if a.dbPath != "" {
		cfg.Database.Path = a.dbPath
	}
	a.Config = cfg

	if a.Logger == nil {
		a.Logger, err = newLogger(cmd.ErrOrStderr(), cfg.Log.Level)
		if err != nil {
			return err
		}
	}

	if a.Store != nil {
		return nil
	}
	s, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.Store = s
	a.ownsStore = true
	a.Logger.Debug("database opened", "path", cfg.Database.Path)
	return nil
}

// Close releases a store opened by setup. Injected stores stay open.
func (a *App) Close() error {
	if !a.ownsStore || a.Store == nil {
		return nil
	}
	err := a.Store.Close()
	a.Store = nil
	a.ownsStore = false
	return err
}

// resolveProject picks the project named by --project, then the configured
// default, then the remembered or first project.
func (a *App) resolveProject() (*store.Project, error) {
	p, err := a.Store.ResolveProject(a.project, a.Config.Timeline.DefaultProject)
	if errors.Is(err, store.ErrNotFound) {
		if a.project == "" && a.Config.Timeline.DefaultProject == "" {
			return nil, fmt.Errorf("no projects yet, create one with \"planline project create\": %w", err)
		}
		return nil, fmt.Errorf("project not found: %w", err)
	}
	return p, err
}

func runTimeline(app *App) error {
	var projectID string
	p, err := app.resolveProject()
	switch {
	case err == nil:
		projectID = p.ID
	case errors.Is(err, store.ErrNotFound) && app.project == "" && app.Config.Timeline.DefaultProject == "":
		// The TUI opens on the project list.
	default:
		return err
	}

	logger, closeLog, err := newFileLogger(app.Config.Log.Path, app.Config.Log.Level)
	if err != nil {
		return err
	}
	defer closeLog()

	home, err := os.UserHomeDir()
	if err != nil {
		home = filepath.Dir(app.Config.Database.Path)
		logger.Warn("home dir unavailable, exporting beside the database", "dir", home, "err", err)
	}
	logger.Info("starting tui", "project", projectID, "db", app.Config.Database.Path)
	return app.RunTUI(app.Store, tui.Options{
		ProjectID:  projectID,
		LabelWidth: app.Config.Timeline.LabelWidth,
		Tolerance:  app.Config.Tolerance(),
		Logger:     logger,
		ExportDir:  home,
	})
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
