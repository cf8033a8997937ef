package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/planline/internal/config"
	"github.com/sadopc/planline/internal/store"
	"github.com/sadopc/planline/internal/timeline"
	"github.com/sadopc/planline/internal/tui"
)

// testApp wires an App over an in-memory store and a temp config dir.
func testApp(t *testing.T) *App {
	t.Helper()
	s, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	app := NewApp(config.PathsIn(t.TempDir()))
	app.Store = s
	app.Logger = log.New(io.Discard)
	return app
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func day(s string) time.Time {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

// seedProject creates "Launch" with a Backend row and an API child row.
func seedProject(t *testing.T, app *App) *store.Project {
	t.Helper()
	start, end := day("2025-01-01"), day("2025-06-30")
	p, err := app.Store.CreateProject("Launch", &start, &end)
	require.NoError(t, err)
	backend, err := app.Store.CreateRow(p.ID, "Backend", "#6C63FF", nil)
	require.NoError(t, err)
	_, err = app.Store.CreateRow(p.ID, "API", "#2EC4B6", &backend.ID)
	require.NoError(t, err)
	return p
}

func TestProjectCreateAndList(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "project", "create", "Roadmap", "--start", "2025-02-01", "--end", "2025-11-30")
	require.NoError(t, err)
	assert.Contains(t, out, "Created project Roadmap (2025-02-01 .. 2025-11-30)")

	p, err := app.Store.FindProject("Roadmap")
	require.NoError(t, err)
	active, err := app.Store.GetSetting(store.SettingActiveProject)
	require.NoError(t, err)
	assert.Equal(t, p.ID, active)

	out, err = executeCmd(t, app, "project", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Roadmap")
	assert.Contains(t, out, "2025-02-01")
	assert.Contains(t, out, "*")
}

func TestProjectCreateRejectsBadInput(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "project", "create", "Bad", "--start", "2025-13-01")
	assert.ErrorContains(t, err, "invalid date")

	_, err = executeCmd(t, app, "project", "create", "Inverted", "--start", "2025-05-01", "--end", "2025-04-01")
	assert.ErrorContains(t, err, "end date is before start date")

	_, err = executeCmd(t, app, "project", "create")
	assert.Error(t, err)
}

func TestProjectListEmpty(t *testing.T) {
	app := testApp(t)
	out, err := executeCmd(t, app, "project", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No projects found.")
}

func TestProjectUseAndRemove(t *testing.T) {
	app := testApp(t)
	seedProject(t, app)
	other, err := app.Store.CreateProject("Other", nil, nil)
	require.NoError(t, err)

	out, err := executeCmd(t, app, "project", "use", "Other")
	require.NoError(t, err)
	assert.Contains(t, out, "Now using Other")
	active, err := app.Store.GetSetting(store.SettingActiveProject)
	require.NoError(t, err)
	assert.Equal(t, other.ID, active)

	out, err = executeCmd(t, app, "project", "remove", other.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed project Other")
	_, err = app.Store.GetProject(other.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = executeCmd(t, app, "project", "use", "Missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRowAddAndList(t *testing.T) {
	app := testApp(t)
	p := seedProject(t, app)

	out, err := executeCmd(t, app, "row", "add", "Frontend", "--color", "#FF6B6B")
	require.NoError(t, err)
	assert.Contains(t, out, "Added row Frontend to Launch")

	_, err = executeCmd(t, app, "row", "add", "Web", "--parent", "frontend")
	require.NoError(t, err)

	rows, err := app.Store.ListRows(p.ID)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	out, err = executeCmd(t, app, "row", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Backend")
	assert.Contains(t, out, "  API")
	assert.Contains(t, out, "  Web")
}

func TestRowAddRejectsGrandchild(t *testing.T) {
	app := testApp(t)
	seedProject(t, app)

	_, err := executeCmd(t, app, "row", "add", "Deep", "--parent", "API")
	assert.ErrorIs(t, err, timeline.ErrNestedRow)

	_, err = executeCmd(t, app, "row", "add", "Lost", "--parent", "Nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRowAddNeedsProject(t *testing.T) {
	app := testApp(t)
	_, err := executeCmd(t, app, "row", "add", "Backend")
	require.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorContains(t, err, "planline project create")
}

func TestProjectFlagSelectsProject(t *testing.T) {
	app := testApp(t)
	seedProject(t, app)
	other, err := app.Store.CreateProject("Other", nil, nil)
	require.NoError(t, err)

	_, err = executeCmd(t, app, "--project", "Other", "row", "add", "Ops")
	require.NoError(t, err)
	rows, err := app.Store.ListRows(other.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ops", rows[0].Name)

	_, err = executeCmd(t, app, "--project", "Nope", "row", "list")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMilestoneAdd(t *testing.T) {
	app := testApp(t)
	p := seedProject(t, app)

	out, err := executeCmd(t, app, "milestone", "add", "Beta",
		"--start", "2025-03-01", "--end", "2025-03-10", "--row", "API", "--status", "in_progress")
	require.NoError(t, err)
	assert.Contains(t, out, "Added milestone Beta (2025-03-01 .. 2025-03-10) on API")

	_, err = executeCmd(t, app, "milestone", "add", "Launch day", "--start", "2025-06-01")
	require.NoError(t, err)

	ms, err := app.Store.ListMilestones(p.ID)
	require.NoError(t, err)
	require.Len(t, ms, 2)
	byName := map[string]timeline.Milestone{}
	for _, m := range ms {
		byName[m.Name] = m
	}
	assert.Equal(t, timeline.StatusInProgress, byName["Beta"].Status)
	require.NotNil(t, byName["Beta"].RowID)
	assert.Nil(t, byName["Launch day"].RowID)
	assert.True(t, byName["Launch day"].Start.Equal(byName["Launch day"].End))
}

func TestMilestoneAddRejectsBadInput(t *testing.T) {
	app := testApp(t)
	seedProject(t, app)

	_, err := executeCmd(t, app, "milestone", "add", "Beta", "--start", "2025-03-10", "--end", "2025-03-01")
	assert.ErrorIs(t, err, timeline.ErrInvalidRange)

	_, err = executeCmd(t, app, "milestone", "add", "Beta", "--start", "2025-03-01", "--status", "someday")
	assert.ErrorContains(t, err, "unknown status")

	_, err = executeCmd(t, app, "milestone", "add", "Beta")
	assert.ErrorContains(t, err, "required flag")
}

func TestPinpointAdd(t *testing.T) {
	app := testApp(t)
	p := seedProject(t, app)

	out, err := executeCmd(t, app, "pinpoint", "add", "Freeze", "--date", "2025-05-05", "--row", "Backend", "--description", "code freeze")
	require.NoError(t, err)
	assert.Contains(t, out, "Added pinpoint Freeze on Backend at 2025-05-05")

	pins, err := app.Store.ListPinpoints(p.ID)
	require.NoError(t, err)
	require.Len(t, pins, 1)
	assert.Equal(t, "code freeze", pins[0].Description)

	_, err = executeCmd(t, app, "pinpoint", "add", "Orphan", "--date", "2025-05-05")
	assert.ErrorContains(t, err, "required flag")
}

func TestExport(t *testing.T) {
	app := testApp(t)
	p := seedProject(t, app)
	_, err := app.Store.CreateMilestone(p.ID, nil, "Beta", day("2025-03-01"), day("2025-03-10"), timeline.StatusPlanned, "")
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "plan.json")
	out, err := executeCmd(t, app, "export", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported Launch to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	csvPath := filepath.Join(dir, "plan.txt")
	_, err = executeCmd(t, app, "export", "--format", "csv", "--out", csvPath)
	require.NoError(t, err)
	data, err = os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Beta")

	_, err = executeCmd(t, app, "export", "--format", "xml")
	assert.ErrorContains(t, err, "unknown export format")
}

func TestPathsAndConfigInit(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "paths")
	require.NoError(t, err)
	assert.Contains(t, out, app.Paths.ConfigPath)
	assert.Contains(t, out, app.Paths.DBPath)
	assert.Contains(t, out, app.Paths.LogPath)

	out, err = executeCmd(t, app, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+app.Paths.ConfigPath)

	loaded, err := config.Load(app.Paths.ConfigPath, config.Default(config.PathsIn(t.TempDir())))
	require.NoError(t, err)
	assert.Equal(t, app.Paths.DBPath, loaded.Database.Path)

	_, err = executeCmd(t, app, "config", "init")
	assert.ErrorContains(t, err, "already exists")
	_, err = executeCmd(t, app, "config", "init", "--force")
	assert.NoError(t, err)
}

func TestConfigShow(t *testing.T) {
	app := testApp(t)
	p := seedProject(t, app)
	require.NoError(t, app.Store.SetSetting(store.SettingActiveProject, p.ID))

	out, err := executeCmd(t, app, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "label_width = 22")
	assert.Contains(t, out, "active_project")
	assert.Contains(t, out, p.ID)
}

func TestConfigFileOverridesDefaults(t *testing.T) {
	app := testApp(t)
	cfgPath := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[timeline]\nlabel_width = 30\n"), 0o644))

	_, err := executeCmd(t, app, "--config", cfgPath, "--db", "/tmp/override.db", "paths")
	require.NoError(t, err)
	assert.Equal(t, 30, app.Config.Timeline.LabelWidth)
	assert.Equal(t, "/tmp/override.db", app.Config.Database.Path)

	require.NoError(t, os.WriteFile(cfgPath, []byte("[log]\nlevel = \"loud\"\n"), 0o644))
	_, err = executeCmd(t, app, "--config", cfgPath, "paths")
	assert.ErrorContains(t, err, "load config")
}

func TestRootPrintsHelpWhenNotInteractive(t *testing.T) {
	app := testApp(t)
	app.RunTUI = func(*store.Store, tui.Options) error {
		t.Fatal("tui must not start without a terminal")
		return nil
	}

	out, err := executeCmd(t, app)
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "export")
}

func TestRootStartsTUI(t *testing.T) {
	app := testApp(t)
	p := seedProject(t, app)
	app.IsInteractive = func() bool { return true }

	var got tui.Options
	app.RunTUI = func(s *store.Store, opts tui.Options) error {
		assert.Same(t, app.Store, s)
		got = opts
		return nil
	}

	_, err := executeCmd(t, app)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ProjectID)
	assert.Equal(t, 22, got.LabelWidth)
	assert.Equal(t, timeline.Tolerance{MinMotion: 0, VerticalBand: 3}, got.Tolerance)
	require.NotNil(t, got.Logger)

	_, err = os.Stat(app.Paths.LogPath)
	assert.NoError(t, err)
}

func TestRootExportDirFallsBackWithoutHome(t *testing.T) {
	app := testApp(t)
	seedProject(t, app)
	app.IsInteractive = func() bool { return true }
	t.Setenv("HOME", "")

	var got tui.Options
	app.RunTUI = func(_ *store.Store, opts tui.Options) error {
		got = opts
		return nil
	}

	_, err := executeCmd(t, app)
	require.NoError(t, err)
	assert.Equal(t, filepath.Dir(app.Config.Database.Path), got.ExportDir)
}

func TestRootStartsTUIWithoutProjects(t *testing.T) {
	app := testApp(t)
	app.IsInteractive = func() bool { return true }

	started := false
	app.RunTUI = func(_ *store.Store, opts tui.Options) error {
		started = true
		assert.Empty(t, opts.ProjectID)
		return nil
	}

	_, err := executeCmd(t, app)
	require.NoError(t, err)
	assert.True(t, started)
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"A", "LONGER"}, [][]string{{"wide cell", "x"}})
	lines := bytes.Split([]byte(out), []byte("\n"))
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, "A          LONGER", string(lines[0]))
	assert.Equal(t, "wide cell  x", string(lines[2]))
}
