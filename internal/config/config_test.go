package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/planline/internal/timeline"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default(PathsIn("/tmp/planline"))
	assert.Equal(t, "/tmp/planline/planline.db", cfg.Database.Path)
	assert.Equal(t, "/tmp/planline/planline.log", cfg.Log.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 22, cfg.Timeline.LabelWidth)
	assert.Equal(t, timeline.Tolerance{MinMotion: 0, VerticalBand: 3}, cfg.Tolerance())
	assert.NoError(t, cfg.Validate())
}

func TestPathsIn(t *testing.T) {
	p := PathsIn("/x")
	assert.Equal(t, "/x/config.toml", p.ConfigPath)
	assert.Equal(t, "/x/planline.db", p.DBPath)
}

func TestDefaultPaths(t *testing.T) {
	p, err := DefaultPaths()
	require.NoError(t, err)
	assert.Equal(t, "planline", filepath.Base(filepath.Dir(p.ConfigPath)))
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	defaults := Default(PathsIn("/tmp/planline"))
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"), defaults)
	require.NoError(t, err)
	assert.Equal(t, defaults, cfg)

	cfg, err = Load("", defaults)
	require.NoError(t, err)
	assert.Equal(t, defaults, cfg)
}

func TestLoadEmptyFileUsesDefaults(t *testing.T) {
	defaults := Default(PathsIn("/tmp/planline"))
	cfg, err := Load(writeConfig(t, ""), defaults)
	require.NoError(t, err)
	assert.Equal(t, defaults, cfg)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[database]
path = "/custom/planline.db"

[log]
level = "debug"

[drag]
min_motion = 2
vertical_band = 6

[timeline]
label_width = 30
default_project = "Launch"
`)
	cfg, err := Load(path, Default(PathsIn("/tmp/planline")))
	require.NoError(t, err)

	assert.Equal(t, "/custom/planline.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/planline/planline.log", cfg.Log.Path, "unset keys keep defaults")
	assert.Equal(t, timeline.Tolerance{MinMotion: 2, VerticalBand: 6}, cfg.Tolerance())
	assert.Equal(t, 30, cfg.Timeline.LabelWidth)
	assert.Equal(t, "Launch", cfg.Timeline.DefaultProject)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"level":         "[log]\nlevel = \"loud\"\n",
		"min_motion":    "[drag]\nmin_motion = -1\n",
		"vertical_band": "[drag]\nvertical_band = 0\n",
		"label_width":   "[timeline]\nlabel_width = 2\n",
		"db path":       "[database]\npath = \"  \"\n",
		"syntax":        "[drag\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content), Default(PathsIn("/tmp/planline")))
			assert.Error(t, err)
		})
	}
}

func TestEncodeRoundTrips(t *testing.T) {
	cfg := Default(PathsIn("/tmp/planline"))
	cfg.Timeline.DefaultProject = "Roadmap"
	data, err := cfg.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), "[drag]")

	path := writeConfig(t, string(data))
	loaded, err := Load(path, Default(PathsIn("/elsewhere")))
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestEnsureConfigDir(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b", "config.toml")
	require.NoError(t, EnsureConfigDir(target))
	_, err := os.Stat(filepath.Dir(target))
	assert.NoError(t, err)
	assert.NoError(t, EnsureConfigDir("config.toml"))
}
