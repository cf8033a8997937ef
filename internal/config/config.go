package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/sadopc/planline/internal/timeline"
)

const appName = "planline"

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
	Drag     DragConfig     `toml:"drag"`
	Timeline TimelineConfig `toml:"timeline"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LogConfig struct {
	Level string `toml:"level"` // debug | info | warn | error
	Path  string `toml:"path"`
}

// DragConfig tunes when a body drag counts as a horizontal shift. Units are
// terminal cells, so the defaults are much tighter than the engine's
// pixel-oriented timeline.DefaultTolerance.
type DragConfig struct {
	MinMotion    int `toml:"min_motion"`
	VerticalBand int `toml:"vertical_band"`
}

type TimelineConfig struct {
	LabelWidth     int    `toml:"label_width"`
	DefaultProject string `toml:"default_project"`
}

// Paths holds the default file locations under the user config directory.
type Paths struct {
	ConfigPath string
	DBPath     string
	LogPath    string
}

// DefaultPaths resolves planline's files under os.UserConfigDir.
func DefaultPaths() (Paths, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user config dir: %w", err)
	}
	return PathsIn(filepath.Join(dir, appName)), nil
}

// PathsIn lays out the default files inside dir.
func PathsIn(dir string) Paths {
	return Paths{
		ConfigPath: filepath.Join(dir, "config.toml"),
		DBPath:     filepath.Join(dir, appName+".db"),
		LogPath:    filepath.Join(dir, appName+".log"),
	}
}

func Default(paths Paths) Config {
	return Config{
		Database: DatabaseConfig{
			Path: paths.DBPath,
		},
		Log: LogConfig{
			Level: "info",
			Path:  paths.LogPath,
		},
		Drag: DragConfig{
			MinMotion:    0,
			VerticalBand: 3,
		},
		Timeline: TimelineConfig{
			LabelWidth: 22,
		},
	}
}

// Load overlays the TOML file at path onto defaults. A missing or empty file
// yields the defaults unchanged.
func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level: %q", c.Log.Level)
	}
	if c.Drag.MinMotion < 0 {
		return errors.New("drag.min_motion must be >= 0")
	}
	if c.Drag.VerticalBand <= 0 {
		return errors.New("drag.vertical_band must be > 0")
	}
	if c.Timeline.LabelWidth < 8 || c.Timeline.LabelWidth > 60 {
		return fmt.Errorf("timeline.label_width must be between 8 and 60, got %d", c.Timeline.LabelWidth)
	}
	return nil
}

// Tolerance converts the drag section for the timeline controller.
func (c Config) Tolerance() timeline.Tolerance {
	return timeline.Tolerance{MinMotion: c.Drag.MinMotion, VerticalBand: c.Drag.VerticalBand}
}

// Encode renders c as TOML, used to write a starter config file.
func (c Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode toml: %w", err)
	}
	return data, nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
