package config

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"op2mapviewer/internal/logger"
	"op2mapviewer/internal/render"
)

const (
	AppDirName = "op2mapviewer"
	FileName   = "config.toml"
)

// DefaultTilesetPaths are searched for a tileset archive at startup
var DefaultTilesetPaths = []string{"../op2graphics_rs/tilesets.zip", "tilesets.zip"}

// Config is the persisted application configuration
type Config struct {
	View     View     `toml:"view"`
	Tilesets Tilesets `toml:"tilesets"`
	Log      Log      `toml:"log"`
}

type View struct {
	Zoom            float64 `toml:"zoom"`
	CellSize        float64 `toml:"cell_size"`
	ShowGrid        bool    `toml:"show_grid"`
	UseTilesets     bool    `toml:"use_tilesets"`
	GridColor       string  `toml:"grid_color"`
	BackgroundColor string  `toml:"background_color"`
}

type Tilesets struct {
	SearchPaths []string `toml:"search_paths"`
}

type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the configuration used when no file exists
func Default() Config {
	v := render.DefaultViewConfig()
	return Config{
		View: View{
			Zoom:            v.Zoom,
			CellSize:        v.CellSize,
			ShowGrid:        v.ShowGrid,
			UseTilesets:     v.UseTilesets,
			GridColor:       FormatColor(v.GridColor),
			BackgroundColor: FormatColor(v.BackgroundColor),
		},
		Tilesets: Tilesets{SearchPaths: append([]string(nil), DefaultTilesetPaths...)},
		Log:      Log{Level: "info", Format: "console"},
	}
}

// DefaultPath returns the per-user config file location
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config dir: %w", err)
	}
	return filepath.Join(dir, AppDirName, FileName), nil
}

// Load reads the config at path. A missing file yields the defaults; keys
// absent from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Default(), fmt.Errorf("parse config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the parent directory
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate checks values that cannot be clamped
func (c Config) Validate() error {
	if _, err := ParseColor(c.View.GridColor); err != nil {
		return fmt.Errorf("view.grid_color: %w", err)
	}
	if _, err := ParseColor(c.View.BackgroundColor); err != nil {
		return fmt.Errorf("view.background_color: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	return nil
}

// ViewConfig converts the view section into renderer settings, clamping
// numeric ranges
func (c Config) ViewConfig() render.ViewConfig {
	v := render.DefaultViewConfig()
	v.Zoom = c.View.Zoom
	v.CellSize = c.View.CellSize
	v.ShowGrid = c.View.ShowGrid
	v.UseTilesets = c.View.UseTilesets
	if col, err := ParseColor(c.View.GridColor); err == nil {
		v.GridColor = col
	}
	if col, err := ParseColor(c.View.BackgroundColor); err == nil {
		v.BackgroundColor = col
	}
	return v.Clamped()
}

// SetViewConfig stores renderer settings back into the view section
func (c *Config) SetViewConfig(v render.ViewConfig) {
	v = v.Clamped()
	c.View = View{
		Zoom:            v.Zoom,
		CellSize:        v.CellSize,
		ShowGrid:        v.ShowGrid,
		UseTilesets:     v.UseTilesets,
		GridColor:       FormatColor(v.GridColor),
		BackgroundColor: FormatColor(v.BackgroundColor),
	}
}

// LogLevel resolves the configured level with environment overrides
func (c Config) LogLevel() logger.LogLevel {
	return logger.LevelFromEnv(logger.ParseLevel(c.Log.Level))
}

// JSONLogs reports whether logs should be written as JSON lines
func (c Config) JSONLogs() bool {
	return strings.EqualFold(c.Log.Format, "json")
}

// ParseColor reads an opaque "#rrggbb" colour
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: want #rrggbb", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// FormatColor writes c as "#rrggbb"
func FormatColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
