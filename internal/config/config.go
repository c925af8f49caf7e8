package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds ontoscope configuration.
type Config struct {
	API     APIConfig     `toml:"api"`
	Search  SearchConfig  `toml:"search"`
	UI      UIConfig      `toml:"ui"`
	Overlay OverlayConfig `toml:"overlay"`
	Log     LogConfig     `toml:"log"`
}

// APIConfig controls the backend connection.
type APIConfig struct {
	BaseURL   string   `toml:"base_url"`
	Timeout   Duration `toml:"timeout"`
	RateLimit float64  `toml:"rate_limit"` // requests per second, 0 = unlimited
	Burst     int      `toml:"burst"`
}

// SearchConfig controls query dispatch.
type SearchConfig struct {
	Debounce    Duration `toml:"debounce"`
	PerPage     int      `toml:"per_page"`
	Concurrency int      `toml:"concurrency"` // metadata enrichment workers
}

// UIConfig controls display options.
type UIConfig struct {
	Emoji bool `toml:"emoji"`
	Color bool `toml:"color"`
}

// OverlayConfig controls placement of the metadata overlay, in cells.
type OverlayConfig struct {
	Margin  int `toml:"margin"`
	OffsetX int `toml:"offset_x"`
	OffsetY int `toml:"offset_y"`
	Width   int `toml:"width"`
	Height  int `toml:"height"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
	File  string `toml:"file"`  // TUI log file, empty = <config dir>/ontoscope.log
}

// Duration is a time.Duration written as a string ("300ms", "10s") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8080/api",
			Timeout: Duration{10 * time.Second},
			Burst:   1,
		},
		Search:  SearchConfig{Debounce: Duration{300 * time.Millisecond}, PerPage: 10, Concurrency: 4},
		UI:      UIConfig{Emoji: true, Color: true},
		Overlay: OverlayConfig{Margin: 1, OffsetX: 2, OffsetY: 1, Width: 48, Height: 9},
		Log:     LogConfig{Level: "info"},
	}
}

// ConfigDir returns the ontoscope config directory path.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "ontoscope")
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// LogFile returns the configured TUI log file, or the default one.
func (c *Config) LogFile() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(ConfigDir(), "ontoscope.log")
}

// ProjectFile is the name of the per-project config looked up from the
// working directory upwards.
const ProjectFile = ".ontoscope.toml"

// Load reads the default config file, then a project config if one is found.
// Missing files yield defaults.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config at path, overlays the nearest project config,
// applies env overrides and validates. A missing file yields defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if err := decodeFile(path, cfg); err != nil {
		return nil, err
	}
	if project := findProjectConfig(); project != "" && project != path {
		if err := decodeFile(project, cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// findProjectConfig walks up from the working directory looking for ProjectFile.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, ProjectFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("ONTOSCOPE_API_URL")); v != "" {
		c.API.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("ONTOSCOPE_LOG_LEVEL")); v != "" {
		c.Log.Level = v
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		c.UI.Color = false
	}
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("api.base_url must not be empty")
	}
	if c.API.Timeout.Duration < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}
	if c.API.RateLimit < 0 {
		return fmt.Errorf("api.rate_limit must not be negative")
	}
	if c.Search.Debounce.Duration < 0 {
		return fmt.Errorf("search.debounce must not be negative")
	}
	if c.Search.PerPage <= 0 {
		return fmt.Errorf("search.per_page must be positive, got %d", c.Search.PerPage)
	}
	if c.Overlay.Margin < 0 {
		return fmt.Errorf("overlay.margin must not be negative")
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	return nil
}

// Save writes the config to the default path.
func Save(cfg *Config) error {
	return SaveTo(Path(), cfg)
}

// SaveTo writes the config to path.
func SaveTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// EnsureExists creates the config file with defaults if it doesn't exist.
// It reports whether a file was created.
func EnsureExists() (bool, error) {
	path := Path()
	if _, err := os.Stat(path); err == nil {
		return false, nil // already exists
	}
	if err := Save(Default()); err != nil {
		return false, err
	}
	return true, nil
}
