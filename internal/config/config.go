package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Defaults shared by DefaultConfig and Normalize.
const (
	DefaultListen        = "127.0.0.1:8080"
	DefaultRefresh       = "*/15 * * * *"
	DefaultHourHeight    = 60
	DefaultOverlapPolicy = "cascade"
	DefaultCacheDir      = "./cache/ics-cache"
	DefaultCaptureURL    = "http://127.0.0.1:8080/calendar"
	DefaultCaptureOutput = "./cache/preview.png"
	DefaultCaptureWidth  = 480
	DefaultCaptureHeight = 760
)

// ICSConfig describes a single ICS subscription source.
type ICSConfig struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for de-dup and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" json:"name"`
	// Color is the CSS background used for this feed's events.
	Color string `yaml:"color" json:"color"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// LayoutConfig tunes the timeline layout engine.
type LayoutConfig struct {
	// HourHeight is the number of pixels per hour on the timeline.
	HourHeight float64 `yaml:"hour_height" json:"hour_height"`

	// OverlapPolicy selects how overlapping events are staggered:
	//   - "cascade" (default): transitive pixel cascade
	//   - "adjacent": percentage shift against the predecessor only
	OverlapPolicy string `yaml:"overlap_policy" json:"overlap_policy"`

	// OverlapStep is the stagger amount; pixels for cascade, percent for
	// adjacent. Zero picks the policy's default.
	OverlapStep float64 `yaml:"overlap_step" json:"overlap_step"`
}

// ViewConfig holds the card's initial view state.
type ViewConfig struct {
	// DefaultView is "timeline" or "list".
	DefaultView string `yaml:"default_view" json:"default_view"`
	Use24Hour   bool   `yaml:"use_24_hour" json:"use_24_hour"`
	// ShowAllDay toggles the all-day group in the timeline view.
	ShowAllDay bool `yaml:"show_all_day" json:"show_all_day"`
}

// CaptureConfig controls headless PNG capture of the card.
type CaptureConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	URL     string `yaml:"url" json:"url"`
	Output  string `yaml:"output" json:"output"`
	Width   int    `yaml:"width" json:"width"`
	Height  int    `yaml:"height" json:"height"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the Web UI and API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is an optional IANA zone used to resolve "now" and ICS wall
	// clock times. Empty means the process local zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	LogLevel  string `yaml:"log_level" json:"log_level"`
	LogFormat string `yaml:"log_format" json:"log_format"`

	// RefreshCron is a cron-style schedule string (e.g. "*/15 * * * *")
	// used for cache refresh and capture.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	Layout LayoutConfig `yaml:"layout" json:"layout"`
	View   ViewConfig   `yaml:"view" json:"view"`

	// ScheduleFile is an optional YAML schedule file.
	ScheduleFile string `yaml:"schedule_file" json:"schedule_file"`

	// Database is an optional sqlite path for the local event store.
	Database string `yaml:"database" json:"database"`

	// CacheDir holds the ICS HTTP cache.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// ICS is the list of subscribed ICS sources.
	ICS []ICSConfig `yaml:"ics" json:"ics"`

	Capture CaptureConfig `yaml:"capture" json:"capture"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      DefaultListen,
		LogLevel:    "info",
		LogFormat:   "console",
		RefreshCron: DefaultRefresh,
		Layout: LayoutConfig{
			HourHeight:    DefaultHourHeight,
			OverlapPolicy: DefaultOverlapPolicy,
		},
		View: ViewConfig{
			DefaultView: "timeline",
			ShowAllDay:  true,
		},
		CacheDir: DefaultCacheDir,
		ICS:      []ICSConfig{},
		Capture: CaptureConfig{
			URL:    DefaultCaptureURL,
			Output: DefaultCaptureOutput,
			Width:  DefaultCaptureWidth,
			Height: DefaultCaptureHeight,
		},
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		c.LogFormat = "console"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = DefaultRefresh
	}

	if c.Layout.HourHeight <= 0 {
		c.Layout.HourHeight = DefaultHourHeight
	}
	switch c.Layout.OverlapPolicy {
	case "cascade", "adjacent":
	default:
		// Unknown value; fall back to cascade.
		c.Layout.OverlapPolicy = DefaultOverlapPolicy
	}
	if c.Layout.OverlapStep < 0 {
		c.Layout.OverlapStep = 0
	}

	switch c.View.DefaultView {
	case "timeline", "list":
	default:
		c.View.DefaultView = "timeline"
	}

	if c.CacheDir == "" {
		c.CacheDir = DefaultCacheDir
	}
	if c.ICS == nil {
		c.ICS = []ICSConfig{}
	}

	if c.Capture.URL == "" {
		c.Capture.URL = DefaultCaptureURL
	}
	if c.Capture.Output == "" {
		c.Capture.Output = DefaultCaptureOutput
	}
	if c.Capture.Width <= 0 {
		c.Capture.Width = DefaultCaptureWidth
	}
	if c.Capture.Height <= 0 {
		c.Capture.Height = DefaultCaptureHeight
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	// Start from defaults so that keys missing from the file keep their
	// default (notably view.show_all_day).
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return cfg, nil
}

// Save writes the given configuration to the specified path atomically
// (temp file + rename) with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".daycard-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
