package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"cull/internal/errors"

	"gopkg.in/yaml.v3"
)

// Collision strategies for a file that already exists in the bad folder
const (
	CollisionOverwrite = "overwrite"
	CollisionRename    = "rename"
	CollisionSkip      = "skip"
)

// ImagesConfig controls which files are loaded for triage
type ImagesConfig struct {
	Extensions []string `yaml:"extensions"` // Allow-list, matched case-insensitively
}

// TriageConfig controls what mark-bad and remove-raw move
type TriageConfig struct {
	SidecarExtensions []string `yaml:"sidecar_extensions"` // Moved by mark-bad
	RawExtensions     []string `yaml:"raw_extensions"`     // Moved by remove-raw
	BadFolder         string   `yaml:"bad_folder"`         // Subfolder name inside the triaged folder
	Collision         string   `yaml:"collision"`          // overwrite, rename or skip
	DryRun            bool     `yaml:"dry_run"`            // Log moves instead of performing them
}

// LoaderConfig controls the parallel decode at startup
type LoaderConfig struct {
	Workers int `yaml:"workers"` // 0 means one per CPU
}

// DisplayConfig describes the preview area. Width and Height cap the decoded
// preview size and set the initial window size; the window itself stays
// resizable and the image is scaled to whatever area it gets.
type DisplayConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Reserve    int  `yaml:"reserve"` // Vertical pixels left free for the dock and buttons
	Fullscreen bool `yaml:"fullscreen"`
	AutoOrient bool `yaml:"auto_orient"` // Apply EXIF orientation to previews
}

// PreviewConfig holds the quick-look command; the image path is appended
type PreviewConfig struct {
	Command []string `yaml:"command"`
}

// WatchConfig controls the folder watcher
type WatchConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LogConfig controls log output
type LogConfig struct {
	Debug bool `yaml:"debug"`
	JSON  bool `yaml:"json"`
}

// Config represents the application configuration structure.
type Config struct {
	Images  ImagesConfig  `yaml:"images"`
	Triage  TriageConfig  `yaml:"triage"`
	Loader  LoaderConfig  `yaml:"loader"`
	Display DisplayConfig `yaml:"display"`
	Preview PreviewConfig `yaml:"preview"`
	Watch   WatchConfig   `yaml:"watch"`
	Log     LogConfig     `yaml:"log"`
}

// DefaultPath returns ~/.config/cull/config.yaml
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "cull", "config.yaml"), nil
}

// LoadConfig loads configuration from the default location
// (~/.config/cull/config.yaml).
func LoadConfig() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFile(path)
}

// LoadConfigFile loads configuration from a specific file path.
// If the file doesn't exist, returns default configuration.
func LoadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Keys absent from the file keep their defaults
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError("error parsing config file", path, errors.InvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns the default configuration.
func defaultConfig() *Config {
	cfg := &Config{}

	cfg.Images.Extensions = []string{"jpg"}

	cfg.Triage.SidecarExtensions = []string{"JPG", "ARW"}
	cfg.Triage.RawExtensions = []string{"ARW"}
	cfg.Triage.BadFolder = "bad"
	cfg.Triage.Collision = CollisionOverwrite // same as a plain rename
	cfg.Triage.DryRun = false

	cfg.Loader.Workers = 0

	cfg.Display.Width = 1920
	cfg.Display.Height = 1080
	cfg.Display.Reserve = 150
	cfg.Display.Fullscreen = true
	cfg.Display.AutoOrient = true

	cfg.Preview.Command = DefaultPreviewCommand()

	cfg.Watch.Enabled = true

	return cfg
}

// New creates a new configuration instance with default values.
func New() *Config {
	return defaultConfig()
}

// DefaultPreviewCommand returns the platform quick-look command, or nil when
// the platform has none.
func DefaultPreviewCommand() []string {
	if runtime.GOOS == "darwin" {
		return []string{"qlmanage", "-p"}
	}
	return nil
}

// SaveConfig saves the configuration to the specified file.
// It creates parent directories if they don't exist.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides settings from CULL_* environment variables. Empty
// variables are treated as unset.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv("CULL_DEBUG"); ok && v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return errors.NewConfigError("invalid value", "CULL_DEBUG", errors.InvalidConfig, err)
		}
		c.Log.Debug = debug
	}
	if v, ok := os.LookupEnv("CULL_WORKERS"); ok && v != "" {
		workers, err := strconv.Atoi(v)
		if err != nil {
			return errors.NewConfigError("invalid value", "CULL_WORKERS", errors.InvalidConfig, err)
		}
		c.Loader.Workers = workers
	}
	if v, ok := os.LookupEnv("CULL_BAD_FOLDER"); ok && v != "" {
		c.Triage.BadFolder = v
	}
	return nil
}

// Validate checks if the configuration is valid.
// Returns error if any settings are invalid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrInvalidConfig
	}

	if len(c.Images.Extensions) == 0 {
		return invalid("images.extensions", "at least one extension is required")
	}
	if err := validateExtensions("images.extensions", c.Images.Extensions); err != nil {
		return err
	}
	if err := validateExtensions("triage.sidecar_extensions", c.Triage.SidecarExtensions); err != nil {
		return err
	}
	if err := validateExtensions("triage.raw_extensions", c.Triage.RawExtensions); err != nil {
		return err
	}

	bad := c.Triage.BadFolder
	if bad == "" || bad == "." || bad == ".." || filepath.Base(bad) != bad {
		return invalid("triage.bad_folder", fmt.Sprintf("must be a plain folder name, got %q", bad))
	}

	validCollisions := map[string]bool{CollisionOverwrite: true, CollisionRename: true, CollisionSkip: true}
	if !validCollisions[c.Triage.Collision] {
		return invalid("triage.collision", fmt.Sprintf("unknown strategy %q", c.Triage.Collision))
	}

	if c.Loader.Workers < 0 {
		return invalid("loader.workers", "must be >= 0")
	}

	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		return invalid("display", "width and height must be positive")
	}
	if c.Display.Reserve < 0 || c.Display.Reserve >= c.Display.Height {
		return invalid("display.reserve", "must be between 0 and the display height")
	}

	return nil
}

// Workers returns the decode concurrency, resolving 0 to the CPU count
func (c *Config) Workers() int {
	if c.Loader.Workers > 0 {
		return c.Loader.Workers
	}
	return runtime.NumCPU()
}

// PreviewBounds returns the largest size a preview is decoded at
func (c *Config) PreviewBounds() (int, int) {
	return c.Display.Width, c.Display.Height - c.Display.Reserve
}

// BadDir returns the bad folder inside dir
func (c *Config) BadDir(dir string) string {
	return filepath.Join(dir, c.Triage.BadFolder)
}

// NormalizeExtensions trims dots and blanks from a comma separated list
func NormalizeExtensions(list []string) []string {
	var out []string
	for _, item := range list {
		for _, ext := range strings.Split(item, ",") {
			ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
			if ext != "" {
				out = append(out, ext)
			}
		}
	}
	return out
}

func validateExtensions(param string, exts []string) error {
	for _, ext := range exts {
		if ext == "" {
			return invalid(param, "empty extension")
		}
		for _, r := range ext {
			if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
				return invalid(param, fmt.Sprintf("extension %q must be alphanumeric", ext))
			}
		}
	}
	return nil
}

func invalid(param, reason string) error {
	return errors.NewConfigError("invalid configuration", param, errors.InvalidConfig, errors.New(reason))
}
