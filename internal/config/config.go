// Package config loads daemon configuration from a YAML file with
// environment overrides, creating defaults on first run.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultHistorySize bounds the history store.
	DefaultHistorySize = 25

	// DefaultPollingInterval is the clipboard sampling period.
	DefaultPollingInterval = 500 * time.Millisecond
)

// Duration wraps time.Duration so YAML configs can use the humane
// "500ms" form.
type Duration time.Duration

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("config: duration must be a string like \"500ms\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds all daemon and client settings.
type Config struct {
	DeviceID   string `yaml:"device_id"`
	DeviceName string `yaml:"device_name"`

	// History store capacity.
	HistorySize int `yaml:"history_size"`

	// Clipboard sampling period.
	PollingInterval Duration `yaml:"polling_interval"`

	// SocketPath is where the command server listens; LockPath is the
	// singleton guard. Both are well-known so clients and a second
	// daemon instance find them without coordination.
	SocketPath string `yaml:"socket_path"`
	LockPath   string `yaml:"lock_path"`

	Log LogConfig `yaml:"log"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// RuntimeDir returns the per-user runtime directory for the socket and
// lock files: XDG_RUNTIME_DIR when set, /tmp otherwise.
func RuntimeDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "clipv")
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("clipv-%d", os.Getuid()))
}

// ConfigDir returns the platform config directory for clipv.
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(base, "dev.clipv"), nil
	default:
		return filepath.Join(base, "clipv"), nil
	}
}

// Default returns a Config with generated identity and well-known
// paths. The device ID is minted once and persisted with the config.
func Default() *Config {
	run := RuntimeDir()
	return &Config{
		DeviceID:        uuid.New().String(),
		DeviceName:      hostname(),
		HistorySize:     DefaultHistorySize,
		PollingInterval: Duration(DefaultPollingInterval),
		SocketPath:      filepath.Join(run, "clipvd.sock"),
		LockPath:        filepath.Join(run, "clipvd.lock"),
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the config at path, or the default location when path is
// empty. A missing file is created from defaults so the first run
// leaves a config the user can edit. Environment variables override
// the file.
func Load(path string) (*Config, error) {
	if path == "" {
		dir, err := ConfigDir()
		if err != nil {
			return nil, fmt.Errorf("config: resolve config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			if err := cfg.Save(path); err != nil {
				return nil, fmt.Errorf("config: create default config: %w", err)
			}
			overrideFromEnv(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	overrideFromEnv(cfg)

	if cfg.HistorySize < 0 {
		return nil, fmt.Errorf("config: history_size must not be negative, got %d", cfg.HistorySize)
	}
	if cfg.PollingInterval <= 0 {
		cfg.PollingInterval = Duration(DefaultPollingInterval)
	}
	return cfg, nil
}

// Save writes the config as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// overrideFromEnv applies CLIPV_* environment overrides.
func overrideFromEnv(cfg *Config) {
	if val := os.Getenv("CLIPV_DEVICE_ID"); val != "" {
		cfg.DeviceID = val
	}
	if val := os.Getenv("CLIPV_DEVICE_NAME"); val != "" {
		cfg.DeviceName = val
	}
	if val := os.Getenv("CLIPV_SOCKET_PATH"); val != "" {
		cfg.SocketPath = val
	}
	if val := os.Getenv("CLIPV_LOCK_PATH"); val != "" {
		cfg.LockPath = val
	}
	if val := os.Getenv("CLIPV_HISTORY_SIZE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.HistorySize = n
		}
	}
	if val := os.Getenv("CLIPV_POLLING_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.PollingInterval = Duration(d)
		}
	}
	if val := os.Getenv("CLIPV_LOG_LEVEL"); val != "" {
		cfg.Log.Level = val
	}
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return name
}
