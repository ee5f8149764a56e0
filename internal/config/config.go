package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gridcast-dev/gridcast/pkg/server"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "gridcast.json"

	// DefaultAddress is the default listen address.
	DefaultAddress = ":8080"

	// DefaultCanvasSize is the default canvas edge length in cells.
	DefaultCanvasSize = 100
)

// ErrNotFound is returned when no configuration file exists at the
// requested path. Callers typically fall back to defaults.
var ErrNotFound = errors.New("config: gridcast.json not found")

// Config represents the complete gridcast.json configuration.
type Config struct {
	// Address is the listen address, e.g. ":8080".
	Address string `json:"address,omitempty"`

	// Canvas configures the simulation grid.
	Canvas CanvasConfig `json:"canvas,omitempty"`

	// Replay configures how late-joining clients are caught up.
	Replay ReplayConfig `json:"replay,omitempty"`

	// Connection configures per-client socket behavior.
	Connection ConnectionConfig `json:"connection,omitempty"`

	// Driver configures the periodic background publisher.
	Driver DriverConfig `json:"driver,omitempty"`

	// StaticDir serves a static frontend from this directory when set.
	StaticDir string `json:"static_dir,omitempty"`

	// Export configures the optional PNG export backend.
	Export ExportConfig `json:"export,omitempty"`

	// configPath stores the path the config was loaded from.
	configPath string
}

// CanvasConfig configures the simulation grid.
type CanvasConfig struct {
	// Width and Height are the grid dimensions in cells.
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	// Workers is the simulation step parallelism. Zero means one worker
	// per CPU.
	Workers int `json:"workers,omitempty"`

	// Seed fixes the random source for reproducible runs. Zero seeds from
	// the system.
	Seed uint64 `json:"seed,omitempty"`
}

// ReplayConfig configures catch-up for late-joining clients.
type ReplayConfig struct {
	// Mode is "snapshot" (one current-state frame) or "history" (a ring of
	// recent messages).
	Mode string `json:"mode,omitempty"`

	// HistorySize is the replay ring capacity in history mode.
	HistorySize int `json:"history_size,omitempty"`
}

// ConnectionConfig configures per-client socket behavior.
type ConnectionConfig struct {
	// SubscriberBuffer is the per-connection outbound buffer in messages.
	SubscriberBuffer int `json:"subscriber_buffer,omitempty"`

	// LagLimit is the consecutive lag events tolerated before the
	// connection is dropped.
	LagLimit int `json:"lag_limit,omitempty"`

	// IdleTimeoutSeconds closes a connection with no inbound traffic.
	IdleTimeoutSeconds int `json:"idle_timeout_seconds,omitempty"`

	// WriteTimeoutSeconds bounds each socket write.
	WriteTimeoutSeconds int `json:"write_timeout_seconds,omitempty"`

	// MaxMessageBytes caps inbound WebSocket messages.
	MaxMessageBytes int64 `json:"max_message_bytes,omitempty"`
}

// DriverConfig configures the periodic background publisher.
type DriverConfig struct {
	// IntervalMillis is the tick interval. Negative disables the driver.
	IntervalMillis int `json:"interval_ms,omitempty"`

	// AutoStep advances the simulation each tick instead of emitting
	// decorative pixels.
	AutoStep bool `json:"auto_step,omitempty"`
}

// ExportConfig configures the optional snapshot export backend.
type ExportConfig struct {
	// Backend is "disk", "s3", or empty to disable export.
	Backend string `json:"backend,omitempty"`

	// Dir is the target directory for the disk backend.
	Dir string `json:"dir,omitempty"`

	// Bucket, Prefix, and Region address objects for the s3 backend.
	Bucket string `json:"bucket,omitempty"`
	Prefix string `json:"prefix,omitempty"`
	Region string `json:"region,omitempty"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Address: DefaultAddress,
		Canvas: CanvasConfig{
			Width:  DefaultCanvasSize,
			Height: DefaultCanvasSize,
		},
		Replay: ReplayConfig{
			Mode:        string(server.ReplaySnapshot),
			HistorySize: 100,
		},
		Connection: ConnectionConfig{
			SubscriberBuffer:    100,
			LagLimit:            5,
			IdleTimeoutSeconds:  300,
			WriteTimeoutSeconds: 10,
			MaxMessageBytes:     64 * 1024,
		},
		Driver: DriverConfig{
			IntervalMillis: 100,
		},
	}
}

// Load reads gridcast.json from the given directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.configPath = path
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	c.configPath = path
	return nil
}

// Path returns the path the config was loaded from.
func (c *Config) Path() string { return c.configPath }

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	defaults := New()
	if c.Address == "" {
		c.Address = defaults.Address
	}
	if c.Canvas.Width <= 0 {
		c.Canvas.Width = defaults.Canvas.Width
	}
	if c.Canvas.Height <= 0 {
		c.Canvas.Height = defaults.Canvas.Height
	}
	if c.Replay.Mode == "" {
		c.Replay.Mode = defaults.Replay.Mode
	}
	if c.Replay.HistorySize <= 0 {
		c.Replay.HistorySize = defaults.Replay.HistorySize
	}
	if c.Connection.SubscriberBuffer <= 0 {
		c.Connection.SubscriberBuffer = defaults.Connection.SubscriberBuffer
	}
	if c.Connection.LagLimit <= 0 {
		c.Connection.LagLimit = defaults.Connection.LagLimit
	}
	if c.Connection.IdleTimeoutSeconds <= 0 {
		c.Connection.IdleTimeoutSeconds = defaults.Connection.IdleTimeoutSeconds
	}
	if c.Connection.WriteTimeoutSeconds <= 0 {
		c.Connection.WriteTimeoutSeconds = defaults.Connection.WriteTimeoutSeconds
	}
	if c.Connection.MaxMessageBytes <= 0 {
		c.Connection.MaxMessageBytes = defaults.Connection.MaxMessageBytes
	}
	if c.Driver.IntervalMillis == 0 {
		c.Driver.IntervalMillis = defaults.Driver.IntervalMillis
	}
}

// Validate checks the configuration for values no default can repair.
func (c *Config) Validate() error {
	switch server.ReplayPolicy(c.Replay.Mode) {
	case server.ReplaySnapshot, server.ReplayHistory:
	default:
		return fmt.Errorf("config: unknown replay mode %q", c.Replay.Mode)
	}
	switch c.Export.Backend {
	case "", "disk", "s3":
	default:
		return fmt.Errorf("config: unknown export backend %q", c.Export.Backend)
	}
	if c.Export.Backend == "disk" && c.Export.Dir == "" {
		return errors.New("config: disk export requires export.dir")
	}
	if c.Export.Backend == "s3" && c.Export.Bucket == "" {
		return errors.New("config: s3 export requires export.bucket")
	}
	return nil
}

// ServerConfig converts the file representation into the server's
// runtime configuration.
func (c *Config) ServerConfig() *server.Config {
	return &server.Config{
		Address:          c.Address,
		ReplayMode:       server.ReplayPolicy(c.Replay.Mode),
		HistorySize:      c.Replay.HistorySize,
		SubscriberBuffer: c.Connection.SubscriberBuffer,
		LagLimit:         c.Connection.LagLimit,
		IdleTimeout:      time.Duration(c.Connection.IdleTimeoutSeconds) * time.Second,
		WriteTimeout:     time.Duration(c.Connection.WriteTimeoutSeconds) * time.Second,
		MaxMessageSize:   c.Connection.MaxMessageBytes,
		DriverInterval:   time.Duration(c.Driver.IntervalMillis) * time.Millisecond,
		DriverAutoStep:   c.Driver.AutoStep,
		StaticDir:        c.StaticDir,
	}
}
