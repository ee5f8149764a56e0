package server

import (
	"net/http"
	"time"
)

// ReplayPolicy selects how the hub catches up late-joining clients.
type ReplayPolicy string

const (
	// ReplaySnapshot sends one canonical current-state frame, rendered at
	// subscribe time.
	ReplaySnapshot ReplayPolicy = "snapshot"

	// ReplayHistory replays a fixed-size FIFO ring of recent messages.
	ReplayHistory ReplayPolicy = "history"
)

// Config holds configuration for the server.
type Config struct {
	// Address is the listen address. Default: ":8080".
	Address string

	// ReplayMode selects the hub's replay policy. Default: ReplaySnapshot.
	ReplayMode ReplayPolicy

	// HistorySize is the replay ring capacity under ReplayHistory.
	// Default: 100.
	HistorySize int

	// SubscriberBuffer is the per-connection outbound buffer in messages.
	// Default: 100.
	SubscriberBuffer int

	// LagLimit is the number of consecutive lag events after which a slow
	// connection is torn down. Default: 5.
	LagLimit int

	// IdleTimeout terminates a connection with no inbound activity.
	// Default: 300 seconds.
	IdleTimeout time.Duration

	// WriteTimeout is the per-message socket write deadline.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// MaxMessageSize is the largest accepted inbound WebSocket message.
	// Default: 64KB.
	MaxMessageSize int64

	// ReadBufferSize and WriteBufferSize size the WebSocket buffers.
	// Default: 4096 each.
	ReadBufferSize  int
	WriteBufferSize int

	// DriverInterval is the periodic driver's tick. Negative disables the
	// driver. Default: 100ms.
	DriverInterval time.Duration

	// DriverAutoStep makes the driver advance the simulation each tick
	// instead of emitting decorative pixels. Default: false.
	DriverAutoStep bool

	// StaticDir serves static files from this directory when non-empty.
	StaticDir string

	// ShutdownTimeout bounds graceful HTTP shutdown. Default: 10 seconds.
	ShutdownTimeout time.Duration

	// CheckOrigin overrides the WebSocket origin check. Default: allow all
	// (the canvas is a public toy; there is no authenticated state to
	// protect).
	CheckOrigin func(r *http.Request) bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Address:          ":8080",
		ReplayMode:       ReplaySnapshot,
		HistorySize:      100,
		SubscriberBuffer: 100,
		LagLimit:         5,
		IdleTimeout:      300 * time.Second,
		WriteTimeout:     10 * time.Second,
		MaxMessageSize:   64 * 1024,
		ReadBufferSize:   4096,
		WriteBufferSize:  4096,
		DriverInterval:   100 * time.Millisecond,
		ShutdownTimeout:  10 * time.Second,
		CheckOrigin:      func(*http.Request) bool { return true },
	}
}

// withDefaults fills unset fields in from the defaults.
func (c *Config) withDefaults() *Config {
	if c == nil {
		return DefaultConfig()
	}
	defaults := DefaultConfig()
	if c.Address == "" {
		c.Address = defaults.Address
	}
	if c.ReplayMode == "" {
		c.ReplayMode = defaults.ReplayMode
	}
	if c.HistorySize <= 0 {
		c.HistorySize = defaults.HistorySize
	}
	if c.SubscriberBuffer <= 0 {
		c.SubscriberBuffer = defaults.SubscriberBuffer
	}
	if c.LagLimit <= 0 {
		c.LagLimit = defaults.LagLimit
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = defaults.IdleTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = defaults.WriteTimeout
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = defaults.MaxMessageSize
	}
	if c.ReadBufferSize <= 0 {
		c.ReadBufferSize = defaults.ReadBufferSize
	}
	if c.WriteBufferSize <= 0 {
		c.WriteBufferSize = defaults.WriteBufferSize
	}
	if c.DriverInterval == 0 {
		c.DriverInterval = defaults.DriverInterval
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if c.CheckOrigin == nil {
		c.CheckOrigin = defaults.CheckOrigin
	}
	return c
}
