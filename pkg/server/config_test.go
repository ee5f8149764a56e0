package server

import (
	"testing"
	"time"
)

func TestWithDefaultsFillsUnsetFields(t *testing.T) {
	cfg := (&Config{}).withDefaults()

	if cfg.Address != ":8080" {
		t.Errorf("Address = %q, want :8080", cfg.Address)
	}
	if cfg.ReplayMode != ReplaySnapshot {
		t.Errorf("ReplayMode = %q, want %q", cfg.ReplayMode, ReplaySnapshot)
	}
	if cfg.HistorySize != 100 || cfg.SubscriberBuffer != 100 {
		t.Errorf("buffers = %d/%d, want 100/100", cfg.HistorySize, cfg.SubscriberBuffer)
	}
	if cfg.LagLimit != 5 {
		t.Errorf("LagLimit = %d, want 5", cfg.LagLimit)
	}
	if cfg.IdleTimeout != 300*time.Second {
		t.Errorf("IdleTimeout = %v, want 300s", cfg.IdleTimeout)
	}
	if cfg.DriverInterval != 100*time.Millisecond {
		t.Errorf("DriverInterval = %v, want 100ms", cfg.DriverInterval)
	}
	if cfg.CheckOrigin == nil {
		t.Error("CheckOrigin is nil")
	}
}

func TestWithDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := (&Config{
		Address:        ":9090",
		ReplayMode:     ReplayHistory,
		LagLimit:       2,
		DriverInterval: -1,
	}).withDefaults()

	if cfg.Address != ":9090" {
		t.Errorf("Address = %q, want :9090", cfg.Address)
	}
	if cfg.ReplayMode != ReplayHistory {
		t.Errorf("ReplayMode = %q, want %q", cfg.ReplayMode, ReplayHistory)
	}
	if cfg.LagLimit != 2 {
		t.Errorf("LagLimit = %d, want 2", cfg.LagLimit)
	}
	// Negative disables the driver and must survive defaulting.
	if cfg.DriverInterval != -1 {
		t.Errorf("DriverInterval = %v, want -1", cfg.DriverInterval)
	}
}

func TestWithDefaultsNil(t *testing.T) {
	var cfg *Config
	got := cfg.withDefaults()
	if got == nil || got.Address != ":8080" {
		t.Fatalf("nil config not defaulted: %+v", got)
	}
}
