package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTPListenAddr != ":8080" {
		t.Errorf("HTTPListenAddr = %q, want %q", cfg.HTTPListenAddr, ":8080")
	}
	if cfg.SIMDailyLimit != 20 {
		t.Errorf("SIMDailyLimit = %d, want 20", cfg.SIMDailyLimit)
	}
	if cfg.SimulatedDelay != 1500*time.Millisecond {
		t.Errorf("SimulatedDelay = %v, want 1.5s", cfg.SimulatedDelay)
	}
	if cfg.DispatchSlot != 1 {
		t.Errorf("DispatchSlot = %d, want 1", cfg.DispatchSlot)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SIM_DAILY_LIMIT", "5")
	t.Setenv("DISPATCH_SIM_SLOT", "2")
	t.Setenv("HTTP_LISTEN_ADDR", ":9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SIMDailyLimit != 5 {
		t.Errorf("SIMDailyLimit = %d, want 5", cfg.SIMDailyLimit)
	}
	if cfg.DispatchSlot != 2 {
		t.Errorf("DispatchSlot = %d, want 2", cfg.DispatchSlot)
	}
	if cfg.HTTPListenAddr != ":9090" {
		t.Errorf("HTTPListenAddr = %q, want %q", cfg.HTTPListenAddr, ":9090")
	}
}

func TestLoadRejectsBadSlot(t *testing.T) {
	t.Setenv("DISPATCH_SIM_SLOT", "3")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid slot")
	}
}
