package sim

import (
	"testing"
	"time"
)

func TestNewRunSummary_EchoesVersionAndFinalBlock(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Horizon = 5
	cfg.VehicleCount = 2

	s, err := NewSimulator(cfg, NewSimulationKey(1))
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	started := time.Now()
	s.Run()

	summary := NewRunSummary(cfg, s, started)
	if summary.Version != Version {
		t.Errorf("Version = %q, want %q", summary.Version, Version)
	}
	if summary.Final.Block != 5 {
		t.Errorf("Final.Block = %d, want 5", summary.Final.Block)
	}
	if summary.Duration < 0 {
		t.Error("Duration should not be negative")
	}
	if summary.CityScale != nil {
		t.Error("CityScale should be nil when city_scale is not enabled")
	}
}

func TestNewRunSummary_IncludesCityScaleWhenEnabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Horizon = 5
	cfg.VehicleCount = 2
	cfg.CityScale.Enabled = true
	cfg.CityScale.MeanVehicleSpeed = 30
	cfg.CityScale.MinutesPerBlock = 2

	s, err := NewSimulator(cfg, NewSimulationKey(1))
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	s.Run()

	summary := NewRunSummary(cfg, s, time.Now())
	if summary.CityScale == nil {
		t.Fatal("CityScale should be populated when city_scale is enabled")
	}
}
