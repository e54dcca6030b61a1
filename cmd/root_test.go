package cmd

import (
	"testing"

	sim "github.com/ridehail-sim/ridehail-sim/sim"
)

func TestApplyFlagOverrides_OnlyChangedFlagsOverrideDefaults(t *testing.T) {
	cfg := sim.DefaultConfig()
	wantCitySize := cfg.Grid.CitySize // unchanged flag: should survive untouched

	if err := runCmd.Flags().Set("vehicle-count", "42"); err != nil {
		t.Fatalf("setting vehicle-count flag: %v", err)
	}
	if err := runCmd.Flags().Set("dispatch-method", "random"); err != nil {
		t.Fatalf("setting dispatch-method flag: %v", err)
	}

	applyFlagOverrides(cfg)

	if cfg.VehicleCount != 42 {
		t.Errorf("VehicleCount = %d, want 42 from explicit flag", cfg.VehicleCount)
	}
	if cfg.Dispatch.Method != "random" {
		t.Errorf("Dispatch.Method = %q, want %q from explicit flag", cfg.Dispatch.Method, "random")
	}
	if cfg.Grid.CitySize != wantCitySize {
		t.Errorf("Grid.CitySize = %d, want untouched default %d", cfg.Grid.CitySize, wantCitySize)
	}
}

func TestLoadConfig_AppliesFlagsOnTopOfDefaults(t *testing.T) {
	configPath = ""
	if err := runCmd.Flags().Set("base-demand", "0.75"); err != nil {
		t.Fatalf("setting base-demand flag: %v", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.BaseDemand != 0.75 {
		t.Errorf("BaseDemand = %v, want 0.75", cfg.BaseDemand)
	}
}

func TestLoadConfig_RejectsInvalidFlagValue(t *testing.T) {
	configPath = ""
	if err := runCmd.Flags().Set("vehicle-count", "-5"); err != nil {
		t.Fatalf("setting vehicle-count flag: %v", err)
	}
	if _, err := loadConfig(); err == nil {
		t.Fatal("expected loadConfig to reject a negative vehicle-count flag override")
	}
	// restore so later tests in this process aren't poisoned
	if err := runCmd.Flags().Set("vehicle-count", "8"); err != nil {
		t.Fatalf("restoring vehicle-count flag: %v", err)
	}
}
