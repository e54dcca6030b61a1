package sim

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// GridConfig groups the toroidal city grid parameters.
type GridConfig struct {
	CitySize                  int     `yaml:"city_size"`
	Inhomogeneity             float64 `yaml:"inhomogeneity"`
	InhomogeneousDestinations bool    `yaml:"inhomogeneous_destinations"`
}

// WindowsConfig groups the HistoryStore's three rolling-window
// lengths.
type WindowsConfig struct {
	SmoothingWindow       int `yaml:"smoothing_window"`
	ResultsWindow         int `yaml:"results_window"`
	EquilibrationInterval int `yaml:"equilibration_interval"`
}

// DispatchConfig groups vehicle-to-trip matching parameters.
type DispatchConfig struct {
	Method              string  `yaml:"dispatch_method"`
	ForwardDispatchBias float64 `yaml:"forward_dispatch_bias"`
	PickupDwellBlocks   int     `yaml:"pickup_dwell_blocks"`
}

// EconomicsConfig groups price, commission and equilibration
// parameters.
type EconomicsConfig struct {
	Price              float64 `yaml:"price"`
	PlatformCommission float64 `yaml:"platform_commission"`
	ReservationWage    float64 `yaml:"reservation_wage"`
	DemandElasticity   float64 `yaml:"demand_elasticity"`
	Equilibrate        bool    `yaml:"equilibrate"`
	Equilibration      string  `yaml:"equilibration"`
}

// CityScaleConfig converts abstract block/grid units into real-world
// units for reporting, grounded in original_source's
// RideHailSimulationResults.get_current_config and
// RideHailSimulation.convert_units. Disabled by default: the core's
// native unit is the block, and city-scale conversion is an optional
// reporting layer on top of it, not a change to any simulation
// mechanic.
type CityScaleConfig struct {
	Enabled          bool    `yaml:"enabled"`
	MeanVehicleSpeed float64 `yaml:"mean_vehicle_speed"` // km/hour
	MinutesPerBlock  float64 `yaml:"minutes_per_block"`
	PerKmPrice       float64 `yaml:"per_km_price"`
	PerMinutePrice   float64 `yaml:"per_minute_price"`
	PerKmCost        float64 `yaml:"per_km_cost"`
}

// Config is the full, validated configuration for one simulation run.
type Config struct {
	Grid      GridConfig      `yaml:"grid"`
	Windows   WindowsConfig   `yaml:"windows"`
	Dispatch  DispatchConfig  `yaml:"dispatch"`
	Economics EconomicsConfig `yaml:"economics"`
	CityScale CityScaleConfig `yaml:"city_scale"`

	VehicleCount       int     `yaml:"vehicle_count"`
	BaseDemand         float64 `yaml:"base_demand"`
	MinTripDistance    int     `yaml:"min_trip_distance"`
	MaxTripDistance    int     `yaml:"max_trip_distance"`
	IdleVehiclesMoving bool    `yaml:"idle_vehicles_moving"`

	Seed    int64 `yaml:"seed"`
	Horizon int64 `yaml:"horizon"`
}

// LoadConfig reads and parses a YAML configuration file. Uses strict
// parsing: unrecognized keys are rejected, the same policy the
// teacher's workload spec loader uses, since a typo'd field silently
// falling back to its zero value is worse than a load-time error.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns a Config with the reference defaults used when
// no YAML file or flag overrides a field.
func DefaultConfig() *Config {
	return &Config{
		Grid: GridConfig{CitySize: 16},
		Windows: WindowsConfig{
			SmoothingWindow:       20,
			ResultsWindow:         100,
			EquilibrationInterval: 20,
		},
		Dispatch: DispatchConfig{Method: "default"},
		Economics: EconomicsConfig{
			Price:              1.0,
			PlatformCommission: 0.25,
			ReservationWage:    0.21,
			DemandElasticity:   1.0,
			Equilibration:      "none",
		},
		CityScale: CityScaleConfig{
			MeanVehicleSpeed: 30,
			MinutesPerBlock:  1,
			PerKmPrice:       0.80,
			PerMinutePrice:   0.20,
			PerKmCost:        0.30,
		},
		VehicleCount:       8,
		BaseDemand:         0.2,
		MinTripDistance:    0,
		MaxTripDistance:    0,
		IdleVehiclesMoving: true,
		Horizon:            1000,
	}
}

// Validate checks a Config for internal consistency, silently
// correcting an odd city_size (the toroidal grid and its
// central-zone inhomogeneity sampling both assume an even side) and
// rejecting anything else that can't be made sense of: configuration
// errors are fatal before the first block runs.
func (c *Config) Validate() error {
	if c.Grid.CitySize < 2 {
		c.Grid.CitySize = 2
	}
	if c.Grid.CitySize%2 != 0 {
		c.Grid.CitySize++
	}
	if c.VehicleCount < 0 {
		return &ConfigError{Field: "vehicle_count", Message: "must not be negative"}
	}
	if c.BaseDemand < 0 {
		return &ConfigError{Field: "base_demand", Message: "must not be negative"}
	}
	if _, err := ParseDispatchMethod(c.Dispatch.Method); err != nil {
		return err
	}
	if _, err := ParseEquilibrationMode(c.Economics.Equilibration); err != nil {
		return err
	}
	if c.Windows.SmoothingWindow < 1 || c.Windows.ResultsWindow < 1 || c.Windows.EquilibrationInterval < 1 {
		return &ConfigError{Field: "windows", Message: "all window lengths must be at least 1"}
	}
	if c.CityScale.Enabled && (c.CityScale.MeanVehicleSpeed <= 0 || c.CityScale.MinutesPerBlock <= 0) {
		return &ConfigError{Field: "city_scale", Message: "mean_vehicle_speed and minutes_per_block must be positive when city_scale is enabled"}
	}
	return nil
}

// TargetState builds the initial TargetState from a validated Config.
func (c *Config) TargetState() (*TargetState, error) {
	method, err := ParseDispatchMethod(c.Dispatch.Method)
	if err != nil {
		return nil, err
	}
	mode, err := ParseEquilibrationMode(c.Economics.Equilibration)
	if err != nil {
		return nil, err
	}
	return &TargetState{
		CitySize:                  c.Grid.CitySize,
		Inhomogeneity:             c.Grid.Inhomogeneity,
		InhomogeneousDestinations: c.Grid.InhomogeneousDestinations,
		VehicleCount:              c.VehicleCount,
		BaseDemand:                c.BaseDemand,
		MinTripDistance:           c.MinTripDistance,
		MaxTripDistance:           c.MaxTripDistance,
		IdleVehiclesMoving:        c.IdleVehiclesMoving,
		DispatchMethod:            method,
		ForwardDispatchBias:       c.Dispatch.ForwardDispatchBias,
		Price:                     c.Economics.Price,
		PlatformCommission:        c.Economics.PlatformCommission,
		ReservationWage:           c.Economics.ReservationWage,
		DemandElasticity:          c.Economics.DemandElasticity,
		Equilibrate:               c.Economics.Equilibrate,
		Equilibration:             mode,
		EquilibrationInterval:     c.Windows.EquilibrationInterval,
	}, nil
}
