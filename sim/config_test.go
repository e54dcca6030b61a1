package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 16, cfg.Grid.CitySize)
	assert.Equal(t, "default", cfg.Dispatch.Method)
}

func TestConfig_Validate_RoundsOddCitySizeUp(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Grid.CitySize = 15
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 16, cfg.Grid.CitySize)
}

func TestConfig_Validate_ClampsTinyCitySize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Grid.CitySize = 0
	require.NoError(t, cfg.Validate())
	assert.GreaterOrEqual(t, cfg.Grid.CitySize, 2)
}

func TestConfig_Validate_RejectsNegativeVehicleCount(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VehicleCount = -1
	err := cfg.Validate()
	require.Error(t, err)
	var cerr *ConfigError
	assert.ErrorAs(t, err, &cerr)
}

func TestConfig_Validate_RejectsNegativeBaseDemand(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseDemand = -0.1
	require.Error(t, cfg.Validate())
}

func TestConfig_Validate_RejectsUnrecognizedDispatchMethod(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dispatch.Method = "not_a_method"
	require.Error(t, cfg.Validate())
}

func TestConfig_Validate_RejectsUnrecognizedEquilibrationMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Economics.Equilibration = "not_a_mode"
	require.Error(t, cfg.Validate())
}

func TestConfig_Validate_RejectsZeroWindowLength(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Windows.ResultsWindow = 0
	require.Error(t, cfg.Validate())
}

func TestConfig_TargetState_MirrorsValidatedFields(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dispatch.Method = "forward_dispatch"
	cfg.Economics.Equilibration = "supply"
	require.NoError(t, cfg.Validate())

	ts, err := cfg.TargetState()
	require.NoError(t, err)
	assert.Equal(t, DispatchForward, ts.DispatchMethod)
	assert.Equal(t, EquilibrationSupply, ts.Equilibration)
	assert.Equal(t, cfg.VehicleCount, ts.VehicleCount)
	assert.Equal(t, cfg.Economics.Price, ts.Price)
}

func TestLoadConfig_OverlaysOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlBody := "vehicle_count: 42\ndispatch:\n  dispatch_method: random\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.VehicleCount)
	assert.Equal(t, "random", cfg.Dispatch.Method)
	// Fields not present in the file keep their DefaultConfig values.
	assert.Equal(t, 16, cfg.Grid.CitySize)
	assert.Equal(t, 1.0, cfg.Economics.Price)
}

func TestLoadConfig_RejectsUnknownField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not_a_real_field: 1\n"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
