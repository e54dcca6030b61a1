package sim

import "fmt"

// ConfigError reports a configuration value that is invalid on its
// face (unknown enum value, out-of-range number). Configuration
// errors are fatal before the first block runs; they are never raised
// mid-run.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}
