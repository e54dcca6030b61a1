package sim

import "time"

// Version is the fixed version string echoed in every RunSummary,
// mirroring original_source's results.py top-level "version" field.
const Version = "0.1.0"

// RunSummary is the core's end-of-run report: the final block's state
// plus metadata describing the run itself. Config echoes the
// validated configuration the run was built from; it does not reflect
// TargetState changes made by impulses or equilibration during the
// run (the final fleet size is in Final.VehicleCount).
type RunSummary struct {
	Version     string
	GeneratedAt time.Time
	Duration    time.Duration
	Config      *Config
	Final       BlockResult
	CityScale   *CityScaleMeasures `json:",omitempty"`
}

// NewRunSummary builds the end-of-run summary for a simulator that has
// already been run to completion. startedAt should be captured
// immediately before Simulator.Run.
func NewRunSummary(cfg *Config, s *Simulator, startedAt time.Time) RunSummary {
	var final BlockResult
	if len(s.Blocks) > 0 {
		final = s.Blocks[len(s.Blocks)-1]
	}

	summary := RunSummary{
		Version:     Version,
		GeneratedAt: time.Now(),
		Duration:    time.Since(startedAt),
		Config:      cfg,
		Final:       final,
	}
	if cfg.CityScale.Enabled {
		cs := ComputeCityScaleMeasures(final.Measures, cfg.CityScale)
		summary.CityScale = &cs
	}
	return summary
}
