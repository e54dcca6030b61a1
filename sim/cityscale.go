package sim

// CityScaleMeasures reports a subset of Measures converted from
// block-native units into real-world units, following
// original_source's RideHailSimulationResults measure conversions
// (simulation_results.py): wait/ride time in minutes, income/surplus
// rates per hour.
type CityScaleMeasures struct {
	MeanWaitMinutes    float64
	MeanRideMinutes    float64
	PlatformIncome     float64 // per hour
	VehicleGrossIncome float64 // per hour
	VehicleNetIncome   float64 // per hour, gross minus per-km operating cost
	VehicleSurplus     float64 // per hour
}

// ComputeCityScaleMeasures converts m's block-native quantities using
// cfg's speed and block-duration parameters. Callers must check
// cfg.Enabled first; the conversion factors divide by MinutesPerBlock
// and are meaningless (and may divide by zero) when it is unset.
func ComputeCityScaleMeasures(m Measures, cfg CityScaleConfig) CityScaleMeasures {
	kmPerBlock := cfg.MeanVehicleSpeed * cfg.MinutesPerBlock / 60

	perHour := func(perBlock float64) float64 { return perBlock * 60 / cfg.MinutesPerBlock }

	opsCostPerHour := perHour(cfg.PerKmCost * kmPerBlock)
	grossPerHour := perHour(m.VehicleGrossIncome)

	return CityScaleMeasures{
		MeanWaitMinutes:    m.MeanWaitTime * cfg.MinutesPerBlock,
		MeanRideMinutes:    m.MeanRideTime * cfg.MinutesPerBlock,
		PlatformIncome:     perHour(m.PlatformIncome),
		VehicleGrossIncome: grossPerHour,
		VehicleNetIncome:   grossPerHour - opsCostPerHour,
		VehicleSurplus:     perHour(m.VehicleSurplus),
	}
}
