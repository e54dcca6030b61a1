package sim

import "math"

// equilibrationDamping scales how aggressively supply equilibration
// reacts to driver utility, and equilibrationMaxFraction caps a single
// interval's vehicle-count change to a fraction of the current fleet,
// matching original_source's `_equilibrate_supply` damped-proportional
// controller rather than a fixed step: a large utility imbalance on a
// small fleet should not overshoot into oscillation.
const (
	equilibrationDamping     = 0.4
	equilibrationMaxFraction = 0.1
)

// Equilibrate adjusts ts in place, once per equilibration interval, to
// drive DriverUtility toward zero. Both SUPPLY and PRICE modes run the
// same damped fleet-size adjustment (original_source's
// `_equilibrate_supply` is called for either mode); under PRICE,
// request_rate is additionally recomputed from the current price via
// Demand, so a price impulse still reaches demand even though supply
// is what actually moves. Equilibration is a no-op unless
// ts.Equilibrate is set and ts.Equilibration names a mode. fractionP3
// is the occupied-vehicle fraction over the just-elapsed equilibration
// window.
func Equilibrate(ts *TargetState, fractionP3 float64) {
	if !ts.Equilibrate {
		return
	}
	utility := DriverUtility(ts.Price, ts.PlatformCommission, fractionP3, ts.ReservationWage)

	switch ts.Equilibration {
	case EquilibrationSupply, EquilibrationPrice:
		equilibrateSupply(ts, utility)
	}
}

// equilibrateSupply grows or shrinks the fleet by a damped fraction of
// driver utility, capped at equilibrationMaxFraction of the current
// fleet size per interval, with a floor of one vehicle.
func equilibrateSupply(ts *TargetState, utility float64) {
	increment := int(equilibrationDamping * float64(ts.VehicleCount) * utility)
	limit := max(int(equilibrationMaxFraction*float64(ts.VehicleCount)), 1)
	switch {
	case increment > 0:
		ts.VehicleCount += min(increment, limit)
	case increment < 0:
		ts.VehicleCount = max(1, ts.VehicleCount-min(-increment, limit))
	}
}

// Demand computes the trip request rate from base demand and the
// constant-elasticity price response, matching
// original_source's `_demand`: request_rate = base_demand *
// price^(-elasticity). equilibrated is true only while PRICE
// equilibration is active; otherwise demand tracks base demand
// directly regardless of price.
func Demand(baseDemand, price, elasticity float64, equilibrated bool) float64 {
	if !equilibrated || price <= 0 {
		return baseDemand
	}
	return baseDemand * math.Pow(price, -elasticity)
}
