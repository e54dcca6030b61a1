package sim

import "math/rand"

// VehiclePhase is the vehicle lifecycle state: idle, en route to a
// pickup, or occupied with a rider.
type VehiclePhase int

const (
	P1 VehiclePhase = iota // idle
	P2                     // en-route to pickup
	P3                     // with rider, en-route to dropoff
)

func (p VehiclePhase) String() string {
	switch p {
	case P1:
		return "P1"
	case P2:
		return "P2"
	case P3:
		return "P3"
	default:
		return "UNKNOWN"
	}
}

// Vehicle is a single agent in the fleet.
type Vehicle struct {
	Index     int
	Location  Location
	Direction Direction
	Phase     VehiclePhase

	// TripIndex is the index of the assigned trip, nil in P1.
	TripIndex *int

	PickupLocation  Location
	DropoffLocation Location

	// ForwardDispatchTripIndex is a second trip queued while the
	// vehicle is still P3 with its current trip; nil unless forward
	// dispatch is enabled and in use.
	ForwardDispatchTripIndex *int

	// PickupCountdown is the remaining dwell blocks during boarding.
	PickupCountdown int
}

// NewVehicle creates a vehicle at a random grid location with a
// random heading, idle.
func NewVehicle(index int, city *City, rng *rand.Rand) *Vehicle {
	return &Vehicle{
		Index:     index,
		Location:  city.SampleLocation(false, rng),
		Direction: AllDirections[rng.Intn(len(AllDirections))],
		Phase:     P1,
	}
}

// UpdateLocation steps the vehicle one unit along its current
// direction, modulo the city size. A P1 vehicle that isn't configured
// to wander does not move; a vehicle already sitting at the
// destination for its current phase (pickup for P2, dropoff for P3)
// does not move — arrival is handled as a phase transition by the
// stepper, not by UpdateLocation.
func (v *Vehicle) UpdateLocation(city *City, idleVehiclesMoving bool) {
	switch v.Phase {
	case P1:
		if !idleVehiclesMoving {
			return
		}
	case P2:
		if v.Location == v.PickupLocation {
			return
		}
	case P3:
		if v.Location == v.DropoffLocation {
			return
		}
	}
	dx, dy := v.Direction.Vector()
	v.Location = Location{X: city.wrap(v.Location.X + dx), Y: city.wrap(v.Location.Y + dy)}
}

// UpdateDirection steers the vehicle: P2 toward its pickup, P3 toward
// its dropoff, P1 either wanders (if configured) or holds heading. A
// candidate heading that would be a U-turn relative to the current
// direction is resampled — this only applies to P1's random wander;
// UpdateLocation runs before UpdateDirection each block (see
// simulator.go), so a vehicle is always committed to one further step
// in its current heading at the top of the block.
func (v *Vehicle) UpdateDirection(city *City, idleVehiclesMoving bool, rng *rand.Rand) {
	switch v.Phase {
	case P2:
		if dir, ok := city.NavigateTowards(v.Location, v.PickupLocation, rng); ok {
			v.Direction = dir
		}
	case P3:
		if dir, ok := city.NavigateTowards(v.Location, v.DropoffLocation, rng); ok {
			v.Direction = dir
		}
	case P1:
		if !idleVehiclesMoving {
			return
		}
		candidate := AllDirections[rng.Intn(len(AllDirections))]
		for opposite(v.Direction, candidate) {
			candidate = AllDirections[rng.Intn(len(AllDirections))]
		}
		v.Direction = candidate
	}
}

// AssignTrip transitions a P1 vehicle to P2, caching the trip's
// pickup and dropoff locations and recording the trip index.
func (v *Vehicle) AssignTrip(trip *Trip, pickupDwellBlocks int) {
	idx := trip.Index
	v.TripIndex = &idx
	v.PickupLocation = trip.Origin
	v.DropoffLocation = trip.Destination
	v.Phase = P2
	v.PickupCountdown = pickupDwellBlocks
}

// QueueForwardDispatch records a second trip to start as soon as the
// vehicle's current P3 trip completes. The vehicle remains P3.
func (v *Vehicle) QueueForwardDispatch(trip *Trip) {
	idx := trip.Index
	v.ForwardDispatchTripIndex = &idx
	trip.ForwardDispatched = true
}

// ArriveAtPickup transitions P2 -> P3 once the optional dwell has
// elapsed. Returns true when the transition to P3 actually occurs
// this call (false while still dwelling).
func (v *Vehicle) ArriveAtPickup() bool {
	if v.PickupCountdown > 0 {
		v.PickupCountdown--
		return false
	}
	v.Phase = P3
	return true
}

// ArriveAtDropoff transitions P3 -> P1, unless a forward-dispatched
// trip is queued, in which case it transitions directly to P2 of that
// trip. Returns the forward-dispatched trip index, or nil.
func (v *Vehicle) ArriveAtDropoff() (nextTripIndex *int) {
	if v.ForwardDispatchTripIndex != nil {
		idx := *v.ForwardDispatchTripIndex
		v.TripIndex = &idx
		v.ForwardDispatchTripIndex = nil
		v.Phase = P2
		return &idx
	}
	v.TripIndex = nil
	v.Phase = P1
	return nil
}
