package sim

import "math/rand"

// Location is an integer grid coordinate, always held in [0, CitySize).
type Location struct {
	X, Y int
}

// City is the toroidal street grid: coordinate arithmetic plus
// request/destination sampling under uniform or zone-biased
// distributions.
type City struct {
	CitySize                  int
	Inhomogeneity             float64
	InhomogeneousDestinations bool
}

// NewCity constructs a City. citySize must already be even and positive;
// callers validate and correct city_size at config time.
func NewCity(citySize int, inhomogeneity float64, inhomogeneousDestinations bool) *City {
	return &City{
		CitySize:                  citySize,
		Inhomogeneity:             inhomogeneity,
		InhomogeneousDestinations: inhomogeneousDestinations,
	}
}

// wrap reduces v into [0, CitySize) under modular arithmetic.
func (c *City) wrap(v int) int {
	v %= c.CitySize
	if v < 0 {
		v += c.CitySize
	}
	return v
}

// Wrap re-wraps a location into the grid, used after a resize of CitySize.
func (c *City) Wrap(loc Location) Location {
	return Location{X: c.wrap(loc.X), Y: c.wrap(loc.Y)}
}

// SampleLocation picks a location uniformly in [0,N)^2, unless
// Inhomogeneity biases origins (or, when InhomogeneousDestinations is
// set, destinations too) toward the central N/2-square zone.
func (c *City) SampleLocation(isDestination bool, rng *rand.Rand) Location {
	loc := Location{X: rng.Intn(c.CitySize), Y: rng.Intn(c.CitySize)}
	if c.Inhomogeneity <= 0 {
		return loc
	}
	if isDestination && !c.InhomogeneousDestinations {
		return loc
	}
	if rng.Float64() >= c.Inhomogeneity {
		return loc
	}
	zone := c.CitySize / 2
	lo := (c.CitySize - zone) / 2
	loc.X = lo + rng.Intn(zone)
	loc.Y = lo + rng.Intn(zone)
	return loc
}

// Distance returns the toroidal Manhattan distance between a and b,
// early-exiting once the partial sum exceeds threshold (pass a
// non-positive threshold, e.g. the zero value, to disable early exit).
func (c *City) Distance(a, b Location, threshold int) int {
	dx := abs(a.X - b.X)
	dx = min(dx, c.CitySize-dx)
	if threshold > 0 && dx > threshold {
		return dx
	}
	dy := abs(a.Y - b.Y)
	dy = min(dy, c.CitySize-dy)
	return dx + dy
}

// DispatchDistance is the distance used for vehicle-to-trip matching:
// travel distance plus one step, to account for the vehicle's
// commitment to its current heading for the rest of this block
// (update_location runs before update_direction — see vehicle.go).
//
// For a P1 vehicle the value is 1 + distance from its next
// intersection to target, except that a vehicle already sitting at
// target is given distance exactly 1 (the one block of unavoidable
// dispatch overhead), not the 2 the general formula would otherwise
// produce.
//
// For a P3 vehicle considered as a forward-dispatch candidate
// (tripDestination non-nil), the value is distance(loc, tripDestination)
// + distance(tripDestination, target): the vehicle must first finish
// its current trip before it can start the new one.
func (c *City) DispatchDistance(loc Location, dir Direction, target Location, phase VehiclePhase, tripDestination *Location) int {
	if phase == P3 && tripDestination != nil {
		return c.Distance(loc, *tripDestination, 0) + c.Distance(*tripDestination, target, 0)
	}
	if loc == target {
		return 1
	}
	dx, dy := dir.Vector()
	next := Location{X: c.wrap(loc.X + dx), Y: c.wrap(loc.Y + dy)}
	return 1 + c.Distance(next, target, 0)
}

// NavigateTowards picks a direction from loc toward target, at random
// among axis directions that reduce toroidal distance. If loc and
// target share a row (column), only the other axis is considered; if
// loc equals target, ok is false and the caller should hold its
// current heading.
func (c *City) NavigateTowards(loc, target Location, rng *rand.Rand) (dir Direction, ok bool) {
	var candidates []Direction
	half := c.CitySize / 2

	dx := loc.X - target.X
	switch {
	case dx == 0:
	case (dx > 0 && dx < half) || (dx < 0 && dx <= -half):
		candidates = append(candidates, West)
	default:
		candidates = append(candidates, East)
	}

	dy := loc.Y - target.Y
	switch {
	case dy == 0:
	case (dy > 0 && dy < half) || (dy < 0 && dy <= -half):
		candidates = append(candidates, South)
	default:
		candidates = append(candidates, North)
	}

	if len(candidates) == 0 {
		return North, false
	}
	return candidates[rng.Intn(len(candidates))], true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
