package sim

import "math/rand"

// TripPhase is the trip lifecycle state.
type TripPhase int

const (
	Inactive TripPhase = iota
	Unassigned
	Waiting
	Riding
	Completed
	Cancelled
)

func (p TripPhase) String() string {
	switch p {
	case Inactive:
		return "INACTIVE"
	case Unassigned:
		return "UNASSIGNED"
	case Waiting:
		return "WAITING"
	case Riding:
		return "RIDING"
	case Completed:
		return "COMPLETED"
	case Cancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// Trip is a single rider request: an origin, a destination, and a
// small phase-time-accounting state machine.
type Trip struct {
	Index       int
	Origin      Location
	Destination Location
	Distance    int

	Phase     TripPhase
	PhaseTime map[TripPhase]int

	ForwardDispatched bool
}

// NewTrip creates a trip with a sampled origin and destination. If
// 0 < maxTripDistance < city.CitySize, the destination is drawn as
// origin +/- uniform(minTripDistance, maxTripDistance) per axis,
// retrying until distinct from the origin; otherwise the destination
// is sampled independently (retrying until distinct).
func NewTrip(index int, city *City, minTripDistance, maxTripDistance int, rng *rand.Rand) *Trip {
	origin := city.SampleLocation(false, rng)
	destination := sampleDestination(city, origin, minTripDistance, maxTripDistance, rng)
	t := &Trip{
		Index:       index,
		Origin:      origin,
		Destination: destination,
		Distance:    city.Distance(origin, destination, 0),
		Phase:       Inactive,
		PhaseTime:   make(map[TripPhase]int, 6),
	}
	return t
}

func sampleDestination(city *City, origin Location, minTripDistance, maxTripDistance int, rng *rand.Rand) Location {
	bounded := maxTripDistance > 0 && maxTripDistance < city.CitySize
	for {
		var dest Location
		if bounded {
			dx := minTripDistance + rng.Intn(maxTripDistance-minTripDistance+1)
			dy := minTripDistance + rng.Intn(maxTripDistance-minTripDistance+1)
			if rng.Intn(2) == 0 {
				dx = -dx
			}
			if rng.Intn(2) == 0 {
				dy = -dy
			}
			dest = city.Wrap(Location{X: origin.X + dx, Y: origin.Y + dy})
		} else {
			dest = city.SampleLocation(true, rng)
		}
		if dest != origin {
			return dest
		}
	}
}

// UpdatePhase advances the trip to an explicit phase, per the
// lifecycle: UNASSIGNED -> WAITING -> RIDING -> COMPLETED, or
// UNASSIGNED -> CANCELLED.
func (t *Trip) UpdatePhase(to TripPhase) {
	t.Phase = to
}

// AccruePhaseTime records one block spent in the trip's current phase;
// called once per block by the stepper's history-push step.
func (t *Trip) AccruePhaseTime() {
	t.PhaseTime[t.Phase]++
}
