package sim

import "math/rand"

// DispatchMethod selects the vehicle-to-trip matching policy.
type DispatchMethod int

const (
	// DispatchDefault is adaptive nearest-vehicle matching: sparse
	// vehicle-loop below a density threshold, dense grid-bucket
	// expansion above it.
	DispatchDefault DispatchMethod = iota
	DispatchForward
	DispatchP1Legacy
	DispatchRandom
)

// ParseDispatchMethod maps a config string to a DispatchMethod. An
// unrecognized method is a configuration error: fatal before any
// block runs, never a per-block failure.
func ParseDispatchMethod(s string) (DispatchMethod, error) {
	switch s {
	case "", "default":
		return DispatchDefault, nil
	case "forward_dispatch":
		return DispatchForward, nil
	case "p1_legacy":
		return DispatchP1Legacy, nil
	case "random":
		return DispatchRandom, nil
	default:
		return 0, &ConfigError{Field: "dispatch_method", Message: "unrecognized dispatch method " + s}
	}
}

// denseDensityThreshold is the dispatchable-vehicle density above
// which the default policy switches from the sparse vehicle-loop to
// the dense grid-bucket algorithm.
const denseDensityThreshold = 0.9

// Dispatcher assigns at most one vehicle per open trip per block.
type Dispatcher struct {
	Method              DispatchMethod
	ForwardDispatchBias float64
}

// Dispatch matches dispatchable vehicles to unassigned trips in
// place, mutating vehicle and trip phases. unassignedTrips is shuffled
// before iterating, so tie-breaking among trips is itself
// order-independent across runs with different vehicle/trip
// populations but the same seed.
func (d *Dispatcher) Dispatch(city *City, vehicles []*Vehicle, unassignedTrips []*Trip, pickupDwellBlocks int, rng *rand.Rand) {
	rng.Shuffle(len(unassignedTrips), func(i, j int) {
		unassignedTrips[i], unassignedTrips[j] = unassignedTrips[j], unassignedTrips[i]
	})

	switch d.Method {
	case DispatchForward:
		d.dispatchForwardAll(city, vehicles, unassignedTrips, pickupDwellBlocks, rng)
	case DispatchP1Legacy:
		d.dispatchP1LegacyAll(city, vehicles, unassignedTrips, pickupDwellBlocks)
	case DispatchRandom:
		d.dispatchRandomAll(vehicles, unassignedTrips, pickupDwellBlocks, rng)
	default:
		d.dispatchDefaultAll(city, vehicles, unassignedTrips, pickupDwellBlocks, rng)
	}
}

func p1Vehicles(vehicles []*Vehicle) []*Vehicle {
	out := make([]*Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if v.Phase == P1 {
			out = append(out, v)
		}
	}
	return out
}

func forwardDispatchableVehicles(vehicles []*Vehicle) []*Vehicle {
	out := make([]*Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if v.Phase == P1 || (v.Phase == P3 && v.ForwardDispatchTripIndex == nil) {
			out = append(out, v)
		}
	}
	return out
}

func (d *Dispatcher) dispatchDefaultAll(city *City, vehicles []*Vehicle, trips []*Trip, pickupDwellBlocks int, rng *rand.Rand) {
	candidates := p1Vehicles(vehicles)
	rng.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })

	density := float64(len(candidates)) / float64(city.CitySize*city.CitySize)
	if density < denseDensityThreshold {
		remaining := candidates
		for _, trip := range trips {
			remaining = dispatchSparse(trip, city, remaining, pickupDwellBlocks)
		}
		return
	}

	buckets := bucketByLocation(candidates)
	dispatchable := toSet(candidates)
	setDenseVehicleIndex(vehicles)
	defer clearDenseVehicleIndex()
	for _, trip := range trips {
		dispatchDense(trip, city, buckets, dispatchable, pickupDwellBlocks, rng)
	}
}

// dispatchSparse scans the remaining candidate list linearly, keeping
// the minimum dispatch distance and exiting early once that distance
// reaches 1. It returns the candidate
// list with the dispatched vehicle (if any) removed.
func dispatchSparse(trip *Trip, city *City, candidates []*Vehicle, pickupDwellBlocks int) []*Vehicle {
	if len(candidates) == 0 {
		return candidates
	}
	currentMin := city.CitySize * 100
	var chosen *Vehicle
	chosenIdx := -1
	for i, v := range candidates {
		dist := city.DispatchDistance(v.Location, v.Direction, trip.Origin, v.Phase, nil)
		if dist > 0 && dist < currentMin {
			currentMin = dist
			chosen = v
			chosenIdx = i
		}
		if dist == 1 {
			break
		}
	}
	if chosen == nil {
		return candidates
	}
	assignP1Vehicle(chosen, trip, pickupDwellBlocks)
	return removeAt(candidates, chosenIdx)
}

func bucketByLocation(vehicles []*Vehicle) map[Location][]int {
	buckets := make(map[Location][]int, len(vehicles))
	for _, v := range vehicles {
		buckets[v.Location] = append(buckets[v.Location], v.Index)
	}
	return buckets
}

func toSet(vehicles []*Vehicle) map[int]bool {
	set := make(map[int]bool, len(vehicles))
	for _, v := range vehicles {
		set[v.Index] = true
	}
	return set
}

func byIndex(vehicles []*Vehicle) map[int]*Vehicle {
	m := make(map[int]*Vehicle, len(vehicles))
	for _, v := range vehicles {
		m[v.Index] = v
	}
	return m
}

// dispatchDense expands a diamond (L1 ball) of grid buckets around the
// trip origin, collecting every dispatchable vehicle at the current
// best distance, and chooses uniformly at random among ties.
func dispatchDense(trip *Trip, city *City, buckets map[Location][]int, dispatchable map[int]bool, pickupDwellBlocks int, rng *rand.Rand) {
	if len(dispatchable) == 0 {
		return
	}
	var candidates []int
	currentMin := city.CitySize * 100

	for distance := 0; distance < city.CitySize; distance++ {
		for xOffset := -distance; xOffset <= distance; xOffset++ {
			yOffset := distance - absInt(xOffset)
			x := mod(trip.Origin.X+xOffset, city.CitySize)
			yLower := mod(trip.Origin.Y-yOffset, city.CitySize)
			yUpper := mod(trip.Origin.Y+yOffset, city.CitySize)
			ys := uniqueInts(yLower, yUpper)
			for _, y := range ys {
				for _, idx := range buckets[Location{X: x, Y: y}] {
					if !dispatchable[idx] {
						continue
					}
					v := denseVehicleIndex[idx]
					dist := city.DispatchDistance(v.Location, v.Direction, trip.Origin, v.Phase, nil)
					if dist > 0 && dist < currentMin {
						currentMin = dist
						candidates = candidates[:0]
					}
					if dist > 0 && dist <= currentMin {
						candidates = append(candidates, idx)
					}
				}
			}
		}
		if currentMin <= distance && len(candidates) > 0 {
			break
		}
	}
	if len(candidates) == 0 {
		return
	}
	chosenIdx := candidates[rng.Intn(len(candidates))]
	chosen := denseVehicleIndex[chosenIdx]
	assignP1Vehicle(chosen, trip, pickupDwellBlocks)
	delete(dispatchable, chosenIdx)
	loc := chosen.Location
	buckets[loc] = removeInt(buckets[loc], chosenIdx)
}

func (d *Dispatcher) dispatchForwardAll(city *City, vehicles []*Vehicle, trips []*Trip, pickupDwellBlocks int, rng *rand.Rand) {
	candidates := forwardDispatchableVehicles(vehicles)
	rng.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
	buckets := bucketByLocation(candidates)
	dispatchable := toSet(candidates)
	setDenseVehicleIndex(vehicles)
	defer clearDenseVehicleIndex()

	for _, trip := range trips {
		d.dispatchForwardOne(trip, city, buckets, dispatchable, pickupDwellBlocks, rng)
	}
}

func (d *Dispatcher) dispatchForwardOne(trip *Trip, city *City, buckets map[Location][]int, dispatchable map[int]bool, pickupDwellBlocks int, rng *rand.Rand) {
	if len(dispatchable) == 0 {
		return
	}
	var candidates []int
	currentMin := city.CitySize * 100

	for distance := 0; distance < city.CitySize; distance++ {
		for xOffset := -distance; xOffset <= distance; xOffset++ {
			yOffset := distance - absInt(xOffset)
			x := mod(trip.Origin.X+xOffset, city.CitySize)
			yLower := mod(trip.Origin.Y-yOffset, city.CitySize)
			yUpper := mod(trip.Origin.Y+yOffset, city.CitySize)
			for _, y := range uniqueInts(yLower, yUpper) {
				for _, idx := range buckets[Location{X: x, Y: y}] {
					if !dispatchable[idx] {
						continue
					}
					v := denseVehicleIndex[idx]
					var tripDest *Location
					if v.Phase == P3 {
						dest := v.DropoffLocation
						tripDest = &dest
					}
					dist := float64(city.DispatchDistance(v.Location, v.Direction, trip.Origin, v.Phase, tripDest))
					if v.Phase == P1 {
						dist += d.ForwardDispatchBias
					}
					if dist > 0 && dist < float64(currentMin) {
						currentMin = int(dist)
						candidates = candidates[:0]
					}
					if dist > 0 && dist <= float64(currentMin) {
						candidates = append(candidates, idx)
					}
				}
			}
		}
		if currentMin <= distance && len(candidates) > 0 {
			break
		}
	}
	if len(candidates) == 0 {
		return
	}
	chosenIdx := candidates[rng.Intn(len(candidates))]
	chosen := denseVehicleIndex[chosenIdx]
	trip.UpdatePhase(Waiting)
	if chosen.Phase == P1 {
		chosen.AssignTrip(trip, pickupDwellBlocks)
	} else {
		chosen.QueueForwardDispatch(trip)
	}
	delete(dispatchable, chosenIdx)
	loc := chosen.Location
	buckets[loc] = removeInt(buckets[loc], chosenIdx)
}

func (d *Dispatcher) dispatchP1LegacyAll(city *City, vehicles []*Vehicle, trips []*Trip, pickupDwellBlocks int) {
	candidates := p1Vehicles(vehicles)
	for _, trip := range trips {
		candidates = dispatchSparse(trip, city, candidates, pickupDwellBlocks)
	}
}

func (d *Dispatcher) dispatchRandomAll(vehicles []*Vehicle, trips []*Trip, pickupDwellBlocks int, rng *rand.Rand) {
	candidates := p1Vehicles(vehicles)
	for _, trip := range trips {
		if len(candidates) == 0 {
			return
		}
		i := rng.Intn(len(candidates))
		assignP1Vehicle(candidates[i], trip, pickupDwellBlocks)
		candidates = removeAt(candidates, i)
	}
}

func assignP1Vehicle(v *Vehicle, trip *Trip, pickupDwellBlocks int) {
	trip.UpdatePhase(Waiting)
	v.AssignTrip(trip, pickupDwellBlocks)
}

// denseVehicleIndex is a per-call lookup table from vehicle index to
// *Vehicle, populated by setDenseVehicleIndex for the duration of one
// dense/forward dispatch pass. The dispatch engine runs single
// threaded, so this scratch table is safe to reuse.
var denseVehicleIndex map[int]*Vehicle

func setDenseVehicleIndex(vehicles []*Vehicle) {
	denseVehicleIndex = byIndex(vehicles)
}

func clearDenseVehicleIndex() {
	denseVehicleIndex = nil
}

func removeAt(vehicles []*Vehicle, i int) []*Vehicle {
	vehicles[i] = vehicles[len(vehicles)-1]
	return vehicles[:len(vehicles)-1]
}

func removeInt(xs []int, v int) []int {
	for i, x := range xs {
		if x == v {
			xs[i] = xs[len(xs)-1]
			return xs[:len(xs)-1]
		}
	}
	return xs
}

func uniqueInts(a, b int) []int {
	if a == b {
		return []int{a}
	}
	return []int{a, b}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func mod(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
