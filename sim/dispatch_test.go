package sim

import (
	"math/rand"
	"testing"
)

func TestParseDispatchMethod(t *testing.T) {
	tests := map[string]DispatchMethod{
		"":                 DispatchDefault,
		"default":          DispatchDefault,
		"forward_dispatch": DispatchForward,
		"p1_legacy":        DispatchP1Legacy,
		"random":           DispatchRandom,
	}
	for s, want := range tests {
		got, err := ParseDispatchMethod(s)
		if err != nil {
			t.Fatalf("ParseDispatchMethod(%q) returned error: %v", s, err)
		}
		if got != want {
			t.Errorf("ParseDispatchMethod(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestParseDispatchMethod_Unrecognized(t *testing.T) {
	_, err := ParseDispatchMethod("nonexistent")
	if err == nil {
		t.Fatal("expected an error for an unrecognized dispatch method")
	}
	if _, ok := err.(*ConfigError); !ok {
		t.Fatalf("error type = %T, want *ConfigError", err)
	}
}

// placeOneIdleVehicleAtOrigin builds a city with a single idle vehicle
// sitting exactly at the trip's origin, so dispatch has exactly one
// unambiguous candidate to assign regardless of policy.
func placeOneIdleVehicleAtOrigin(c *City, trip *Trip) *Vehicle {
	return &Vehicle{Index: 0, Location: trip.Origin, Direction: North, Phase: P1}
}

func TestDispatcher_SparseAssignsNearestVehicle(t *testing.T) {
	c := NewCity(10, 0, false)
	rng := rand.New(rand.NewSource(10))
	trip := NewTrip(0, c, 0, 0, rng)
	trip.UpdatePhase(Unassigned)

	near := placeOneIdleVehicleAtOrigin(c, trip)
	far := &Vehicle{Index: 1, Location: c.Wrap(Location{X: trip.Origin.X + 5, Y: trip.Origin.Y + 5}), Direction: North, Phase: P1}
	vehicles := []*Vehicle{far, near}

	d := &Dispatcher{Method: DispatchDefault}
	d.Dispatch(c, vehicles, []*Trip{trip}, 0, rng)

	if near.Phase != P2 {
		t.Errorf("nearest vehicle phase = %v, want P2", near.Phase)
	}
	if far.Phase != P1 {
		t.Errorf("far vehicle phase = %v, want to remain P1", far.Phase)
	}
	if trip.Phase != Waiting {
		t.Errorf("trip phase = %v, want Waiting", trip.Phase)
	}
}

func TestDispatcher_DenseAssignsAtHighDensity(t *testing.T) {
	// A tiny city with every cell occupied by a vehicle pushes density
	// above the threshold and exercises the grid-bucket path.
	c := NewCity(4, 0, false)
	rng := rand.New(rand.NewSource(11))
	trip := NewTrip(0, c, 0, 0, rng)
	trip.UpdatePhase(Unassigned)

	var vehicles []*Vehicle
	idx := 0
	for x := 0; x < c.CitySize; x++ {
		for y := 0; y < c.CitySize; y++ {
			vehicles = append(vehicles, &Vehicle{Index: idx, Location: Location{X: x, Y: y}, Direction: North, Phase: P1})
			idx++
		}
	}

	d := &Dispatcher{Method: DispatchDefault}
	d.Dispatch(c, vehicles, []*Trip{trip}, 0, rng)

	if trip.Phase != Waiting {
		t.Fatalf("trip phase = %v, want Waiting", trip.Phase)
	}
	assigned := 0
	for _, v := range vehicles {
		if v.Phase == P2 {
			assigned++
		}
	}
	if assigned != 1 {
		t.Fatalf("assigned vehicle count = %d, want 1", assigned)
	}
}

func TestDispatcher_P1LegacyAssignsNearestVehicle(t *testing.T) {
	c := NewCity(10, 0, false)
	rng := rand.New(rand.NewSource(12))
	trip := NewTrip(0, c, 0, 0, rng)
	trip.UpdatePhase(Unassigned)
	near := placeOneIdleVehicleAtOrigin(c, trip)

	d := &Dispatcher{Method: DispatchP1Legacy}
	d.Dispatch(c, []*Vehicle{near}, []*Trip{trip}, 0, rng)

	if near.Phase != P2 {
		t.Errorf("Phase = %v, want P2", near.Phase)
	}
}

func TestDispatcher_RandomAssignsSomeIdleVehicle(t *testing.T) {
	c := NewCity(10, 0, false)
	rng := rand.New(rand.NewSource(13))
	trip := NewTrip(0, c, 0, 0, rng)
	trip.UpdatePhase(Unassigned)
	v0 := &Vehicle{Index: 0, Location: Location{X: 1, Y: 1}, Direction: North, Phase: P1}
	v1 := &Vehicle{Index: 1, Location: Location{X: 2, Y: 2}, Direction: North, Phase: P1}

	d := &Dispatcher{Method: DispatchRandom}
	d.Dispatch(c, []*Vehicle{v0, v1}, []*Trip{trip}, 0, rng)

	assigned := 0
	for _, v := range []*Vehicle{v0, v1} {
		if v.Phase == P2 {
			assigned++
		}
	}
	if assigned != 1 {
		t.Fatalf("assigned vehicle count = %d, want exactly 1", assigned)
	}
	if trip.Phase != Waiting {
		t.Errorf("trip phase = %v, want Waiting", trip.Phase)
	}
}

func TestDispatcher_ForwardDispatchQueuesOnBusyP3(t *testing.T) {
	c := NewCity(20, 0, false)
	rng := rand.New(rand.NewSource(14))
	trip := NewTrip(0, c, 0, 0, rng)
	trip.UpdatePhase(Unassigned)

	// A single P3 vehicle one step from its own dropoff, which coincides
	// with the new trip's origin: forward dispatch should queue the
	// trip on it rather than leave it unassigned, since there is no P1
	// vehicle available at all.
	dropoff := trip.Origin
	start := c.Wrap(Location{X: dropoff.X + 1, Y: dropoff.Y})
	v := &Vehicle{Index: 0, Location: start, Direction: East, Phase: P3, DropoffLocation: dropoff}

	d := &Dispatcher{Method: DispatchForward, ForwardDispatchBias: 0}
	d.Dispatch(c, []*Vehicle{v}, []*Trip{trip}, 0, rng)

	if v.ForwardDispatchTripIndex == nil || *v.ForwardDispatchTripIndex != trip.Index {
		t.Fatalf("ForwardDispatchTripIndex = %v, want pointer to %d", v.ForwardDispatchTripIndex, trip.Index)
	}
	if v.Phase != P3 {
		t.Errorf("vehicle phase = %v, want to remain P3 while finishing its current trip", v.Phase)
	}
	if !trip.ForwardDispatched {
		t.Error("trip.ForwardDispatched should be true")
	}
	if trip.Phase != Waiting {
		t.Errorf("trip phase = %v, want Waiting", trip.Phase)
	}
}

func TestDispatcher_ForwardDispatchPrefersP1OverBusyP3(t *testing.T) {
	c := NewCity(20, 0, false)
	rng := rand.New(rand.NewSource(15))
	trip := NewTrip(0, c, 0, 0, rng)
	trip.UpdatePhase(Unassigned)

	idle := placeOneIdleVehicleAtOrigin(c, trip)
	// The busy vehicle's forward-dispatch distance is 0 (it is already at
	// its dropoff, which is the new origin), and a zero distance is never
	// a candidate, so only the idle vehicle can be chosen.
	busy := &Vehicle{Index: 1, Location: trip.Origin, Direction: East, Phase: P3, DropoffLocation: trip.Origin}

	d := &Dispatcher{Method: DispatchForward, ForwardDispatchBias: 0}
	d.Dispatch(c, []*Vehicle{busy, idle}, []*Trip{trip}, 0, rng)

	if idle.Phase != P2 {
		t.Errorf("idle vehicle phase = %v, want P2 (dispatched directly)", idle.Phase)
	}
	if busy.ForwardDispatchTripIndex != nil {
		t.Error("busy P3 vehicle with zero dispatch distance should not receive the forward-dispatched trip")
	}
}

func TestDispatcher_NoCandidatesLeavesTripUnassigned(t *testing.T) {
	c := NewCity(10, 0, false)
	rng := rand.New(rand.NewSource(16))
	trip := NewTrip(0, c, 0, 0, rng)
	trip.UpdatePhase(Unassigned)

	d := &Dispatcher{Method: DispatchDefault}
	d.Dispatch(c, nil, []*Trip{trip}, 0, rng)

	if trip.Phase != Unassigned {
		t.Errorf("trip phase = %v, want to remain Unassigned with no vehicles", trip.Phase)
	}
}
