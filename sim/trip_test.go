package sim

import (
	"math/rand"
	"testing"
)

func TestNewTrip_OriginAndDestinationDiffer(t *testing.T) {
	c := NewCity(10, 0, false)
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 50; i++ {
		trip := NewTrip(i, c, 0, 0, rng)
		if trip.Origin == trip.Destination {
			t.Fatalf("trip %d has identical origin and destination %v", i, trip.Origin)
		}
		if trip.Phase != Inactive {
			t.Fatalf("trip %d phase = %v, want Inactive", i, trip.Phase)
		}
	}
}

func TestNewTrip_BoundedDistanceRespectsRange(t *testing.T) {
	c := NewCity(40, 0, false)
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 50; i++ {
		trip := NewTrip(i, c, 3, 6, rng)
		if trip.Distance < 3 || trip.Distance > 12 {
			// min/max apply per axis, so Manhattan distance can be up to 2x maxTripDistance
			t.Fatalf("trip %d distance = %d, want within [3,12]", i, trip.Distance)
		}
	}
}

func TestTrip_UpdatePhaseAndAccrual(t *testing.T) {
	c := NewCity(10, 0, false)
	rng := rand.New(rand.NewSource(5))
	trip := NewTrip(0, c, 0, 0, rng)

	trip.UpdatePhase(Unassigned)
	trip.AccruePhaseTime()
	trip.AccruePhaseTime()

	if trip.Phase != Unassigned {
		t.Fatalf("phase = %v, want Unassigned", trip.Phase)
	}
	if trip.PhaseTime[Unassigned] != 2 {
		t.Fatalf("PhaseTime[Unassigned] = %d, want 2", trip.PhaseTime[Unassigned])
	}
}

func TestTripPhase_String(t *testing.T) {
	tests := map[TripPhase]string{
		Inactive:   "INACTIVE",
		Unassigned: "UNASSIGNED",
		Waiting:    "WAITING",
		Riding:     "RIDING",
		Completed:  "COMPLETED",
		Cancelled:  "CANCELLED",
	}
	for phase, want := range tests {
		if got := phase.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", phase, got, want)
		}
	}
}
