package sim

import (
	"math"
	"testing"
)

func TestSimulationKey_Creation(t *testing.T) {
	tests := []struct {
		name string
		seed int64
	}{
		{"positive seed", 42},
		{"zero seed", 0},
		{"negative seed", -1},
		{"max int64", math.MaxInt64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := NewSimulationKey(tt.seed)
			if int64(key) != tt.seed {
				t.Errorf("NewSimulationKey(%d) = %d, want %d", tt.seed, key, tt.seed)
			}
		})
	}
}

func TestPartitionedRNG_DeterministicDerivation(t *testing.T) {
	// Given two PartitionedRNGs built from the same key
	rng1 := NewPartitionedRNG(NewSimulationKey(42))
	rng2 := NewPartitionedRNG(NewSimulationKey(42))

	// When drawing from the same subsystem on each
	var vals1, vals2 [3]float64
	for i := range vals1 {
		vals1[i] = rng1.ForSubsystem(SubsystemCity).Float64()
	}
	for i := range vals2 {
		vals2[i] = rng2.ForSubsystem(SubsystemCity).Float64()
	}

	// Then the draw sequences are identical
	if vals1 != vals2 {
		t.Errorf("got %v and %v, want identical draw sequences", vals1, vals2)
	}
}

func TestPartitionedRNG_SubsystemIsolation(t *testing.T) {
	// Given one PartitionedRNG
	rng := NewPartitionedRNG(NewSimulationKey(7))

	// When drawing from two different subsystems
	a := rng.ForSubsystem(SubsystemCity).Float64()
	b := rng.ForSubsystem(SubsystemVehicle).Float64()

	// Then they draw from independent streams (extremely unlikely to collide)
	if a == b {
		t.Errorf("subsystem streams collided: both produced %v", a)
	}
}

func TestPartitionedRNG_RepeatedCallsReturnSameStream(t *testing.T) {
	// Given a PartitionedRNG that has already drawn from a subsystem
	rng := NewPartitionedRNG(NewSimulationKey(1))
	first := rng.ForSubsystem(SubsystemDispatch)
	v1 := first.Float64()

	// When ForSubsystem is called again with the same name
	second := rng.ForSubsystem(SubsystemDispatch)
	v2 := second.Float64()

	// Then it continues the same stream rather than resetting it
	if v1 == v2 {
		t.Errorf("expected continuation of the same stream, got repeated value %v", v1)
	}
}

func TestPartitionedRNG_Key(t *testing.T) {
	key := NewSimulationKey(99)
	rng := NewPartitionedRNG(key)
	if rng.Key() != key {
		t.Errorf("Key() = %v, want %v", rng.Key(), key)
	}
}
