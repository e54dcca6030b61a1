package sim

import (
	"container/heap"
	"sort"

	"github.com/sirupsen/logrus"
)

// convergenceChains is the number of chains the convergence tracker
// splits each metric's smoothing window into, and convergenceRhatMax
// is the R-hat threshold below which a metric is considered converged
// (1.1 is the threshold the Gelman-Rubin literature treats as "close
// enough").
const (
	convergenceChains  = 4
	convergenceRhatMax = 1.1

	// garbageCollectionInterval matches original_source's
	// GARBAGE_COLLECTION_INTERVAL = 200: completed/cancelled trips are
	// compacted out of the trip list only periodically, not every
	// block, since compaction requires reindexing every vehicle's
	// TripIndex.
	garbageCollectionInterval = 200
)

// EventQueue implements heap.Interface and orders Events by
// Timestamp.
type EventQueue []Event

func (eq EventQueue) Len() int           { return len(eq) }
func (eq EventQueue) Less(i, j int) bool { return eq[i].Timestamp() < eq[j].Timestamp() }
func (eq EventQueue) Swap(i, j int)      { eq[i], eq[j] = eq[j], eq[i] }

func (eq *EventQueue) Push(x any) {
	*eq = append(*eq, x.(Event))
}

func (eq *EventQueue) Pop() any {
	old := *eq
	n := len(old)
	item := old[n-1]
	*eq = old[0 : n-1]
	return item
}

// BlockResult is one block's worth of simulator output: the state
// dictionary describing the core's external interface.
type BlockResult struct {
	Block        int64
	VehicleCount int
	TripCount    int
	Measures     Measures
	Rhat         map[Metric]float64
	Converged    bool
}

// Simulator is the core object: simulation clock, committed state
// (city, fleet, trip book), target state, and the event loop that
// steps them forward one block at a time.
type Simulator struct {
	Clock   int64
	Horizon int64

	EventQueue EventQueue

	Key SimulationKey
	RNG *PartitionedRNG

	City     *City
	Target   *TargetState
	Impulses []*Impulse

	Dispatcher        *Dispatcher
	PickupDwellBlocks int

	Vehicles []*Vehicle
	Trips    []*Trip

	nextVehicleIndex int
	requestCarry     float64
	lastRequestRate  float64

	History     *HistoryStore
	Convergence *ConvergenceTracker

	Blocks []BlockResult
}

// NewSimulator builds a Simulator from a validated Config and a
// reproducibility key: the same Config and Key MUST produce
// bit-for-bit identical Blocks output.
func NewSimulator(cfg *Config, key SimulationKey) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	target, err := cfg.TargetState()
	if err != nil {
		return nil, err
	}

	rng := NewPartitionedRNG(key)
	city := NewCity(target.CitySize, target.Inhomogeneity, target.InhomogeneousDestinations)

	sim := &Simulator{
		Horizon:           cfg.Horizon,
		Key:               key,
		RNG:               rng,
		City:              city,
		Target:            target,
		Dispatcher:        &Dispatcher{Method: target.DispatchMethod, ForwardDispatchBias: target.ForwardDispatchBias},
		PickupDwellBlocks: cfg.Dispatch.PickupDwellBlocks,
		History:           NewHistoryStore(cfg.Windows.SmoothingWindow, cfg.Windows.ResultsWindow, cfg.Windows.EquilibrationInterval),
		Convergence:       NewConvergenceTracker(ConvergenceMetrics, convergenceChains),
	}

	vehicleRng := rng.ForSubsystem(SubsystemVehicle)
	for i := 0; i < target.VehicleCount; i++ {
		sim.Vehicles = append(sim.Vehicles, NewVehicle(sim.nextVehicleIndex, city, vehicleRng))
		sim.nextVehicleIndex++
	}

	sim.Schedule(&BlockEvent{block: 0})
	return sim, nil
}

// AddImpulse schedules a mid-run TargetState change, keeping the
// pending list ordered by block.
func (sim *Simulator) AddImpulse(imp *Impulse) {
	sim.Impulses = append(sim.Impulses, imp)
	sort.Slice(sim.Impulses, func(i, j int) bool { return sim.Impulses[i].Block < sim.Impulses[j].Block })
}

// Schedule pushes an event onto the simulator's event queue.
func (sim *Simulator) Schedule(ev Event) {
	heap.Push(&sim.EventQueue, ev)
}

// Run drives the event loop to completion: every BlockEvent reschedules
// itself, so the loop drains naturally once the horizon is reached.
func (sim *Simulator) Run() {
	for len(sim.EventQueue) > 0 {
		ev := heap.Pop(&sim.EventQueue).(Event)
		sim.Clock = ev.Timestamp()
		ev.Execute(sim)
		if sim.Clock >= sim.Horizon {
			break
		}
	}
	logrus.Infof("[block %06d] simulation complete", sim.Clock)
}

// RunBlock executes one block's pipeline: apply impulses, reconcile
// target state, generate requests, move and arrive vehicles, dispatch,
// cancel stale requests, push history, equilibrate from the
// just-completed interval's stats, garbage collect, and record the
// block's output.
func (sim *Simulator) RunBlock(block int64) {
	sim.applyImpulses(block)
	sim.reconcileTargetState()
	sim.requestTrips()
	sim.updateVehicles()
	sim.dispatchTrips()
	sim.cancelTrips()
	sim.pushHistory()
	sim.equilibrate(block)
	sim.collectGarbage(block)
	sim.recordBlock(block)
}

func (sim *Simulator) applyImpulses(block int64) {
	for len(sim.Impulses) > 0 && int64(sim.Impulses[0].Block) == block {
		sim.Target.Apply(sim.Impulses[0])
		sim.Impulses = sim.Impulses[1:]
	}
}

// reconcileTargetState brings committed state (city size, fleet size,
// dispatch policy) into line with TargetState, which may have just
// changed via an impulse or via equilibration at the end of the
// previous block.
func (sim *Simulator) reconcileTargetState() {
	if sim.City.CitySize != sim.Target.CitySize {
		sim.City.CitySize = sim.Target.CitySize
		for _, v := range sim.Vehicles {
			v.Location = sim.City.Wrap(v.Location)
			v.PickupLocation = sim.City.Wrap(v.PickupLocation)
			v.DropoffLocation = sim.City.Wrap(v.DropoffLocation)
		}
		for _, t := range sim.Trips {
			t.Origin = sim.City.Wrap(t.Origin)
			t.Destination = sim.City.Wrap(t.Destination)
		}
	}
	sim.City.Inhomogeneity = sim.Target.Inhomogeneity
	sim.City.InhomogeneousDestinations = sim.Target.InhomogeneousDestinations

	sim.Dispatcher.Method = sim.Target.DispatchMethod
	sim.Dispatcher.ForwardDispatchBias = sim.Target.ForwardDispatchBias

	diff := sim.Target.VehicleCount - len(sim.Vehicles)
	switch {
	case diff > 0:
		vehicleRng := sim.RNG.ForSubsystem(SubsystemVehicle)
		for i := 0; i < diff; i++ {
			sim.Vehicles = append(sim.Vehicles, NewVehicle(sim.nextVehicleIndex, sim.City, vehicleRng))
			sim.nextVehicleIndex++
		}
	case diff < 0:
		sim.removeIdleVehicles(-diff)
	}
}

// removeIdleVehicles removes up to n idle (P1) vehicles, matching
// original_source's _remove_drivers: only idle vehicles are eligible,
// so the fleet may shrink more slowly than requested when most
// vehicles are occupied.
func (sim *Simulator) removeIdleVehicles(n int) {
	kept := sim.Vehicles[:0]
	removed := 0
	for _, v := range sim.Vehicles {
		if removed < n && v.Phase == P1 {
			removed++
			continue
		}
		kept = append(kept, v)
	}
	sim.Vehicles = kept
}

// updateVehicles moves every vehicle one step and handles pickup and
// dropoff arrivals. UpdateLocation runs before UpdateDirection for
// each vehicle, so a vehicle is always committed to one further step
// along its current heading before it re-steers (see vehicle.go).
func (sim *Simulator) updateVehicles() {
	vehicleRng := sim.RNG.ForSubsystem(SubsystemVehicle)
	for _, v := range sim.Vehicles {
		v.UpdateLocation(sim.City, sim.Target.IdleVehiclesMoving)
		v.UpdateDirection(sim.City, sim.Target.IdleVehiclesMoving, vehicleRng)
		sim.handleArrival(v)
	}
}

func (sim *Simulator) handleArrival(v *Vehicle) {
	if v.TripIndex == nil {
		return
	}
	trip := sim.Trips[*v.TripIndex]
	switch v.Phase {
	case P2:
		if v.Location != v.PickupLocation {
			return
		}
		if v.ArriveAtPickup() {
			trip.UpdatePhase(Riding)
		}
	case P3:
		if v.Location != v.DropoffLocation {
			return
		}
		nextIdx := v.ArriveAtDropoff()
		trip.UpdatePhase(Completed)
		if nextIdx == nil {
			return
		}
		next := sim.Trips[*nextIdx]
		v.PickupLocation = next.Origin
		v.DropoffLocation = next.Destination
		if v.Location == next.Origin && v.ArriveAtPickup() {
			next.UpdatePhase(Riding)
		}
	}
}

// equilibrate runs the supply/price controller once per
// EquilibrationInterval, using the just-elapsed window's occupied
// fraction.
func (sim *Simulator) equilibrate(block int64) {
	if !sim.Target.Equilibrate || sim.Target.Equilibration == EquilibrationNone {
		return
	}
	interval := int64(sim.Target.EquilibrationInterval)
	if interval <= 0 || block%interval != 0 || block < interval {
		return
	}
	vehicleTime := sim.History.Equilibration(MetricVehicleTime).Sum
	p3 := sim.History.Equilibration(MetricVehicleTimeP3).Sum
	fractionP3 := 0.0
	if vehicleTime > 0 {
		fractionP3 = p3 / vehicleTime
	}
	Equilibrate(sim.Target, fractionP3)
}

// requestTrips draws this block's new trip requests from the current
// demand rate. requestCarry accumulates the fractional remainder
// across blocks so that, e.g., a rate of 0.3 trips/block averages out
// correctly over many blocks instead of rounding to zero forever.
func (sim *Simulator) requestTrips() {
	priceEquilibrated := sim.Target.Equilibrate && sim.Target.Equilibration == EquilibrationPrice
	rate := Demand(sim.Target.BaseDemand, sim.Target.Price, sim.Target.DemandElasticity, priceEquilibrated)
	sim.lastRequestRate = rate

	sim.requestCarry += rate
	count := int(sim.requestCarry)
	sim.requestCarry -= float64(count)

	// A trip's Index always equals its position in sim.Trips (kept in
	// sync by collectGarbage), so handleArrival can look trips up by
	// direct subscript rather than a map.
	tripRng := sim.RNG.ForSubsystem(SubsystemTrip)
	for i := 0; i < count; i++ {
		trip := NewTrip(len(sim.Trips), sim.City, sim.Target.MinTripDistance, sim.Target.MaxTripDistance, tripRng)
		trip.UpdatePhase(Unassigned)
		sim.Trips = append(sim.Trips, trip)
	}
}

func (sim *Simulator) dispatchTrips() {
	var unassigned []*Trip
	for _, t := range sim.Trips {
		if t.Phase == Unassigned {
			unassigned = append(unassigned, t)
		}
	}
	if len(unassigned) == 0 {
		return
	}
	alreadyP2 := make(map[int]bool)
	for _, v := range sim.Vehicles {
		if v.Phase == P2 {
			alreadyP2[v.Index] = true
		}
	}
	dispatchRng := sim.RNG.ForSubsystem(SubsystemDispatch)
	sim.Dispatcher.Dispatch(sim.City, sim.Vehicles, unassigned, sim.PickupDwellBlocks, dispatchRng)

	// A vehicle dispatched to a trip already at its own location picks
	// up immediately, in the same block (original_source's
	// _assign_driver immediate-pickup special case).
	for _, v := range sim.Vehicles {
		if v.Phase != P2 || v.TripIndex == nil || alreadyP2[v.Index] {
			continue
		}
		trip := sim.Trips[*v.TripIndex]
		if trip.Phase == Waiting && v.Location == v.PickupLocation && v.ArriveAtPickup() {
			trip.UpdatePhase(Riding)
		}
	}
}

// cancelTrips cancels any trip that has been unassigned for a full
// city_size blocks (original_source's _cancel_requests).
func (sim *Simulator) cancelTrips() {
	for _, t := range sim.Trips {
		if t.Phase == Unassigned && t.PhaseTime[Unassigned] >= sim.City.CitySize {
			t.UpdatePhase(Cancelled)
		}
	}
}

// pushHistory accrues phase time for every vehicle and trip and pushes
// this block's per-metric values into the HistoryStore.
func (sim *Simulator) pushHistory() {
	var p1, p2, p3 float64
	for _, v := range sim.Vehicles {
		switch v.Phase {
		case P1:
			p1++
		case P2:
			p2++
		case P3:
			p3++
		}
	}
	sim.History.Push(MetricVehicleCount, float64(len(sim.Vehicles)))
	sim.History.Push(MetricVehicleTime, p1+p2+p3)
	sim.History.Push(MetricVehicleTimeP1, p1)
	sim.History.Push(MetricVehicleTimeP2, p2)
	sim.History.Push(MetricVehicleTimeP3, p3)
	sim.History.Push(MetricTripRequestRate, sim.lastRequestRate)

	var unassignedCount, awaitingCount, ridingCount, completedCount, tripCount, forwardDispatchCount, priceSum float64
	for _, t := range sim.Trips {
		t.AccruePhaseTime()
		switch t.Phase {
		case Unassigned:
			unassignedCount++
		case Waiting:
			awaitingCount++
		case Riding:
			ridingCount++
		case Completed:
			completedCount++
			tripCount++
			priceSum += sim.Target.Price * float64(t.Distance)
			t.UpdatePhase(Inactive)
		case Cancelled:
			tripCount++
			t.UpdatePhase(Inactive)
		}
		if t.ForwardDispatched {
			forwardDispatchCount++
		}
	}
	sim.History.Push(MetricTripCount, tripCount)
	sim.History.Push(MetricTripCompleted, completedCount)
	sim.History.Push(MetricTripUnassigned, unassignedCount)
	sim.History.Push(MetricTripAwaiting, awaitingCount)
	sim.History.Push(MetricTripRiding, ridingCount)
	sim.History.Push(MetricTripDistance, ridingCount)
	sim.History.Push(MetricTripWaitTime, unassignedCount+awaitingCount)
	sim.History.Push(MetricTripPrice, priceSum)
	sim.History.Push(MetricForwardDispatch, forwardDispatchCount)
}

// collectGarbage compacts completed/cancelled (now INACTIVE) trips out
// of the trip list periodically, reindexing every remaining trip and
// every vehicle's TripIndex/ForwardDispatchTripIndex to match
// (original_source's _collect_garbage).
func (sim *Simulator) collectGarbage(block int64) {
	if block%garbageCollectionInterval != 0 {
		return
	}
	kept := sim.Trips[:0]
	oldToNew := make(map[int]int, len(sim.Trips))
	for _, t := range sim.Trips {
		if t.Phase == Inactive {
			continue
		}
		oldToNew[t.Index] = len(kept)
		kept = append(kept, t)
	}
	for i, t := range kept {
		t.Index = i
	}
	sim.Trips = kept

	for _, v := range sim.Vehicles {
		if v.TripIndex != nil {
			if newIdx, ok := oldToNew[*v.TripIndex]; ok {
				idx := newIdx
				v.TripIndex = &idx
			}
		}
		if v.ForwardDispatchTripIndex != nil {
			if newIdx, ok := oldToNew[*v.ForwardDispatchTripIndex]; ok {
				idx := newIdx
				v.ForwardDispatchTripIndex = &idx
			}
		}
	}
}

func (sim *Simulator) recordBlock(block int64) {
	measures := ComputeMeasures(sim.History, sim.Target.Price, sim.Target.PlatformCommission, sim.Target.ReservationWage)
	rhat := sim.Convergence.Rhat(sim.History)
	sim.Blocks = append(sim.Blocks, BlockResult{
		Block:        block,
		VehicleCount: len(sim.Vehicles),
		TripCount:    len(sim.Trips),
		Measures:     measures,
		Rhat:         rhat,
		Converged:    sim.Convergence.Converged(sim.History, convergenceRhatMax),
	})
}
