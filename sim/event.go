package sim

// Event is anything the Simulator's event loop can schedule and
// execute at a given tick: a min-heap of Events ordered by Timestamp,
// each popped event advancing the clock and executing itself against
// the Simulator.
type Event interface {
	Timestamp() int64
	Execute(*Simulator)
}

// BlockEvent drives the simulator's fixed-tick block loop: on Execute
// it runs one simulation block and, unless the simulator has reached
// its horizon, reschedules itself for the next tick. BlockEvent is
// the only event type this simulator ever schedules, but the queue
// stays heap-ordered in case a variable-interval event is ever added.
type BlockEvent struct {
	block int64
}

func (e *BlockEvent) Timestamp() int64 { return e.block }

func (e *BlockEvent) Execute(sim *Simulator) {
	sim.RunBlock(e.block)
	if e.block+1 <= sim.Horizon {
		sim.Schedule(&BlockEvent{block: e.block + 1})
	}
}
