package sim

// HistoryStore holds, for each tracked Metric, three CircularBuffers
// of different window lengths: a short smoothing window (for
// animation/UI consumers), a results window (for end-of-run
// statistics), and an equilibration-interval window (for the
// equilibration controller). All three receive the same pushed value
// every block.
type HistoryStore struct {
	smoothing     map[Metric]*CircularBuffer
	results       map[Metric]*CircularBuffer
	equilibration map[Metric]*CircularBuffer
}

// NewHistoryStore preallocates three buffers per metric so the
// per-block hot path never allocates.
func NewHistoryStore(smoothingWindow, resultsWindow, equilibrationInterval int) *HistoryStore {
	h := &HistoryStore{
		smoothing:     make(map[Metric]*CircularBuffer, len(AllMetrics)),
		results:       make(map[Metric]*CircularBuffer, len(AllMetrics)),
		equilibration: make(map[Metric]*CircularBuffer, len(AllMetrics)),
	}
	for _, m := range AllMetrics {
		h.smoothing[m] = NewCircularBuffer(smoothingWindow)
		h.results[m] = NewCircularBuffer(resultsWindow)
		h.equilibration[m] = NewCircularBuffer(equilibrationInterval)
	}
	return h
}

// Push records v for metric m into all three windows.
func (h *HistoryStore) Push(m Metric, v float64) {
	h.smoothing[m].Push(v)
	h.results[m].Push(v)
	h.equilibration[m].Push(v)
}

// Results returns the results-window buffer for a metric, used by the
// derived-measures computation.
func (h *HistoryStore) Results(m Metric) *CircularBuffer {
	return h.results[m]
}

// Smoothing returns the smoothing-window buffer for a metric, used by
// the convergence tracker.
func (h *HistoryStore) Smoothing(m Metric) *CircularBuffer {
	return h.smoothing[m]
}

// Equilibration returns the equilibration-interval buffer for a
// metric, used by the equilibration controller.
func (h *HistoryStore) Equilibration(m Metric) *CircularBuffer {
	return h.equilibration[m]
}
