package sim

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// minChainSamples is the fewest samples a single chain may have
// before Rhat refuses to compute (a Gelman-Rubin diagnostic needs at
// least a handful of draws per chain to estimate within-chain
// variance at all).
const minChainSamples = 4

// ConvergenceTracker watches a set of metrics' smoothing-window
// history and reports the Gelman-Rubin potential scale reduction
// factor (R-hat) for each, splitting the window into a fixed number
// of chains. R-hat near 1 indicates the run has reached a
// statistically stationary state.
type ConvergenceTracker struct {
	metrics []Metric
	chains  int
}

// NewConvergenceTracker builds a tracker over the given metrics,
// splitting each metric's window into the given number of chains.
func NewConvergenceTracker(metrics []Metric, chains int) *ConvergenceTracker {
	if chains < 2 {
		chains = 2
	}
	return &ConvergenceTracker{metrics: metrics, chains: chains}
}

// Rhat computes the Gelman-Rubin statistic for every tracked metric
// from the given HistoryStore's smoothing window. A metric whose
// window does not yet hold enough samples to split into chains, or
// whose R-hat is undefined (zero within-chain variance with nonzero
// between-chain variance), is omitted from the result, not reported
// as converged.
func (c *ConvergenceTracker) Rhat(h *HistoryStore) map[Metric]float64 {
	out := make(map[Metric]float64, len(c.metrics))
	for _, m := range c.metrics {
		samples := h.Smoothing(m).Recent()
		r, ok := rhat(samples, c.chains)
		if ok {
			out[m] = r
		}
	}
	return out
}

// Converged reports whether every tracked metric's R-hat is within
// threshold of 1 (a typical threshold is 1.1). A metric
// omitted from Rhat (not enough samples yet, or R-hat undefined)
// counts as not converged.
func (c *ConvergenceTracker) Converged(h *HistoryStore, threshold float64) bool {
	rhats := c.Rhat(h)
	if len(rhats) < len(c.metrics) {
		return false
	}
	for _, r := range rhats {
		if r > threshold {
			return false
		}
	}
	return true
}

// rhat splits samples (oldest first) into n contiguous chains of
// equal length, discarding any remainder at the front, and computes
// the Gelman-Rubin potential scale reduction factor:
//
//	Rhat = sqrt( (((L-1)/L)*W + B/L) / W )
//
// where L is the per-chain length, W is the mean within-chain
// variance and B is the between-chain variance of the chain means,
// scaled by L (Gelman & Rubin 1992). Returns ok=false when there are
// not enough samples to form n chains of at least minChainSamples
// each, or when W is 0 but B is not (R-hat is then undefined).
func rhat(samples []float64, n int) (float64, bool) {
	chainLen := len(samples) / n
	if chainLen < minChainSamples {
		return 0, false
	}
	offset := len(samples) - chainLen*n

	means := make([]float64, n)
	variances := make([]float64, n)
	for i := 0; i < n; i++ {
		chain := samples[offset+i*chainLen : offset+(i+1)*chainLen]
		means[i] = stat.Mean(chain, nil)
		variances[i] = stat.Variance(chain, nil)
	}

	w := stat.Mean(variances, nil)
	betweenVar := stat.Variance(means, nil)
	b := betweenVar * float64(chainLen)

	if w == 0 {
		if b == 0 {
			return 1, true
		}
		return 0, false
	}

	varHat := (float64(chainLen-1)/float64(chainLen))*w + b/float64(chainLen)
	return math.Sqrt(varHat / w), true
}
