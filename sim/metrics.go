package sim

// Metric names the rolling time series the simulator tracks in its
// HistoryStore. Values are the external, human-readable names used in
// the per-block state dictionary.
type Metric string

const (
	MetricVehicleCount    Metric = "vehicle_count"
	MetricVehicleTime     Metric = "vehicle_time"
	MetricVehicleTimeP1   Metric = "vehicle_time_p1"
	MetricVehicleTimeP2   Metric = "vehicle_time_p2"
	MetricVehicleTimeP3   Metric = "vehicle_time_p3"
	MetricTripCount       Metric = "trip_count"
	MetricTripCompleted   Metric = "trip_completed_count"
	MetricTripRequestRate Metric = "trip_request_rate"
	MetricTripWaitTime    Metric = "trip_wait_time"
	MetricTripUnassigned  Metric = "trip_unassigned_time"
	MetricTripAwaiting    Metric = "trip_awaiting_time"
	MetricTripRiding      Metric = "trip_riding_time"
	MetricTripDistance    Metric = "trip_distance"
	MetricTripPrice       Metric = "trip_price"
	MetricForwardDispatch Metric = "trip_forward_dispatch_count"
)

// AllMetrics lists every metric tracked in the HistoryStore, in a
// fixed order used when allocating buffers and when flattening the
// per-block state dictionary.
var AllMetrics = []Metric{
	MetricVehicleCount,
	MetricVehicleTime,
	MetricVehicleTimeP1,
	MetricVehicleTimeP2,
	MetricVehicleTimeP3,
	MetricTripCount,
	MetricTripCompleted,
	MetricTripRequestRate,
	MetricTripWaitTime,
	MetricTripUnassigned,
	MetricTripAwaiting,
	MetricTripRiding,
	MetricTripDistance,
	MetricTripPrice,
	MetricForwardDispatch,
}

// ConvergenceMetrics is the default set of metrics the convergence
// tracker watches.
var ConvergenceMetrics = []Metric{
	MetricVehicleTimeP1,
	MetricVehicleTimeP2,
	MetricVehicleTimeP3,
	MetricTripWaitTime,
	MetricTripDistance,
}
