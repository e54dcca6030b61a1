package sim

// EquilibrationMode selects whether the simulator adjusts fleet size
// toward the driver-utility-zero condition, and whether demand reacts
// to price (PRICE mode). Price itself is never adjusted.
type EquilibrationMode int

const (
	EquilibrationNone EquilibrationMode = iota
	EquilibrationSupply
	EquilibrationPrice
)

func (m EquilibrationMode) String() string {
	switch m {
	case EquilibrationSupply:
		return "supply"
	case EquilibrationPrice:
		return "price"
	default:
		return "none"
	}
}

// ParseEquilibrationMode maps a config string to an EquilibrationMode.
// An unrecognized mode is a configuration error.
func ParseEquilibrationMode(s string) (EquilibrationMode, error) {
	switch s {
	case "", "none":
		return EquilibrationNone, nil
	case "supply":
		return EquilibrationSupply, nil
	case "price":
		return EquilibrationPrice, nil
	default:
		return 0, &ConfigError{Field: "equilibration", Message: "unrecognized equilibration mode " + s}
	}
}

// TargetState holds user-facing control parameters that may be
// changed mid-run (by an Impulse). The stepper reconciles committed
// simulation state against TargetState at the top of every block.
type TargetState struct {
	CitySize                  int
	Inhomogeneity             float64
	InhomogeneousDestinations bool
	VehicleCount              int
	BaseDemand                float64
	MinTripDistance           int
	MaxTripDistance           int
	IdleVehiclesMoving        bool

	DispatchMethod      DispatchMethod
	ForwardDispatchBias float64

	Price               float64
	PlatformCommission  float64
	ReservationWage     float64
	DemandElasticity    float64
	Equilibrate         bool
	Equilibration       EquilibrationMode
	EquilibrationInterval int
}

// Impulse overrides a subset of TargetState fields at a given block.
// Only non-nil fields are applied, narrowed to the fields the core
// itself must act on mid-run.
type Impulse struct {
	Block int

	CitySize           *int
	Inhomogeneity      *float64
	VehicleCount       *int
	BaseDemand         *float64
	MaxTripDistance    *int
	IdleVehiclesMoving *bool

	Price              *float64
	PlatformCommission *float64
	ReservationWage    *float64
	DemandElasticity   *float64
	Equilibrate        *bool
	Equilibration      *EquilibrationMode
}

// Apply overwrites the non-nil fields of imp onto ts.
func (ts *TargetState) Apply(imp *Impulse) {
	if imp.CitySize != nil {
		ts.CitySize = *imp.CitySize
	}
	if imp.Inhomogeneity != nil {
		ts.Inhomogeneity = *imp.Inhomogeneity
	}
	if imp.VehicleCount != nil {
		ts.VehicleCount = *imp.VehicleCount
	}
	if imp.BaseDemand != nil {
		ts.BaseDemand = *imp.BaseDemand
	}
	if imp.MaxTripDistance != nil {
		ts.MaxTripDistance = *imp.MaxTripDistance
	}
	if imp.IdleVehiclesMoving != nil {
		ts.IdleVehiclesMoving = *imp.IdleVehiclesMoving
	}
	if imp.Price != nil {
		ts.Price = *imp.Price
	}
	if imp.PlatformCommission != nil {
		ts.PlatformCommission = *imp.PlatformCommission
	}
	if imp.ReservationWage != nil {
		ts.ReservationWage = *imp.ReservationWage
	}
	if imp.DemandElasticity != nil {
		ts.DemandElasticity = *imp.DemandElasticity
	}
	if imp.Equilibrate != nil {
		ts.Equilibrate = *imp.Equilibrate
	}
	if imp.Equilibration != nil {
		ts.Equilibration = *imp.Equilibration
	}
}
