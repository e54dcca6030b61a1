// cmd/root.go
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/ridehail-sim/ridehail-sim/sim"
)

var (
	configPath string
	logLevel   string
	seed       int64
	horizon    int64

	citySize                  int
	inhomogeneity             float64
	inhomogeneousDestinations bool
	vehicleCount              int
	baseDemand                float64
	minTripDistance           int
	maxTripDistance           int
	idleVehiclesMoving        bool

	dispatchMethod      string
	forwardDispatchBias float64
	pickupDwellBlocks   int

	price              float64
	platformCommission float64
	reservationWage    float64
	demandElasticity   float64
	equilibrate        bool
	equilibration      string

	smoothingWindow       int
	resultsWindow         int
	equilibrationInterval int

	cityScaleEnabled bool
	meanVehicleSpeed float64
	minutesPerBlock  float64
	perKmPrice       float64
	perMinutePrice   float64
	perKmCost        float64
)

var rootCmd = &cobra.Command{
	Use:   "ridehail-sim",
	Short: "Block-stepped simulation core for a ride-hail dispatch market",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the dispatch simulation",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg, err := loadConfig()
		if err != nil {
			logrus.Fatalf("configuration error: %v", err)
		}

		logrus.Infof("starting simulation: city_size=%d vehicles=%d horizon=%d dispatch=%s",
			cfg.Grid.CitySize, cfg.VehicleCount, cfg.Horizon, cfg.Dispatch.Method)

		s, err := sim.NewSimulator(cfg, sim.NewSimulationKey(seed))
		if err != nil {
			logrus.Fatalf("configuration error: %v", err)
		}
		startedAt := time.Now()
		s.Run()

		if len(s.Blocks) == 0 {
			logrus.Warn("simulation produced no blocks")
			return
		}
		summary := sim.NewRunSummary(cfg, s, startedAt)
		encoded, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			logrus.Fatalf("encoding summary: %v", err)
		}
		fmt.Println(string(encoded))
		logrus.Info("simulation complete")
	},
}

// loadConfig starts from DefaultConfig, applies a YAML file if
// --config was given, then applies any explicitly-set flags on top —
// flags win over the file, the file wins over defaults.
func loadConfig() (*sim.Config, error) {
	cfg := sim.DefaultConfig()
	if configPath != "" {
		fileCfg, err := sim.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}
	applyFlagOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlagOverrides(cfg *sim.Config) {
	flags := runCmd.Flags()
	if flags.Changed("horizon") {
		cfg.Horizon = horizon
	}
	if flags.Changed("city-size") {
		cfg.Grid.CitySize = citySize
	}
	if flags.Changed("inhomogeneity") {
		cfg.Grid.Inhomogeneity = inhomogeneity
	}
	if flags.Changed("inhomogeneous-destinations") {
		cfg.Grid.InhomogeneousDestinations = inhomogeneousDestinations
	}
	if flags.Changed("vehicle-count") {
		cfg.VehicleCount = vehicleCount
	}
	if flags.Changed("base-demand") {
		cfg.BaseDemand = baseDemand
	}
	if flags.Changed("min-trip-distance") {
		cfg.MinTripDistance = minTripDistance
	}
	if flags.Changed("max-trip-distance") {
		cfg.MaxTripDistance = maxTripDistance
	}
	if flags.Changed("idle-vehicles-moving") {
		cfg.IdleVehiclesMoving = idleVehiclesMoving
	}
	if flags.Changed("dispatch-method") {
		cfg.Dispatch.Method = dispatchMethod
	}
	if flags.Changed("forward-dispatch-bias") {
		cfg.Dispatch.ForwardDispatchBias = forwardDispatchBias
	}
	if flags.Changed("pickup-dwell-blocks") {
		cfg.Dispatch.PickupDwellBlocks = pickupDwellBlocks
	}
	if flags.Changed("price") {
		cfg.Economics.Price = price
	}
	if flags.Changed("platform-commission") {
		cfg.Economics.PlatformCommission = platformCommission
	}
	if flags.Changed("reservation-wage") {
		cfg.Economics.ReservationWage = reservationWage
	}
	if flags.Changed("demand-elasticity") {
		cfg.Economics.DemandElasticity = demandElasticity
	}
	if flags.Changed("equilibrate") {
		cfg.Economics.Equilibrate = equilibrate
	}
	if flags.Changed("equilibration") {
		cfg.Economics.Equilibration = equilibration
	}
	if flags.Changed("smoothing-window") {
		cfg.Windows.SmoothingWindow = smoothingWindow
	}
	if flags.Changed("results-window") {
		cfg.Windows.ResultsWindow = resultsWindow
	}
	if flags.Changed("equilibration-interval") {
		cfg.Windows.EquilibrationInterval = equilibrationInterval
	}
	if flags.Changed("city-scale") {
		cfg.CityScale.Enabled = cityScaleEnabled
	}
	if flags.Changed("mean-vehicle-speed") {
		cfg.CityScale.MeanVehicleSpeed = meanVehicleSpeed
	}
	if flags.Changed("minutes-per-block") {
		cfg.CityScale.MinutesPerBlock = minutesPerBlock
	}
	if flags.Changed("per-km-price") {
		cfg.CityScale.PerKmPrice = perKmPrice
	}
	if flags.Changed("per-minute-price") {
		cfg.CityScale.PerMinutePrice = perMinutePrice
	}
	if flags.Changed("per-km-cost") {
		cfg.CityScale.PerKmCost = perKmCost
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML configuration file")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (debug, info, warn, error)")
	runCmd.Flags().Int64Var(&seed, "seed", 1, "Master seed for the simulation's reproducibility key")
	runCmd.Flags().Int64Var(&horizon, "horizon", 1000, "Index of the last block to simulate (blocks 0 through horizon run)")

	runCmd.Flags().IntVar(&citySize, "city-size", 16, "Side length of the toroidal grid (corrected to even)")
	runCmd.Flags().Float64Var(&inhomogeneity, "inhomogeneity", 0, "Fraction of origins biased toward the central zone")
	runCmd.Flags().BoolVar(&inhomogeneousDestinations, "inhomogeneous-destinations", false, "Apply the same central-zone bias to destinations")
	runCmd.Flags().IntVar(&vehicleCount, "vehicle-count", 8, "Initial fleet size")
	runCmd.Flags().Float64Var(&baseDemand, "base-demand", 0.2, "Base trip request rate, in trips per block")
	runCmd.Flags().IntVar(&minTripDistance, "min-trip-distance", 0, "Minimum sampled trip distance")
	runCmd.Flags().IntVar(&maxTripDistance, "max-trip-distance", 0, "Maximum sampled trip distance (0 = unbounded)")
	runCmd.Flags().BoolVar(&idleVehiclesMoving, "idle-vehicles-moving", true, "Idle vehicles wander instead of parking")

	runCmd.Flags().StringVar(&dispatchMethod, "dispatch-method", "default", "Dispatch policy: default, forward_dispatch, p1_legacy, random")
	runCmd.Flags().Float64Var(&forwardDispatchBias, "forward-dispatch-bias", 0, "Distance penalty applied to idle vehicles under forward_dispatch")
	runCmd.Flags().IntVar(&pickupDwellBlocks, "pickup-dwell-blocks", 0, "Blocks a vehicle dwells at pickup before starting the ride")

	runCmd.Flags().Float64Var(&price, "price", 1.0, "Price per trip distance unit")
	runCmd.Flags().Float64Var(&platformCommission, "platform-commission", 0.25, "Platform's commission fraction")
	runCmd.Flags().Float64Var(&reservationWage, "reservation-wage", 0.21, "Driver reservation wage per block")
	runCmd.Flags().Float64Var(&demandElasticity, "demand-elasticity", 1.0, "Demand price elasticity")
	runCmd.Flags().BoolVar(&equilibrate, "equilibrate", false, "Enable the equilibration controller")
	runCmd.Flags().StringVar(&equilibration, "equilibration", "none", "Equilibration mode: none, supply, price")

	runCmd.Flags().IntVar(&smoothingWindow, "smoothing-window", 20, "Convergence-tracker smoothing window, in blocks")
	runCmd.Flags().IntVar(&resultsWindow, "results-window", 100, "Results window, in blocks")
	runCmd.Flags().IntVar(&equilibrationInterval, "equilibration-interval", 20, "Blocks between equilibration adjustments")

	runCmd.Flags().BoolVar(&cityScaleEnabled, "city-scale", false, "Report derived measures in real-world units (km, minutes, dollars) as well as blocks")
	runCmd.Flags().Float64Var(&meanVehicleSpeed, "mean-vehicle-speed", 30, "Mean vehicle speed in km/hour, for city-scale conversion")
	runCmd.Flags().Float64Var(&minutesPerBlock, "minutes-per-block", 1, "Minutes represented by one simulated block, for city-scale conversion")
	runCmd.Flags().Float64Var(&perKmPrice, "per-km-price", 0.80, "Rider price per km, for city-scale conversion")
	runCmd.Flags().Float64Var(&perMinutePrice, "per-minute-price", 0.20, "Rider price per minute, for city-scale conversion")
	runCmd.Flags().Float64Var(&perKmCost, "per-km-cost", 0.30, "Vehicle operating cost per km, for city-scale conversion")

	rootCmd.AddCommand(runCmd)
}
