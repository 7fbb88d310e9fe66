package strategyconfig

// Config holds every tunable constant of the auction scoring engine.
// Values that API callers do not control (normalization caps, the
// probability curve, regime thresholds, alpha calibration) live here as
// configuration instead of magic numbers in the engine.
type Config struct {
	Meta          Meta          `yaml:"meta" json:"meta"`
	Normalization Normalization `yaml:"normalization" json:"normalization"`
	Probability   Probability   `yaml:"probability" json:"probability"`
	Regime        Regime        `yaml:"regime" json:"regime"`
	Alpha         Alpha         `yaml:"alpha" json:"alpha"`
	Screening     Screening     `yaml:"screening" json:"screening"`
}

// Meta identifies the strategy revision
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
	Timezone   string `yaml:"timezone" json:"timezone"`
}

// CapMode selects how normalization caps are derived
type CapMode string

const (
	// CapFixed uses the configured caps as-is
	CapFixed CapMode = "fixed"
	// CapPopulation derives caps from a quantile of the day's batch,
	// computed once per batch so all stocks share one scale.
	CapPopulation CapMode = "population"
)

// Normalization configures the metric sub-score mapping
type Normalization struct {
	CapMode            CapMode `yaml:"cap_mode" json:"cap_mode"`
	PopulationQuantile float64 `yaml:"population_quantile" json:"population_quantile"`

	VolumeRatioCap float64 `yaml:"volume_ratio_cap" json:"volume_ratio_cap"`
	TurnoverCapPct float64 `yaml:"turnover_cap_pct" json:"turnover_cap_pct"`
	GapCeilingPct  float64 `yaml:"gap_ceiling_pct" json:"gap_ceiling_pct"`
	AmountCap      float64 `yaml:"amount_cap" json:"amount_cap"`
}

// Probability configures the limit-up probability curve: a bounded
// logistic over the boosted heat score and the auction gap.
type Probability struct {
	Midpoint  float64 `yaml:"midpoint" json:"midpoint"`   // heat score at p=0.5 (gap term aside)
	Slope     float64 `yaml:"slope" json:"slope"`         // logistic steepness per heat point
	GapCoef   float64 `yaml:"gap_coef" json:"gap_coef"`   // contribution per gap percent
	Threshold float64 `yaml:"threshold" json:"threshold"` // likely_limit_up cutoff
}

// Regime configures the market regime classifier votes
type Regime struct {
	BreadthActiveThreshold  float64 `yaml:"breadth_active_threshold" json:"breadth_active_threshold"`
	GapVolatileThresholdPct float64 `yaml:"gap_volatile_threshold_pct" json:"gap_volatile_threshold_pct"`
	DispersionVolatile      float64 `yaml:"dispersion_volatile" json:"dispersion_volatile"`
	MinSamples              int     `yaml:"min_samples" json:"min_samples"`
}

// Alpha configures the rolling theme-alpha calibration
type Alpha struct {
	LiftTarget     float64 `yaml:"lift_target" json:"lift_target"`         // lift at which full requested alpha is allowed
	VolatileFactor float64 `yaml:"volatile_factor" json:"volatile_factor"` // extra shrink in a volatile regime
	MinSamples     int     `yaml:"min_samples" json:"min_samples"`
}

// Screening configures the ranker's exclusion filters
type Screening struct {
	MaxPE        float64 `yaml:"max_pe" json:"max_pe"`
	LowGapMaxPct float64 `yaml:"low_gap_max_pct" json:"low_gap_max_pct"`
}

// Default returns the shipped strategy constants, used when no YAML file
// is present.
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: "super_main_force_v1",
			Version:    "1.0.0",
			Timezone:   "Asia/Shanghai",
		},
		Normalization: Normalization{
			CapMode:            CapFixed,
			PopulationQuantile: 0.95,
			VolumeRatioCap:     20.0,
			TurnoverCapPct:     20.0,
			GapCeilingPct:      10.0,
			AmountCap:          2e9,
		},
		Probability: Probability{
			Midpoint:  70.0,
			Slope:     0.08,
			GapCoef:   0.12,
			Threshold: 0.5,
		},
		Regime: Regime{
			BreadthActiveThreshold:  0.55,
			GapVolatileThresholdPct: 2.5,
			DispersionVolatile:      18.0,
			MinSamples:              5,
		},
		Alpha: Alpha{
			LiftTarget:     0.15,
			VolatileFactor: 0.5,
			MinSamples:     5,
		},
		Screening: Screening{
			MaxPE:        150.0,
			LowGapMaxPct: 5.0,
		},
	}
}
