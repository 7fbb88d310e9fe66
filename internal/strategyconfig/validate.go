package strategyconfig

import "fmt"

// Validate checks the strategy constants for internal consistency.
// A config that fails here is a deploy error, not a runtime condition.
func Validate(cfg *Config) error {
	n := cfg.Normalization
	switch n.CapMode {
	case CapFixed, CapPopulation:
	default:
		return fmt.Errorf("normalization.cap_mode must be %q or %q, got %q", CapFixed, CapPopulation, n.CapMode)
	}
	if n.CapMode == CapPopulation && (n.PopulationQuantile <= 0 || n.PopulationQuantile >= 1) {
		return fmt.Errorf("normalization.population_quantile must be in (0,1), got %v", n.PopulationQuantile)
	}
	if n.VolumeRatioCap <= 0 {
		return fmt.Errorf("normalization.volume_ratio_cap must be positive, got %v", n.VolumeRatioCap)
	}
	if n.TurnoverCapPct <= 0 {
		return fmt.Errorf("normalization.turnover_cap_pct must be positive, got %v", n.TurnoverCapPct)
	}
	if n.GapCeilingPct <= 0 {
		return fmt.Errorf("normalization.gap_ceiling_pct must be positive, got %v", n.GapCeilingPct)
	}
	if n.AmountCap <= 0 {
		return fmt.Errorf("normalization.amount_cap must be positive, got %v", n.AmountCap)
	}

	p := cfg.Probability
	if p.Slope <= 0 {
		return fmt.Errorf("probability.slope must be positive, got %v", p.Slope)
	}
	if p.GapCoef < 0 {
		return fmt.Errorf("probability.gap_coef must be non-negative, got %v", p.GapCoef)
	}
	if p.Threshold <= 0 || p.Threshold >= 1 {
		return fmt.Errorf("probability.threshold must be in (0,1), got %v", p.Threshold)
	}

	r := cfg.Regime
	if r.BreadthActiveThreshold <= 0 || r.BreadthActiveThreshold >= 1 {
		return fmt.Errorf("regime.breadth_active_threshold must be in (0,1), got %v", r.BreadthActiveThreshold)
	}
	if r.MinSamples < 1 {
		return fmt.Errorf("regime.min_samples must be at least 1, got %d", r.MinSamples)
	}

	a := cfg.Alpha
	if a.LiftTarget <= 0 {
		return fmt.Errorf("alpha.lift_target must be positive, got %v", a.LiftTarget)
	}
	if a.VolatileFactor < 0 || a.VolatileFactor > 1 {
		return fmt.Errorf("alpha.volatile_factor must be in [0,1], got %v", a.VolatileFactor)
	}
	if a.MinSamples < 1 {
		return fmt.Errorf("alpha.min_samples must be at least 1, got %d", a.MinSamples)
	}

	s := cfg.Screening
	if s.MaxPE <= 0 {
		return fmt.Errorf("screening.max_pe must be positive, got %v", s.MaxPE)
	}
	if s.LowGapMaxPct <= 0 {
		return fmt.Errorf("screening.low_gap_max_pct must be positive, got %v", s.LowGapMaxPct)
	}

	return nil
}
