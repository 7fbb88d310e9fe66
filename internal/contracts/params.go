package contracts

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParameter marks parameter-contract violations. These are the
// only errors the engine surfaces to the caller; everything else is
// recovered locally (see ranker and normalizer).
var ErrInvalidParameter = errors.New("invalid parameter")

// SortMode controls the ordering of the ranked result
type SortMode string

const (
	// SortCandidateFirst orders likely limit-up candidates before the
	// rest, heat descending within each group.
	SortCandidateFirst SortMode = "candidate_first"
	// SortHeatDesc orders purely by heat score descending.
	SortHeatDesc SortMode = "heat_desc"
)

// MaxThemeAlpha is the hard cap on the theme boost strength
const MaxThemeAlpha = 0.5

// Weights is the metric weight vector of the composite score. Must sum
// to 1.0.
type Weights struct {
	VolumeRatio  float64 `json:"volume_ratio"`
	TurnoverRate float64 `json:"turnover_rate"`
	GapPercent   float64 `json:"gap_percent"`
	Amount       float64 `json:"amount"`
}

// Sum returns the total of all weights
func (w Weights) Sum() float64 {
	return w.VolumeRatio + w.TurnoverRate + w.GapPercent + w.Amount
}

// DefaultWeights returns the canonical weight vector
func DefaultWeights() Weights {
	return Weights{
		VolumeRatio:  0.4,
		TurnoverRate: 0.2,
		GapPercent:   0.3,
		Amount:       0.1,
	}
}

// ScoringParameters is the caller-controlled configuration of one ranking
// invocation. Immutable per call; the engine holds no state between calls.
type ScoringParameters struct {
	Weights    Weights  `json:"weights"`
	ThemeAlpha float64  `json:"theme_alpha"` // requested boost strength, [0, 0.5]
	SortMode   SortMode `json:"sort_mode"`

	PEFilterEnabled       bool `json:"pe_filter_enabled"`
	ExcludeAuctionLimitUp bool `json:"exclude_auction_limit_up"`
	LowGapOnly            bool `json:"low_gap_only"` // post-filter: gap < 5%

	DynamicAlpha      bool `json:"dynamic_alpha"` // calibrate alpha from the rolling window
	RollingWindowDays int  `json:"rolling_window_days"`
}

// DefaultScoringParameters returns the canonical parameter set
func DefaultScoringParameters() ScoringParameters {
	return ScoringParameters{
		Weights:               DefaultWeights(),
		ThemeAlpha:            0.25,
		SortMode:              SortCandidateFirst,
		PEFilterEnabled:       false,
		ExcludeAuctionLimitUp: false,
		LowGapOnly:            false,
		DynamicAlpha:          true,
		RollingWindowDays:     20,
	}
}

// Validate rejects out-of-contract parameters. The policy is fail fast:
// user-facing tunables are never silently clamped.
func (p *ScoringParameters) Validate() error {
	sum := p.Weights.Sum()
	if math.Abs(sum-1.0) > 0.01 {
		return fmt.Errorf("%w: weights must sum to 1.0, got %.4f", ErrInvalidParameter, sum)
	}
	if p.Weights.VolumeRatio < 0 || p.Weights.TurnoverRate < 0 || p.Weights.GapPercent < 0 || p.Weights.Amount < 0 {
		return fmt.Errorf("%w: weights must be non-negative", ErrInvalidParameter)
	}
	if p.ThemeAlpha < 0 || p.ThemeAlpha > MaxThemeAlpha {
		return fmt.Errorf("%w: theme alpha %.4f outside [0, %.1f]", ErrInvalidParameter, p.ThemeAlpha, MaxThemeAlpha)
	}
	if p.RollingWindowDays < 1 {
		return fmt.Errorf("%w: rolling window must be at least 1 day, got %d", ErrInvalidParameter, p.RollingWindowDays)
	}
	switch p.SortMode {
	case SortCandidateFirst, SortHeatDesc:
	default:
		return fmt.Errorf("%w: unknown sort mode %q", ErrInvalidParameter, p.SortMode)
	}
	return nil
}
