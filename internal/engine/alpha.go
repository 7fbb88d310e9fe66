package engine

import (
	"gonum.org/v1/gonum/stat"

	"github.com/moyan/superforce/backend/internal/contracts"
	"github.com/moyan/superforce/backend/internal/strategyconfig"
)

// AlphaCalibrator adjusts the theme-boost strength from the rolling
// window of realized outcomes. Pure and stateless per call: all state is
// the PeriodStat window passed in.
type AlphaCalibrator struct {
	cfg strategyconfig.Alpha
}

// NewAlphaCalibrator creates a calibrator with the strategy constants
func NewAlphaCalibrator(cfg strategyconfig.Alpha) *AlphaCalibrator {
	return &AlphaCalibrator{cfg: cfg}
}

// Calibrate shrinks the requested alpha toward 0 when the realized lift
// of the heat-score top decile over the market is weak or negative, and
// lets it approach (never exceed) the requested value when lift is
// strong. Monotone in lift, bounded in [0, requested] ⊆ [0, 0.5]. A
// volatile regime applies an extra conservative factor. With
// insufficient history the requested value passes through unadjusted
// (aside from the regime factor).
func (c *AlphaCalibrator) Calibrate(requested float64, regime contracts.MarketRegimeState, stats []contracts.PeriodStat) float64 {
	// Defensive clamp; the boundary has already validated the input
	alpha := requested
	if alpha < 0 {
		alpha = 0
	}
	if alpha > contracts.MaxThemeAlpha {
		alpha = contracts.MaxThemeAlpha
	}

	if len(stats) >= c.cfg.MinSamples {
		lifts := make([]float64, len(stats))
		for i, s := range stats {
			lifts[i] = s.Lift()
		}

		scale := clamp01(stat.Mean(lifts, nil) / c.cfg.LiftTarget)
		alpha *= scale
	}

	if regime.Label == contracts.RegimeVolatile {
		alpha *= c.cfg.VolatileFactor
	}

	return alpha
}
