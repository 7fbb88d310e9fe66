package engine

import (
	"math"
	"time"

	"github.com/moyan/superforce/backend/internal/contracts"
	"github.com/moyan/superforce/backend/internal/strategyconfig"
)

// RegimeClassifier labels the trading day's overall character from the
// rolling window of realized market statistics. Pure function of the
// window; produced fresh per invocation.
type RegimeClassifier struct {
	cfg strategyconfig.Regime
}

// NewRegimeClassifier creates a classifier with the strategy thresholds
func NewRegimeClassifier(cfg strategyconfig.Regime) *RegimeClassifier {
	return &RegimeClassifier{cfg: cfg}
}

// Classify runs one vote per indicator (breadth, average gap magnitude,
// heat dispersion) and resolves by majority; ties resolve volatile >
// active > calm so the calibrator errs conservative. A window shorter
// than min_samples falls back to the neutral default (calm) instead of
// failing; the covered day count is always reported.
func (c *RegimeClassifier) Classify(windowDays int, stats []contracts.PeriodStat) contracts.MarketRegimeState {
	state := contracts.MarketRegimeState{
		Label:       contracts.RegimeCalm,
		WindowDays:  windowDays,
		CoveredDays: len(stats),
	}

	if len(stats) == 0 {
		return state
	}

	state.From, state.To = windowRange(stats)

	if len(stats) < c.cfg.MinSamples {
		// Insufficient history: neutral default, zero confidence
		return state
	}

	var breadthSum, gapAbsSum, dispersionSum float64
	for _, s := range stats {
		breadthSum += s.AdvancerRatio
		gapAbsSum += math.Abs(s.AvgGapPercent)
		dispersionSum += s.HeatStdDev
	}
	n := float64(len(stats))

	votes := map[contracts.RegimeLabel]int{}

	// Breadth vote: broad participation reads active
	if breadthSum/n > c.cfg.BreadthActiveThreshold {
		votes[contracts.RegimeActive]++
	} else {
		votes[contracts.RegimeCalm]++
	}

	// Gap magnitude vote: large average gaps read volatile
	if gapAbsSum/n > c.cfg.GapVolatileThresholdPct {
		votes[contracts.RegimeVolatile]++
	} else {
		votes[contracts.RegimeCalm]++
	}

	// Heat dispersion vote: a wide score spread reads volatile
	if dispersionSum/n > c.cfg.DispersionVolatile {
		votes[contracts.RegimeVolatile]++
	} else {
		votes[contracts.RegimeActive]++
	}

	state.Label, state.Confidence = resolveVotes(votes)
	return state
}

// resolveVotes picks the majority label; ties break toward the more
// cautious regime.
func resolveVotes(votes map[contracts.RegimeLabel]int) (contracts.RegimeLabel, float64) {
	order := []contracts.RegimeLabel{contracts.RegimeVolatile, contracts.RegimeActive, contracts.RegimeCalm}

	winner := contracts.RegimeCalm
	maxVotes := 0
	total := 0
	for _, label := range order {
		total += votes[label]
		if votes[label] > maxVotes {
			maxVotes = votes[label]
			winner = label
		}
	}

	if total == 0 {
		return contracts.RegimeCalm, 0
	}
	return winner, float64(maxVotes) / float64(total)
}

// windowRange returns the oldest and newest trade dates of the window
func windowRange(stats []contracts.PeriodStat) (from, to time.Time) {
	from, to = stats[0].TradeDate, stats[0].TradeDate
	for _, s := range stats[1:] {
		if s.TradeDate.Before(from) {
			from = s.TradeDate
		}
		if s.TradeDate.After(to) {
			to = s.TradeDate
		}
	}
	return from, to
}
