package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/moyan/superforce/backend/internal/contracts"
	"github.com/moyan/superforce/backend/internal/strategyconfig"
)

func newTestClassifier() *RegimeClassifier {
	return NewRegimeClassifier(strategyconfig.Default().Regime)
}

func statWindow(n int, breadth, gap, dispersion float64) []contracts.PeriodStat {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	stats := make([]contracts.PeriodStat, n)
	for i := range stats {
		stats[i] = contracts.PeriodStat{
			TradeDate:     base.AddDate(0, 0, -i),
			AdvancerRatio: breadth,
			AvgGapPercent: gap,
			HeatStdDev:    dispersion,
		}
	}
	return stats
}

func TestClassify_EmptyWindow(t *testing.T) {
	state := newTestClassifier().Classify(20, nil)

	assert.Equal(t, contracts.RegimeCalm, state.Label)
	assert.Equal(t, 20, state.WindowDays)
	assert.Equal(t, 0, state.CoveredDays)
	assert.Equal(t, 0.0, state.Confidence)
}

func TestClassify_InsufficientHistory(t *testing.T) {
	// Below min_samples the classifier reports the neutral default but
	// still tells the caller how much history it had.
	state := newTestClassifier().Classify(20, statWindow(3, 0.9, 5, 30))

	assert.Equal(t, contracts.RegimeCalm, state.Label)
	assert.Equal(t, 3, state.CoveredDays)
	assert.Equal(t, 0.0, state.Confidence)
	assert.False(t, state.From.IsZero())
	assert.False(t, state.To.IsZero())
}

func TestClassify_Calm(t *testing.T) {
	// Narrow breadth, tiny gaps, tight dispersion: two calm votes
	state := newTestClassifier().Classify(20, statWindow(10, 0.40, 0.5, 8))

	assert.Equal(t, contracts.RegimeCalm, state.Label)
	assert.Equal(t, 10, state.CoveredDays)
	assert.InDelta(t, 2.0/3.0, state.Confidence, 1e-9)
}

func TestClassify_Active(t *testing.T) {
	// Broad participation with moderate gaps and spread: active majority
	state := newTestClassifier().Classify(20, statWindow(10, 0.65, 1.2, 10))

	assert.Equal(t, contracts.RegimeActive, state.Label)
	assert.InDelta(t, 2.0/3.0, state.Confidence, 1e-9)
}

func TestClassify_Volatile(t *testing.T) {
	// Large gaps and wide heat dispersion: volatile majority
	state := newTestClassifier().Classify(20, statWindow(10, 0.45, 3.5, 25))

	assert.Equal(t, contracts.RegimeVolatile, state.Label)
	assert.InDelta(t, 2.0/3.0, state.Confidence, 1e-9)
}

func TestClassify_SplitVoteResolvesConservative(t *testing.T) {
	// One vote each way (calm breadth, volatile gaps, active dispersion):
	// the tie goes to volatile.
	state := newTestClassifier().Classify(20, statWindow(10, 0.40, 3.5, 10))

	assert.Equal(t, contracts.RegimeVolatile, state.Label)
	assert.InDelta(t, 1.0/3.0, state.Confidence, 1e-9)
}

func TestClassify_WindowRange(t *testing.T) {
	stats := statWindow(6, 0.5, 1, 10)
	state := newTestClassifier().Classify(20, stats)

	assert.Equal(t, stats[5].TradeDate, state.From)
	assert.Equal(t, stats[0].TradeDate, state.To)
}
