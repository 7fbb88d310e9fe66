package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/moyan/superforce/backend/internal/contracts"
	"github.com/moyan/superforce/backend/internal/strategyconfig"
)

func newTestScorer() *Scorer {
	return NewScorer(contracts.DefaultWeights(), strategyconfig.Default().Probability)
}

func TestBaseScore(t *testing.T) {
	s := newTestScorer()

	assert.Equal(t, 0.0, s.BaseScore(SubScores{}))
	assert.InDelta(t, 100.0, s.BaseScore(SubScores{VolumeRatio: 1, Turnover: 1, Gap: 1, Amount: 1}), 1e-9)

	// 0.4*0.5 + 0.2*0.5 + 0.3*0.5 + 0.1*0.5 = 0.5
	assert.InDelta(t, 50.0, s.BaseScore(SubScores{VolumeRatio: 0.5, Turnover: 0.5, Gap: 0.5, Amount: 0.5}), 1e-9)
}

func TestScore_Bounds(t *testing.T) {
	s := newTestScorer()

	cases := []struct {
		sub     SubScores
		hotness float64
		alpha   float64
	}{
		{SubScores{}, 1.0, 0},
		{SubScores{VolumeRatio: 1, Turnover: 1, Gap: 1, Amount: 1}, 2.0, 0.5},
		{SubScores{VolumeRatio: 0.9, Gap: 0.9}, 1.8, 0.5},
		{SubScores{Amount: 0.3}, 1.0, 0.25},
	}
	for _, tc := range cases {
		heat, factor := s.Score(tc.sub, tc.hotness, tc.alpha)
		assert.GreaterOrEqual(t, heat, 0.0)
		assert.LessOrEqual(t, heat, 100.0)
		assert.GreaterOrEqual(t, factor, 1.0)
	}
}

func TestScore_ThemeBoost(t *testing.T) {
	s := newTestScorer()

	sub := SubScores{VolumeRatio: 0.5, Turnover: 0.5, Gap: 0.5, Amount: 0.5}

	// hotness 1.4 at alpha 0.25 -> factor 1.1
	heat, factor := s.Score(sub, 1.4, 0.25)
	assert.InDelta(t, 1.1, factor, 1e-9)
	assert.InDelta(t, 55.0, heat, 1e-9)

	// Unknown theme (hotness 1.0) leaves the base score untouched
	flat, factorFlat := s.Score(sub, 1.0, 0.25)
	assert.Equal(t, 1.0, factorFlat)
	assert.InDelta(t, 50.0, flat, 1e-9)

	// Alpha 0 disables the boost entirely
	off, factorOff := s.Score(sub, 1.4, 0)
	assert.Equal(t, 1.0, factorOff)
	assert.InDelta(t, 50.0, off, 1e-9)
}

func TestScore_ClampsAtHundred(t *testing.T) {
	s := newTestScorer()

	heat, factor := s.Score(SubScores{VolumeRatio: 1, Turnover: 1, Gap: 1, Amount: 1}, 2.0, 0.5)
	assert.Equal(t, 100.0, heat)
	assert.InDelta(t, 1.5, factor, 1e-9)
}

func TestLimitUpProbability(t *testing.T) {
	s := newTestScorer()

	// Sealed at the auction limit is a certainty
	sealed := &contracts.AuctionSnapshot{AuctionLimitUp: true, GapPercent: 9.9}
	assert.Equal(t, 1.0, s.LimitUpProbability(sealed, 30))

	snap := &contracts.AuctionSnapshot{GapPercent: 3}

	// At the midpoint with the gap term, probability clears 0.5
	pMid := s.LimitUpProbability(snap, 70)
	assert.Greater(t, pMid, 0.5)

	// Monotone in heat
	pLow := s.LimitUpProbability(snap, 40)
	pHigh := s.LimitUpProbability(snap, 90)
	assert.Less(t, pLow, pMid)
	assert.Greater(t, pHigh, pMid)

	// Bounded
	assert.Greater(t, pLow, 0.0)
	assert.Less(t, pHigh, 1.0)

	// A negative gap contributes nothing beyond the heat term
	down := &contracts.AuctionSnapshot{GapPercent: -4}
	flat := &contracts.AuctionSnapshot{GapPercent: 0}
	assert.Equal(t, s.LimitUpProbability(flat, 60), s.LimitUpProbability(down, 60))
}

func TestLikelyLimitUp(t *testing.T) {
	s := newTestScorer()

	assert.True(t, s.LikelyLimitUp(0.5))
	assert.True(t, s.LikelyLimitUp(0.9))
	assert.False(t, s.LikelyLimitUp(0.49))
}
