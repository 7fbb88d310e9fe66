package engine

import (
	"math"

	"github.com/moyan/superforce/backend/internal/contracts"
	"github.com/moyan/superforce/backend/internal/strategyconfig"
)

// Scorer combines normalized sub-scores and the calibrated theme boost
// into one heat score, and estimates a limit-up probability.
type Scorer struct {
	weights contracts.Weights
	prob    strategyconfig.Probability
}

// NewScorer creates a scorer for one invocation's weight vector
func NewScorer(weights contracts.Weights, prob strategyconfig.Probability) *Scorer {
	return &Scorer{weights: weights, prob: prob}
}

// BaseScore is the unboosted composite: 100 * sum(weight_i * sub_i)
func (s *Scorer) BaseScore(sub SubScores) float64 {
	return 100 * (sub.VolumeRatio*s.weights.VolumeRatio +
		sub.Turnover*s.weights.TurnoverRate +
		sub.Gap*s.weights.GapPercent +
		sub.Amount*s.weights.Amount)
}

// Score applies the theme enhancement to the base score and clamps the
// result back to [0,100]. The enhance factor never dampens:
// factor = 1 + alpha*(hotness-1) with hotness >= 1 and alpha >= 0.
func (s *Scorer) Score(sub SubScores, themeHotness, alphaEffective float64) (heat, enhanceFactor float64) {
	base := s.BaseScore(sub)

	enhanceFactor = 1 + alphaEffective*(themeHotness-1)
	if enhanceFactor < 1 {
		enhanceFactor = 1
	}

	heat = base * enhanceFactor
	if heat > 100 {
		heat = 100
	}
	if heat < 0 {
		heat = 0
	}
	return heat, enhanceFactor
}

// LimitUpProbability estimates the chance the stock seals the limit
// during the day. Snapshots already pinned at the auction limit map to
// 1.0; otherwise a bounded logistic over the boosted heat score and the
// positive part of the gap. Monotone in both inputs.
func (s *Scorer) LimitUpProbability(snap *contracts.AuctionSnapshot, heat float64) float64 {
	if snap.AuctionLimitUp {
		return 1.0
	}

	gap := snap.GapPercent
	if gap < 0 {
		gap = 0
	}

	z := s.prob.Slope*(heat-s.prob.Midpoint) + s.prob.GapCoef*gap
	return 1 / (1 + math.Exp(-z))
}

// LikelyLimitUp is true when the probability clears the configured
// threshold.
func (s *Scorer) LikelyLimitUp(prob float64) bool {
	return prob >= s.prob.Threshold
}
