package engine

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/moyan/superforce/backend/internal/contracts"
	"github.com/moyan/superforce/backend/internal/strategyconfig"
)

// SubScores are the four bounded [0,1] metric sub-scores of one snapshot
type SubScores struct {
	VolumeRatio float64
	Turnover    float64
	Gap         float64
	Amount      float64
}

// Normalizer maps raw auction metrics to bounded sub-scores. Caps are
// resolved once per batch so every stock of the day shares one scale.
type Normalizer struct {
	cfg strategyconfig.Normalization

	volumeRatioCap float64
	turnoverCap    float64
	amountCap      float64
}

// NewNormalizer creates a normalizer for one day's snapshot population.
// In population cap mode the squash caps are the configured quantile of
// the batch, falling back to the fixed caps when the batch is too thin
// to derive a usable quantile.
func NewNormalizer(cfg strategyconfig.Normalization, population []*contracts.AuctionSnapshot) *Normalizer {
	n := &Normalizer{
		cfg:            cfg,
		volumeRatioCap: cfg.VolumeRatioCap,
		turnoverCap:    cfg.TurnoverCapPct,
		amountCap:      cfg.AmountCap,
	}

	if cfg.CapMode == strategyconfig.CapPopulation {
		if cap := populationCap(population, cfg.PopulationQuantile, func(s *contracts.AuctionSnapshot) float64 { return s.VolumeRatio }); cap > 0 {
			n.volumeRatioCap = cap
		}
		if cap := populationCap(population, cfg.PopulationQuantile, func(s *contracts.AuctionSnapshot) float64 { return s.TurnoverRate }); cap > 0 {
			n.turnoverCap = cap
		}
		if cap := populationCap(population, cfg.PopulationQuantile, func(s *contracts.AuctionSnapshot) float64 { return s.AuctionAmount }); cap > 0 {
			n.amountCap = cap
		}
	}

	return n
}

// Normalize produces the four sub-scores for one snapshot. A metric with
// a non-finite or missing raw value contributes 0 instead of propagating
// NaN into the composite.
func (n *Normalizer) Normalize(snap *contracts.AuctionSnapshot) SubScores {
	return SubScores{
		VolumeRatio: logSquash(snap.VolumeRatio, n.volumeRatioCap),
		Turnover:    logSquash(snap.TurnoverRate, n.turnoverCap),
		Gap:         gapScore(snap.GapPercent, n.cfg.GapCeilingPct),
		Amount:      logSquash(snap.AuctionAmount, n.amountCap),
	}
}

// logSquash maps a long-tailed non-negative metric into [0,1]:
// log1p(x)/log1p(cap), clipped. Extreme outliers saturate at 1 instead
// of dominating the composite.
func logSquash(x, cap float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) || x <= 0 || cap <= 0 {
		return 0
	}
	return clamp01(math.Log1p(x) / math.Log1p(cap))
}

// gapScore maps the signed auction gap into [0,1]. Only non-negative
// gaps contribute; the ceiling (10% ~ limit-up) scores 1.0.
func gapScore(gapPct, ceiling float64) float64 {
	if math.IsNaN(gapPct) || math.IsInf(gapPct, 0) || gapPct <= 0 || ceiling <= 0 {
		return 0
	}
	return clamp01(gapPct / ceiling)
}

// populationCap derives a squash cap from the batch: the configured
// quantile over finite positive values. Returns 0 when not derivable.
func populationCap(population []*contracts.AuctionSnapshot, q float64, metric func(*contracts.AuctionSnapshot) float64) float64 {
	values := make([]float64, 0, len(population))
	for _, snap := range population {
		v := metric(snap)
		if !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0 {
			values = append(values, v)
		}
	}
	if len(values) < 2 {
		return 0
	}

	sort.Float64s(values)
	return stat.Quantile(q, stat.Empirical, values, nil)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
