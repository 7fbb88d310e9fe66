package engine

import (
	"sort"
	"strings"

	"github.com/moyan/superforce/backend/internal/contracts"
	"github.com/moyan/superforce/backend/internal/strategyconfig"
)

// Ranker deduplicates, filters, orders and ranks the scored candidates.
type Ranker struct {
	cfg strategyconfig.Screening
}

// NewRanker creates a ranker with the strategy screening constants
func NewRanker(cfg strategyconfig.Screening) *Ranker {
	return &Ranker{cfg: cfg}
}

// Rank runs the full pipeline: dedupe (keep first) -> exclusion filters
// -> sort -> contiguous 1..N rank assignment. Returns the surviving
// candidates and a filter-name -> dropped-count map. An empty survivor
// list is a normal result, not an error.
func (r *Ranker) Rank(candidates []contracts.CandidateResult, params contracts.ScoringParameters) ([]contracts.CandidateResult, map[string]int) {
	filtered := make(map[string]int)

	// 1. Drop duplicate stock codes, keeping the first occurrence.
	// Collection upstream should not duplicate, but the ranker stays
	// defensive.
	seen := make(map[string]bool, len(candidates))
	deduped := make([]contracts.CandidateResult, 0, len(candidates))
	for _, c := range candidates {
		if seen[c.Code] {
			filtered["duplicate"]++
			continue
		}
		seen[c.Code] = true
		deduped = append(deduped, c)
	}

	// 2. Exclusion filters
	passed := make([]contracts.CandidateResult, 0, len(deduped))
	for _, c := range deduped {
		if reason := r.checkExclusions(&c, params); reason != "" {
			filtered[reason]++
			continue
		}
		passed = append(passed, c)
	}

	// 3. Sort. Ties always break by stock code ascending so the order
	// is stable and deterministic.
	sort.SliceStable(passed, func(i, j int) bool {
		a, b := &passed[i], &passed[j]

		if params.SortMode == contracts.SortCandidateFirst && a.LikelyLimitUp != b.LikelyLimitUp {
			return a.LikelyLimitUp
		}
		if a.HeatScore != b.HeatScore {
			return a.HeatScore > b.HeatScore
		}
		return a.Code < b.Code
	})

	// 4. Ranks are recomputed from the post-filter order; they are not
	// stable across different filter settings.
	for i := range passed {
		passed[i].Rank = i + 1
	}

	return passed, filtered
}

// checkExclusions returns the filter name that drops the candidate, or
// empty string when it passes.
func (r *Ranker) checkExclusions(c *contracts.CandidateResult, params contracts.ScoringParameters) string {
	if isSpecialTreatment(c.Name) {
		return "st_name"
	}

	if params.ExcludeAuctionLimitUp && c.AuctionLimitUp {
		return "auction_limit_up"
	}

	if params.PEFilterEnabled {
		if c.PERatio <= 0 || c.PERatio > r.cfg.MaxPE {
			return "pe_range"
		}
	}

	if params.LowGapOnly && c.GapPercent >= r.cfg.LowGapMaxPct {
		return "low_gap"
	}

	return ""
}

// isSpecialTreatment matches ST / *ST names and delisting-flagged names
func isSpecialTreatment(name string) bool {
	return strings.Contains(name, "ST") || strings.Contains(name, "退")
}

// Summarize computes the aggregate statistics over the final filtered
// set. Zero counters for an empty set.
func Summarize(candidates []contracts.CandidateResult, regime contracts.MarketRegimeState, alphaInput, alphaEffective float64, skipped int) contracts.Summary {
	summary := contracts.Summary{
		Count:               len(candidates),
		MarketRegime:        string(regime.Label),
		ThemeAlphaInput:     alphaInput,
		ThemeAlphaEffective: alphaEffective,
		CoveredDays:         regime.CoveredDays,
		SkippedRows:         skipped,
	}

	if len(candidates) == 0 {
		return summary
	}

	var heatSum float64
	for _, c := range candidates {
		heatSum += c.HeatScore
		summary.TotalAmount += c.AuctionAmount
		if c.LikelyLimitUp {
			summary.LimitUpCandidates++
		}
	}
	summary.AvgHeat = heatSum / float64(len(candidates))

	return summary
}
