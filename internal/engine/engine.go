package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/moyan/superforce/backend/internal/contracts"
	"github.com/moyan/superforce/backend/internal/strategyconfig"
	"github.com/moyan/superforce/backend/pkg/logger"
)

// Engine is the call-auction heat scoring and candidate ranking engine.
// A pure, synchronous computation over an immutable input batch: all
// per-call configuration arrives in the request, so concurrent
// invocations for different dates or parameter sets are safe.
type Engine struct {
	snapshots   contracts.SnapshotRepository
	periodStats contracts.PeriodStatRepository
	themes      contracts.ThemeRepository
	strategy    *strategyconfig.Config
	logger      *logger.Logger
}

// New creates an engine over the external repositories
func New(
	snapshots contracts.SnapshotRepository,
	periodStats contracts.PeriodStatRepository,
	themes contracts.ThemeRepository,
	strategy *strategyconfig.Config,
	log *logger.Logger,
) *Engine {
	return &Engine{
		snapshots:   snapshots,
		periodStats: periodStats,
		themes:      themes,
		strategy:    strategy,
		logger:      log.WithField("module", "engine"),
	}
}

// RankRequest is one ranking invocation
type RankRequest struct {
	TradeDate time.Time
	Limit     int // truncate to top N after full ranking; 0 = no limit
	Params    contracts.ScoringParameters
}

// Rank fetches the day's inputs and produces the ranked result set.
// Parameter violations are rejected at this boundary; a date without a
// collected snapshot returns the "no data" result instead of an error,
// so the caller can decide whether to trigger collection and retry.
func (e *Engine) Rank(ctx context.Context, req RankRequest) (*contracts.RankedResultSet, error) {
	if err := req.Params.Validate(); err != nil {
		return nil, err
	}
	if req.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must be non-negative, got %d", contracts.ErrInvalidParameter, req.Limit)
	}

	collected, err := e.snapshots.HasCollection(ctx, req.TradeDate)
	if err != nil {
		return nil, fmt.Errorf("check collection status: %w", err)
	}
	if !collected {
		e.logger.WithField("trade_date", req.TradeDate.Format("2006-01-02")).
			Info("No snapshot collected for date")
		return e.noDataResult(req.TradeDate), nil
	}

	snapshots, err := e.snapshots.GetByDate(ctx, req.TradeDate)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshots: %w", err)
	}

	profile, err := e.themes.GetHotness(ctx, req.TradeDate)
	if err != nil {
		return nil, fmt.Errorf("fetch theme hotness: %w", err)
	}

	stats, err := e.periodStats.GetWindow(ctx, req.TradeDate, req.Params.RollingWindowDays)
	if err != nil {
		return nil, fmt.Errorf("fetch period stats: %w", err)
	}

	return e.RankBatch(req.TradeDate, snapshots, profile, stats, req.Params, req.Limit), nil
}

// RankBatch is the pure core of the engine: deterministic given the
// snapshot batch, theme profile, period-stat window and parameters.
// Exposed separately so callers holding the inputs (and tests) can rank
// without repository round-trips.
func (e *Engine) RankBatch(
	tradeDate time.Time,
	snapshots []*contracts.AuctionSnapshot,
	profile contracts.ThemeProfile,
	stats []contracts.PeriodStat,
	params contracts.ScoringParameters,
	limit int,
) *contracts.RankedResultSet {
	regime := NewRegimeClassifier(e.strategy.Regime).Classify(params.RollingWindowDays, stats)

	alphaEffective := params.ThemeAlpha
	if params.DynamicAlpha {
		alphaEffective = NewAlphaCalibrator(e.strategy.Alpha).Calibrate(params.ThemeAlpha, regime, stats)
	}
	// Invariant: the alpha actually applied stays inside [0, 0.5]
	if alphaEffective < 0 {
		alphaEffective = 0
	}
	if alphaEffective > contracts.MaxThemeAlpha {
		alphaEffective = contracts.MaxThemeAlpha
	}

	// Caps are derived from the full population once per batch
	normalizer := NewNormalizer(e.strategy.Normalization, snapshots)
	scorer := NewScorer(params.Weights, e.strategy.Probability)

	skipped := 0
	candidates := make([]contracts.CandidateResult, 0, len(snapshots))
	for _, snap := range snapshots {
		if err := snap.Validate(); err != nil {
			// One bad row must not abort the day's ranking
			e.logger.WithError(err).Warn("Skipping malformed snapshot")
			skipped++
			continue
		}

		sub := normalizer.Normalize(snap)
		heat, factor := scorer.Score(sub, profile.Hotness(snap.Theme), alphaEffective)
		prob := scorer.LimitUpProbability(snap, heat)

		candidates = append(candidates, contracts.CandidateResult{
			AuctionSnapshot:    *snap,
			HeatScore:          heat,
			ThemeEnhanceFactor: factor,
			LikelyLimitUp:      scorer.LikelyLimitUp(prob),
			LikelyLimitUpProb:  prob,
		})
	}

	ranked, filtered := NewRanker(e.strategy.Screening).Rank(candidates, params)

	result := &contracts.RankedResultSet{
		TradeDate:  tradeDate,
		DataSource: contracts.DataSourceCollected,
		Candidates: ranked,
		Summary:    Summarize(ranked, regime, params.ThemeAlpha, alphaEffective, skipped),
	}
	result.Truncate(limit)

	e.logger.WithFields(map[string]interface{}{
		"trade_date":      tradeDate.Format("2006-01-02"),
		"input":           len(snapshots),
		"ranked":          len(ranked),
		"returned":        len(result.Candidates),
		"skipped":         skipped,
		"filters":         filtered,
		"regime":          string(regime.Label),
		"alpha_requested": params.ThemeAlpha,
		"alpha_effective": alphaEffective,
	}).Info("Ranking completed")

	return result
}

// noDataResult is the uncollected-date path: empty candidates, zeroed
// summary, data source "none".
func (e *Engine) noDataResult(tradeDate time.Time) *contracts.RankedResultSet {
	return &contracts.RankedResultSet{
		TradeDate:  tradeDate,
		DataSource: contracts.DataSourceNone,
		Candidates: []contracts.CandidateResult{},
		Summary:    contracts.Summary{},
	}
}
