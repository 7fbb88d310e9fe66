package collector

import (
	"context"
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/moyan/superforce/backend/internal/contracts"
	"github.com/moyan/superforce/backend/internal/engine"
	"github.com/moyan/superforce/backend/internal/external/eastmoney"
	"github.com/moyan/superforce/backend/pkg/logger"
)

// Settler produces the realized outcome statistics after the close: how
// the morning's heat ranking related to the day's actual limit-ups.
// The resulting PeriodStat feeds the next days' regime classification
// and alpha calibration.
type Settler struct {
	engine *engine.Engine
	stats  contracts.PeriodStatRepository
	client *eastmoney.Client
	logger *logger.Logger
}

// NewSettler creates a new Settler instance
func NewSettler(
	eng *engine.Engine,
	stats contracts.PeriodStatRepository,
	client *eastmoney.Client,
	log *logger.Logger,
) *Settler {
	return &Settler{
		engine: eng,
		stats:  stats,
		client: client,
		logger: log.WithField("module", "settlement"),
	}
}

// Settle computes and stores the trade date's PeriodStat. The morning
// heat ranking is recomputed with the theme boost off so the measured
// lift reflects the raw score, not the boost being calibrated.
func (s *Settler) Settle(ctx context.Context, tradeDate time.Time) (*contracts.PeriodStat, error) {
	params := contracts.DefaultScoringParameters()
	params.SortMode = contracts.SortHeatDesc
	params.ThemeAlpha = 0
	params.DynamicAlpha = false

	ranking, err := s.engine.Rank(ctx, engine.RankRequest{TradeDate: tradeDate, Params: params})
	if err != nil {
		return nil, fmt.Errorf("recompute morning ranking: %w", err)
	}
	if ranking.DataSource == contracts.DataSourceNone || len(ranking.Candidates) == 0 {
		return nil, fmt.Errorf("no collected snapshot for %s, nothing to settle", tradeDate.Format("2006-01-02"))
	}

	closes, err := s.client.FetchCloseQuotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch closing quotes: %w", err)
	}

	periodStat := buildPeriodStat(tradeDate, ranking.Candidates, closes)

	if err := s.stats.Save(ctx, &periodStat); err != nil {
		return nil, fmt.Errorf("save period stat: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"trade_date":      tradeDate.Format("2006-01-02"),
		"universe":        len(ranking.Candidates),
		"advancer_ratio":  periodStat.AdvancerRatio,
		"market_rate":     periodStat.MarketLimitUpRate,
		"top_decile_rate": periodStat.TopDecileLimitUpRate,
		"lift":            periodStat.Lift(),
	}).Info("Outcome settlement completed")

	return &periodStat, nil
}

// buildPeriodStat aggregates the heat-ordered candidates against the
// closing quotes. Stocks without a closing quote (suspended intraday)
// stay in the denominators as non-limit-ups.
func buildPeriodStat(tradeDate time.Time, candidates []contracts.CandidateResult, closes map[string]eastmoney.CloseQuote) contracts.PeriodStat {
	n := len(candidates)

	gaps := make([]float64, n)
	heats := make([]float64, n)
	advancers := 0
	marketLimitUps := 0
	for i, c := range candidates {
		gaps[i] = c.GapPercent
		heats[i] = c.HeatScore
		if c.GapPercent > 0 {
			advancers++
		}
		if q, ok := closes[c.Code]; ok && q.ClosedLimitUp() {
			marketLimitUps++
		}
	}

	heatStdDev := 0.0
	if n > 1 {
		heatStdDev = stat.StdDev(heats, nil)
	}

	decile := n / 10
	if decile < 1 {
		decile = 1
	}
	decileLimitUps := 0
	for _, c := range candidates[:decile] {
		if q, ok := closes[c.Code]; ok && q.ClosedLimitUp() {
			decileLimitUps++
		}
	}

	return contracts.PeriodStat{
		TradeDate:            tradeDate,
		AdvancerRatio:        float64(advancers) / float64(n),
		AvgGapPercent:        stat.Mean(gaps, nil),
		HeatStdDev:           heatStdDev,
		MarketLimitUpRate:    float64(marketLimitUps) / float64(n),
		TopDecileLimitUpRate: float64(decileLimitUps) / float64(decile),
	}
}
