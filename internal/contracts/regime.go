package contracts

import "time"

// RegimeLabel is the closed set of market regime classifications
type RegimeLabel string

const (
	RegimeCalm     RegimeLabel = "calm"
	RegimeActive   RegimeLabel = "active"
	RegimeVolatile RegimeLabel = "volatile"
)

// MarketRegimeState labels the trading day's overall character. Produced
// fresh per invocation from the PeriodStat window.
type MarketRegimeState struct {
	Label       RegimeLabel `json:"label"`
	WindowDays  int         `json:"window_days"`  // requested
	CoveredDays int         `json:"covered_days"` // actually available
	From        time.Time   `json:"from"`
	To          time.Time   `json:"to"`
	Confidence  float64     `json:"confidence"` // vote margin, 0-1
}

// PeriodStat is one trade date of realized market-level outcomes: the
// relationship between the heat-score top decile and the actual
// close-of-day limit-up rate, plus the breadth and dispersion statistics
// the regime classifier consumes. Read-only historical aggregate.
type PeriodStat struct {
	TradeDate            time.Time `json:"trade_date"`
	AdvancerRatio        float64   `json:"advancer_ratio"`  // share of stocks gapping up, 0-1
	AvgGapPercent        float64   `json:"avg_gap_percent"` // market-wide mean auction gap
	HeatStdDev           float64   `json:"heat_std_dev"`    // dispersion of heat scores
	MarketLimitUpRate    float64   `json:"market_limit_up_rate"`
	TopDecileLimitUpRate float64   `json:"top_decile_limit_up_rate"`
}

// Lift is the excess limit-up rate of the heat-score top decile over the
// whole market for this date.
func (p PeriodStat) Lift() float64 {
	return p.TopDecileLimitUpRate - p.MarketLimitUpRate
}

// ThemeProfile maps a theme name to its hotness factor for one trade
// date. Hotness is externally derived and always >= 1.0.
type ThemeProfile map[string]float64

// Hotness returns the factor for a theme, 1.0 (no boost) when the theme
// is unknown or below the floor.
func (t ThemeProfile) Hotness(theme string) float64 {
	if h, ok := t[theme]; ok && h > 1.0 {
		return h
	}
	return 1.0
}
