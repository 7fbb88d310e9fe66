package contracts

import "time"

// Data source indicator on RankedResultSet
const (
	DataSourceCollected = "collected"
	DataSourceNone      = "none"
)

// CandidateResult is one surviving stock of the ranked result: the raw
// snapshot plus the scoring outputs.
type CandidateResult struct {
	AuctionSnapshot

	HeatScore          float64 `json:"heat_score"`           // 0-100
	ThemeEnhanceFactor float64 `json:"theme_enhance_factor"` // >= 1.0, effective multiplier applied
	LikelyLimitUp      bool    `json:"likely_limit_up"`
	LikelyLimitUpProb  float64 `json:"likely_limit_up_prob"` // 0-1
	Rank               int     `json:"rank"`                 // 1-based, contiguous
}

// Summary aggregates the final filtered candidate set
type Summary struct {
	Count               int     `json:"count"`
	AvgHeat             float64 `json:"avg_heat"`
	TotalAmount         float64 `json:"total_amount"`
	LimitUpCandidates   int     `json:"limit_up_candidates"`
	MarketRegime        string  `json:"market_regime"`
	ThemeAlphaInput     float64 `json:"theme_alpha_input"`
	ThemeAlphaEffective float64 `json:"theme_alpha_effective"`
	CoveredDays         int     `json:"covered_days"` // rolling window actually available
	SkippedRows         int     `json:"skipped_rows"` // malformed snapshots excluded
}

// RankedResultSet is the full output of one ranking invocation
type RankedResultSet struct {
	TradeDate  time.Time         `json:"trade_date"`
	DataSource string            `json:"data_source"`
	Candidates []CandidateResult `json:"candidates"`
	Summary    Summary           `json:"summary"`
}

// Truncate keeps the top n candidates. Applied after full ranking, never
// before; ranks are preserved as assigned.
func (r *RankedResultSet) Truncate(n int) {
	if n > 0 && len(r.Candidates) > n {
		r.Candidates = r.Candidates[:n]
	}
}

// TopCandidate returns the rank-1 entry
func (r *RankedResultSet) TopCandidate() (*CandidateResult, bool) {
	if len(r.Candidates) == 0 {
		return nil, false
	}
	return &r.Candidates[0], true
}
