package contracts

import (
	"fmt"
	"math"
	"time"
)

// AuctionSnapshot is the state of one stock at the end of the pre-market
// call auction, one row per stock per trade date. It is produced by the
// collection pipeline and immutable afterwards unless a caller forces
// re-collection; the engine only reads it.
type AuctionSnapshot struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Industry  string    `json:"industry"`
	Theme     string    `json:"theme"`
	TradeDate time.Time `json:"trade_date"`

	AuctionPrice float64 `json:"auction_price"`
	PrevClose    float64 `json:"prev_close"`
	GapPercent   float64 `json:"gap_percent"` // (price-prevClose)/prevClose*100

	AuctionVolume int64   `json:"auction_volume"`
	AuctionAmount float64 `json:"auction_amount"`
	TurnoverRate  float64 `json:"turnover_rate"` // percent
	VolumeRatio   float64 `json:"volume_ratio"`
	FloatShares   int64   `json:"float_shares"`
	PERatio       float64 `json:"pe_ratio"`

	// Price already pinned at the limit during the auction
	AuctionLimitUp bool `json:"auction_limit_up"`
}

// ComputeGapPercent derives the gap from auction price and previous close.
// Returns 0 when the previous close is not positive.
func ComputeGapPercent(price, prevClose float64) float64 {
	if prevClose <= 0 {
		return 0
	}
	return (price - prevClose) / prevClose * 100
}

// Validate classifies malformed snapshots. A snapshot failing validation is
// skipped as a single row, never aborting the batch.
func (s *AuctionSnapshot) Validate() error {
	if s.Code == "" {
		return fmt.Errorf("snapshot missing stock code")
	}
	if !isFinite(s.AuctionPrice) || s.AuctionPrice <= 0 {
		return fmt.Errorf("snapshot %s: invalid auction price %v", s.Code, s.AuctionPrice)
	}
	if !isFinite(s.PrevClose) || s.PrevClose <= 0 {
		return fmt.Errorf("snapshot %s: invalid previous close %v", s.Code, s.PrevClose)
	}
	if !isFinite(s.GapPercent) {
		return fmt.Errorf("snapshot %s: non-finite gap percent", s.Code)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
