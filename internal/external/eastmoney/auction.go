package eastmoney

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/moyan/superforce/backend/internal/contracts"
)

// Market screener field ids on the clist endpoint. The API names fields
// f<N>; only the ones the snapshot needs are requested.
const quoteFields = "f2,f5,f6,f8,f9,f10,f12,f14,f18,f38,f100"

// fs selector: Shanghai and Shenzhen main boards plus ChiNext/STAR
const quoteMarkets = "m:0+t:6,m:0+t:80,m:1+t:2,m:1+t:23"

const quotePageSize = 200

type clistResponse struct {
	RC   int        `json:"rc"`
	Data *clistData `json:"data"`
}

type clistData struct {
	Total int        `json:"total"`
	Diff  []quoteRow `json:"diff"`
}

// quoteRow is one stock of the screener page
type quoteRow struct {
	Price        looseFloat `json:"f2"`  // latest (auction) price
	Volume       looseFloat `json:"f5"`  // lots
	Amount       looseFloat `json:"f6"`  // yuan
	TurnoverRate looseFloat `json:"f8"`  // percent
	PERatio      looseFloat `json:"f9"`
	VolumeRatio  looseFloat `json:"f10"`
	Code         string     `json:"f12"`
	Name         string     `json:"f14"`
	PrevClose    looseFloat `json:"f18"`
	FloatShares  looseFloat `json:"f38"`
	Industry     string     `json:"f100"`
}

// FetchAuctionSnapshots pulls the whole-market screener page by page at
// the end of the call auction and converts each row into a snapshot for
// the trade date. Rows the venue has no quote for yet are kept; the
// engine's per-row validation decides what to skip.
func (c *Client) FetchAuctionSnapshots(ctx context.Context, tradeDate time.Time) ([]*contracts.AuctionSnapshot, error) {
	var snapshots []*contracts.AuctionSnapshot

	for page := 1; ; page++ {
		resp, err := c.fetchQuotePage(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("fetch quote page %d: %w", page, err)
		}
		if resp.Data == nil || len(resp.Data.Diff) == 0 {
			break
		}

		for _, row := range resp.Data.Diff {
			snapshots = append(snapshots, rowToSnapshot(row, tradeDate))
		}

		if len(snapshots) >= resp.Data.Total {
			break
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"trade_date": tradeDate.Format("2006-01-02"),
		"count":      len(snapshots),
	}).Info("Fetched auction snapshots")

	return snapshots, nil
}

func (c *Client) fetchQuotePage(ctx context.Context, page int) (*clistResponse, error) {
	params := url.Values{}
	params.Set("pn", fmt.Sprintf("%d", page))
	params.Set("pz", fmt.Sprintf("%d", quotePageSize))
	params.Set("po", "1")
	params.Set("np", "1")
	params.Set("fltt", "2")
	params.Set("invt", "2")
	params.Set("fid", "f6")
	params.Set("fs", quoteMarkets)
	params.Set("fields", quoteFields)

	fullURL := fmt.Sprintf("%s/api/qt/clist/get?%s", c.quoteBaseURL, params.Encode())

	var resp clistResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, &resp); err != nil {
		return nil, err
	}
	if resp.RC != 0 {
		return nil, fmt.Errorf("quote API returned rc=%d", resp.RC)
	}
	return &resp, nil
}

// rowToSnapshot converts one screener row. The gap is recomputed from
// price and previous close rather than trusting the API's change field.
func rowToSnapshot(row quoteRow, tradeDate time.Time) *contracts.AuctionSnapshot {
	price := row.Price.Value()
	prevClose := row.PrevClose.Value()

	return &contracts.AuctionSnapshot{
		Code:          row.Code,
		Name:          row.Name,
		Industry:      row.Industry,
		TradeDate:     tradeDate,
		AuctionPrice:  price,
		PrevClose:     prevClose,
		GapPercent:    contracts.ComputeGapPercent(price, prevClose),
		AuctionVolume: int64(row.Volume.Value()) * 100, // lots of 100 shares
		AuctionAmount: row.Amount.Value(),
		TurnoverRate:  row.TurnoverRate.Value(),
		VolumeRatio:   row.VolumeRatio.Value(),
		FloatShares:   int64(row.FloatShares.Value()),
		PERatio:       row.PERatio.Value(),

		AuctionLimitUp: isAtLimitUp(row.Code, price, prevClose),
	}
}

// isAtLimitUp checks whether the auction price already sits at the daily
// limit. Main-board limit is 10%, ChiNext (30xxxx) and STAR (688xxx) 20%.
func isAtLimitUp(code string, price, prevClose float64) bool {
	if price <= 0 || prevClose <= 0 {
		return false
	}

	limitPct := 0.10
	if len(code) == 6 && (code[:2] == "30" || code[:3] == "688") {
		limitPct = 0.20
	}

	// Exchanges round the limit price to the fen
	limitPrice := roundToFen(prevClose * (1 + limitPct))
	return price >= limitPrice-1e-9
}

func roundToFen(price float64) float64 {
	return float64(int64(price*100+0.5)) / 100
}
