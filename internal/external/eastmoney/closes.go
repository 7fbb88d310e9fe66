package eastmoney

import (
	"context"
	"fmt"
	"net/url"
)

// CloseQuote is one stock's end-of-day state, used by outcome settlement
type CloseQuote struct {
	Code       string
	ChangePct  float64
	ClosePrice float64
	PrevClose  float64
}

type closeRow struct {
	ChangePct looseFloat `json:"f3"`
	Price     looseFloat `json:"f2"`
	Code      string     `json:"f12"`
	PrevClose looseFloat `json:"f18"`
}

type closeListResponse struct {
	RC   int `json:"rc"`
	Data *struct {
		Total int        `json:"total"`
		Diff  []closeRow `json:"diff"`
	} `json:"data"`
}

// FetchCloseQuotes pulls the whole-market closing quotes, keyed by stock
// code. Suspended stocks without a quote are omitted.
func (c *Client) FetchCloseQuotes(ctx context.Context) (map[string]CloseQuote, error) {
	quotes := make(map[string]CloseQuote)

	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("pn", fmt.Sprintf("%d", page))
		params.Set("pz", fmt.Sprintf("%d", quotePageSize))
		params.Set("po", "1")
		params.Set("np", "1")
		params.Set("fltt", "2")
		params.Set("fid", "f12")
		params.Set("fs", quoteMarkets)
		params.Set("fields", "f2,f3,f12,f18")

		fullURL := fmt.Sprintf("%s/api/qt/clist/get?%s", c.quoteBaseURL, params.Encode())

		var resp closeListResponse
		if err := c.httpClient.GetJSON(ctx, fullURL, &resp); err != nil {
			return nil, fmt.Errorf("fetch close page %d: %w", page, err)
		}
		if resp.RC != 0 {
			return nil, fmt.Errorf("quote API returned rc=%d", resp.RC)
		}
		if resp.Data == nil || len(resp.Data.Diff) == 0 {
			break
		}

		for _, row := range resp.Data.Diff {
			if !row.Price.Present() {
				continue
			}
			quotes[row.Code] = CloseQuote{
				Code:       row.Code,
				ChangePct:  row.ChangePct.Value(),
				ClosePrice: row.Price.Value(),
				PrevClose:  row.PrevClose.Value(),
			}
		}

		if len(quotes) >= resp.Data.Total {
			break
		}
	}

	c.logger.WithField("count", len(quotes)).Info("Fetched closing quotes")
	return quotes, nil
}

// ClosedLimitUp reports whether the stock ended the session sealed at
// the daily limit.
func (q CloseQuote) ClosedLimitUp() bool {
	return isAtLimitUp(q.Code, q.ClosePrice, q.PrevClose)
}
