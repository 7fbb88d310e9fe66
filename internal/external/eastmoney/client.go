package eastmoney

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/moyan/superforce/backend/pkg/config"
	"github.com/moyan/superforce/backend/pkg/httputil"
	"github.com/moyan/superforce/backend/pkg/logger"
)

// Client handles communication with the Eastmoney quote endpoints.
// All upstream market data calls go through this client; rate limiting
// and retries live in the shared HTTP client.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger

	quoteBaseURL string
	boardBaseURL string
}

// NewClient creates a new Eastmoney client
func NewClient(httpClient *httputil.Client, cfg config.ProviderConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient:   httpClient,
		logger:       log,
		quoteBaseURL: cfg.QuoteBaseURL,
		boardBaseURL: cfg.BoardBaseURL,
	}
}

// looseFloat decodes the quote API's numeric fields, which arrive as a
// number or as "-" when the venue has no value yet.
type looseFloat float64

func (f *looseFloat) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == `"-"` || s == "null" || s == `""` {
		*f = looseFloat(math.NaN())
		return nil
	}
	if len(s) > 1 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return fmt.Errorf("parse quote field %q: %w", str, err)
		}
		*f = looseFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = looseFloat(v)
	return nil
}

// Value returns the float, 0 when the field was missing
func (f looseFloat) Value() float64 {
	v := float64(f)
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// Present reports whether the venue sent a value
func (f looseFloat) Present() bool {
	return !math.IsNaN(float64(f))
}
