package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/moyan/superforce/backend/internal/contracts"
	"github.com/moyan/superforce/backend/internal/engine"
	"github.com/moyan/superforce/backend/pkg/logger"
	"github.com/moyan/superforce/backend/pkg/redis"
)

// Exchange local time, used when the request carries no explicit date
var exchangeTZ = time.FixedZone("CST", 8*3600)

const rankingCacheTTL = 5 * time.Minute

// AuctionRanker produces ranked result sets. Implemented by the engine.
type AuctionRanker interface {
	Rank(ctx context.Context, req engine.RankRequest) (*contracts.RankedResultSet, error)
}

// RankingHandler handles the auction ranking API endpoints
type RankingHandler struct {
	ranker AuctionRanker
	cache  *redis.Cache
	logger *logger.Logger
}

// NewRankingHandler creates a new ranking handler. cache may be nil when
// Redis is not configured.
func NewRankingHandler(ranker AuctionRanker, cache *redis.Cache, log *logger.Logger) *RankingHandler {
	return &RankingHandler{
		ranker: ranker,
		cache:  cache,
		logger: log,
	}
}

// GetRanking returns the ranked candidate set for a trade date.
// GET /api/auction/ranking?date=YYYY-MM-DD&limit=N&sort=...&theme_alpha=...
// Every scoring parameter is overridable per request; omitted ones take
// the defaults. Out-of-contract values are a 400, never silently fixed.
func (h *RankingHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := parseRankingQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	cacheKey := rankingCacheKey(req)
	if h.cache != nil {
		var cached contracts.RankedResultSet
		if hit, err := h.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			respondJSON(w, http.StatusOK, map[string]interface{}{
				"success": true,
				"cached":  true,
				"data":    cached,
			})
			return
		}
	}

	result, err := h.ranker.Rank(ctx, req)
	if err != nil {
		if errors.Is(err, contracts.ErrInvalidParameter) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.WithError(err).Error("Ranking failed")
		respondError(w, http.StatusInternalServerError, "Failed to compute ranking")
		return
	}

	// A day without collected data is cacheable noise; skip it so a
	// later collection becomes visible immediately.
	if h.cache != nil && result.DataSource == contracts.DataSourceCollected {
		if err := h.cache.Set(ctx, cacheKey, result, rankingCacheTTL); err != nil {
			h.logger.WithError(err).Warn("Failed to cache ranking")
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"cached":  false,
		"data":    result,
	})
}

// parseRankingQuery builds the engine request from the query string
func parseRankingQuery(r *http.Request) (engine.RankRequest, error) {
	q := r.URL.Query()

	req := engine.RankRequest{
		Limit:  50,
		Params: contracts.DefaultScoringParameters(),
	}

	if raw := q.Get("date"); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return req, fmt.Errorf("invalid 'date' (expected YYYY-MM-DD): %s", raw)
		}
		req.TradeDate = date
	} else {
		now := time.Now().In(exchangeTZ)
		req.TradeDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	var err error
	if req.Limit, err = queryInt(q.Get("limit"), req.Limit); err != nil {
		return req, fmt.Errorf("invalid 'limit': %w", err)
	}

	p := &req.Params
	if raw := q.Get("sort"); raw != "" {
		p.SortMode = contracts.SortMode(raw)
	}
	if p.ThemeAlpha, err = queryFloat(q.Get("theme_alpha"), p.ThemeAlpha); err != nil {
		return req, fmt.Errorf("invalid 'theme_alpha': %w", err)
	}
	if p.DynamicAlpha, err = queryBool(q.Get("dynamic_alpha"), p.DynamicAlpha); err != nil {
		return req, fmt.Errorf("invalid 'dynamic_alpha': %w", err)
	}
	if p.RollingWindowDays, err = queryInt(q.Get("window"), p.RollingWindowDays); err != nil {
		return req, fmt.Errorf("invalid 'window': %w", err)
	}
	if p.PEFilterEnabled, err = queryBool(q.Get("pe_filter"), p.PEFilterEnabled); err != nil {
		return req, fmt.Errorf("invalid 'pe_filter': %w", err)
	}
	if p.ExcludeAuctionLimitUp, err = queryBool(q.Get("exclude_auction_limit_up"), p.ExcludeAuctionLimitUp); err != nil {
		return req, fmt.Errorf("invalid 'exclude_auction_limit_up': %w", err)
	}
	if p.LowGapOnly, err = queryBool(q.Get("low_gap_only"), p.LowGapOnly); err != nil {
		return req, fmt.Errorf("invalid 'low_gap_only': %w", err)
	}

	w := &p.Weights
	if w.VolumeRatio, err = queryFloat(q.Get("w_volume_ratio"), w.VolumeRatio); err != nil {
		return req, fmt.Errorf("invalid 'w_volume_ratio': %w", err)
	}
	if w.TurnoverRate, err = queryFloat(q.Get("w_turnover"), w.TurnoverRate); err != nil {
		return req, fmt.Errorf("invalid 'w_turnover': %w", err)
	}
	if w.GapPercent, err = queryFloat(q.Get("w_gap"), w.GapPercent); err != nil {
		return req, fmt.Errorf("invalid 'w_gap': %w", err)
	}
	if w.Amount, err = queryFloat(q.Get("w_amount"), w.Amount); err != nil {
		return req, fmt.Errorf("invalid 'w_amount': %w", err)
	}

	return req, nil
}

// rankingCacheKey derives a stable key from the date, limit and the full
// parameter set.
func rankingCacheKey(req engine.RankRequest) string {
	payload, _ := json.Marshal(struct {
		Limit  int                         `json:"limit"`
		Params contracts.ScoringParameters `json:"params"`
	}{req.Limit, req.Params})

	sum := sha256.Sum256(payload)
	return fmt.Sprintf("ranking:%s:%x", req.TradeDate.Format("2006-01-02"), sum[:8])
}

func queryInt(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func queryFloat(raw string, fallback float64) (float64, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func queryBool(raw string, fallback bool) (bool, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.ParseBool(raw)
}
