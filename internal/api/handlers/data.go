package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/moyan/superforce/backend/internal/collector"
	"github.com/moyan/superforce/backend/internal/contracts"
	"github.com/moyan/superforce/backend/pkg/logger"
	"github.com/moyan/superforce/backend/pkg/redis"
)

// AuctionCollector pulls and stores a trade date's snapshots
type AuctionCollector interface {
	Collect(ctx context.Context, tradeDate time.Time, force bool) (*collector.Result, error)
}

// OutcomeSettler produces the post-close realized statistics
type OutcomeSettler interface {
	Settle(ctx context.Context, tradeDate time.Time) (*contracts.PeriodStat, error)
}

// DataHandler handles collection and settlement API endpoints
type DataHandler struct {
	collector AuctionCollector
	settler   OutcomeSettler
	snapshots contracts.SnapshotRepository
	cache     *redis.Cache
	logger    *logger.Logger
}

// NewDataHandler creates a new data handler. cache may be nil.
func NewDataHandler(
	col AuctionCollector,
	settler OutcomeSettler,
	snapshots contracts.SnapshotRepository,
	cache *redis.Cache,
	log *logger.Logger,
) *DataHandler {
	return &DataHandler{
		collector: col,
		settler:   settler,
		snapshots: snapshots,
		cache:     cache,
		logger:    log,
	}
}

// CollectRequest represents a collection trigger
type CollectRequest struct {
	Date  string `json:"date"`  // YYYY-MM-DD, default today
	Force bool   `json:"force"` // re-collect an already collected date
}

// Collect triggers snapshot collection for a trade date
// POST /api/auction/collect
func (h *DataHandler) Collect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CollectRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	date, err := parseDateOrToday(req.Date)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.collector.Collect(ctx, date, req.Force)
	if err != nil {
		h.logger.WithError(err).Error("Collection failed")
		respondError(w, http.StatusInternalServerError, "Collection failed: "+err.Error())
		return
	}

	// A forced re-collection invalidates every cached parameter variant
	// for the date.
	if req.Force && h.cache != nil {
		pattern := fmt.Sprintf("ranking:%s:*", date.Format("2006-01-02"))
		if err := h.cache.DeletePattern(ctx, pattern); err != nil {
			h.logger.WithError(err).Warn("Failed to invalidate ranking cache")
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    result,
	})
}

// SettleRequest represents a settlement trigger
type SettleRequest struct {
	Date string `json:"date"` // YYYY-MM-DD, default today
}

// Settle triggers post-close outcome settlement for a trade date
// POST /api/auction/settle
func (h *DataHandler) Settle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SettleRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	date, err := parseDateOrToday(req.Date)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	stat, err := h.settler.Settle(ctx, date)
	if err != nil {
		h.logger.WithError(err).Error("Settlement failed")
		respondError(w, http.StatusInternalServerError, "Settlement failed: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    stat,
	})
}

// GetStatus reports whether a trade date has been collected
// GET /api/auction/status?date=YYYY-MM-DD
func (h *DataHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	date, err := parseDateOrToday(r.URL.Query().Get("date"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	collected, err := h.snapshots.HasCollection(ctx, date)
	if err != nil {
		h.logger.WithError(err).Error("Failed to check collection status")
		respondError(w, http.StatusInternalServerError, "Failed to check collection status")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"trade_date": date.Format("2006-01-02"),
			"collected":  collected,
		},
	})
}

func parseDateOrToday(raw string) (time.Time, error) {
	if raw == "" {
		now := time.Now().In(exchangeTZ)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid 'date' (expected YYYY-MM-DD): %s", raw)
	}
	return date, nil
}
