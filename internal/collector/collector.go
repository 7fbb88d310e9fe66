package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/moyan/superforce/backend/internal/contracts"
	"github.com/moyan/superforce/backend/internal/external/eastmoney"
	"github.com/moyan/superforce/backend/pkg/logger"
)

// Collector orchestrates pulling the call-auction snapshot and the theme
// profile for a trade date and persisting both. Collection is at most
// once per date unless forced.
type Collector struct {
	client    *eastmoney.Client
	snapshots contracts.SnapshotRepository
	themes    contracts.ThemeRepository
	logger    *logger.Logger
}

// NewCollector creates a new Collector instance
func NewCollector(
	client *eastmoney.Client,
	snapshots contracts.SnapshotRepository,
	themes contracts.ThemeRepository,
	log *logger.Logger,
) *Collector {
	return &Collector{
		client:    client,
		snapshots: snapshots,
		themes:    themes,
		logger:    log.WithField("module", "collector"),
	}
}

// Result summarizes one collection run
type Result struct {
	TradeDate time.Time `json:"trade_date"`
	Skipped   bool      `json:"skipped"` // already collected and not forced
	Snapshots int       `json:"snapshots"`
	Themes    int       `json:"themes"`
	Tagged    int       `json:"tagged"` // snapshots that received a theme label
}

// Collect fetches and stores the trade date's auction snapshots and
// theme profile. A date already collected is skipped unless force is
// set; force re-fetches and overwrites.
func (c *Collector) Collect(ctx context.Context, tradeDate time.Time, force bool) (*Result, error) {
	collected, err := c.snapshots.HasCollection(ctx, tradeDate)
	if err != nil {
		return nil, fmt.Errorf("check collection status: %w", err)
	}
	if collected && !force {
		c.logger.WithField("trade_date", tradeDate.Format("2006-01-02")).
			Info("Already collected, skipping")
		return &Result{TradeDate: tradeDate, Skipped: true}, nil
	}

	snapshots, err := c.client.FetchAuctionSnapshots(ctx, tradeDate)
	if err != nil {
		return nil, fmt.Errorf("fetch auction snapshots: %w", err)
	}

	// The theme profile is best effort: a failed board scrape degrades
	// the ranking to no boost instead of failing the collection.
	profile, assignment, err := c.client.FetchThemeProfile(ctx)
	if err != nil {
		c.logger.WithError(err).Warn("Theme profile unavailable, continuing without boost")
		profile, assignment = contracts.ThemeProfile{}, nil
	}

	tagged := 0
	for _, snap := range snapshots {
		if theme, ok := assignment[snap.Code]; ok {
			snap.Theme = theme
			tagged++
		}
	}

	if collected && force {
		if err := c.snapshots.DeleteByDate(ctx, tradeDate); err != nil {
			return nil, fmt.Errorf("clear previous collection: %w", err)
		}
	}

	if err := c.snapshots.SaveBatch(ctx, snapshots); err != nil {
		return nil, fmt.Errorf("save snapshots: %w", err)
	}
	if len(profile) > 0 {
		if err := c.themes.SaveBatch(ctx, tradeDate, profile); err != nil {
			return nil, fmt.Errorf("save theme profile: %w", err)
		}
	}
	if err := c.snapshots.MarkCollected(ctx, tradeDate, "eastmoney"); err != nil {
		return nil, fmt.Errorf("mark collected: %w", err)
	}

	result := &Result{
		TradeDate: tradeDate,
		Snapshots: len(snapshots),
		Themes:    len(profile),
		Tagged:    tagged,
	}

	c.logger.WithFields(map[string]interface{}{
		"trade_date": tradeDate.Format("2006-01-02"),
		"snapshots":  result.Snapshots,
		"themes":     result.Themes,
		"tagged":     result.Tagged,
		"forced":     force,
	}).Info("Collection completed")

	return result, nil
}
