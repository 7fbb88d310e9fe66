package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/moyan/superforce/backend/internal/collector"
	"github.com/moyan/superforce/backend/pkg/logger"
)

// AuctionCollectionJob pulls the call-auction snapshot right after the
// 09:25 match. The one-minute offset lets the venue finish publishing
// the matched quotes.
type AuctionCollectionJob struct {
	collector *collector.Collector
	logger    *logger.Logger
}

// NewAuctionCollectionJob creates a new auction collection job
func NewAuctionCollectionJob(col *collector.Collector, log *logger.Logger) *AuctionCollectionJob {
	return &AuctionCollectionJob{
		collector: col,
		logger:    log,
	}
}

// Name returns the job name
func (j *AuctionCollectionJob) Name() string {
	return "auction_collection"
}

// Schedule returns the cron schedule (09:26 exchange time on weekdays)
func (j *AuctionCollectionJob) Schedule() string {
	return "0 26 9 * * MON-FRI"
}

// Run executes the auction snapshot collection for today
func (j *AuctionCollectionJob) Run(ctx context.Context) error {
	tradeDate := todayTradeDate(time.Now())

	result, err := j.collector.Collect(ctx, tradeDate, false)
	if err != nil {
		return fmt.Errorf("collect auction snapshots: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"trade_date": tradeDate.Format("2006-01-02"),
		"snapshots":  result.Snapshots,
		"skipped":    result.Skipped,
	}).Info("Scheduled auction collection completed")

	return nil
}
