package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/moyan/superforce/backend/internal/collector"
	"github.com/moyan/superforce/backend/pkg/logger"
)

// OutcomeSettlementJob runs after the close and records how the
// morning's heat ranking related to the realized limit-ups. The result
// feeds the regime classifier and alpha calibrator on following days.
type OutcomeSettlementJob struct {
	settler *collector.Settler
	logger  *logger.Logger
}

// NewOutcomeSettlementJob creates a new outcome settlement job
func NewOutcomeSettlementJob(settler *collector.Settler, log *logger.Logger) *OutcomeSettlementJob {
	return &OutcomeSettlementJob{
		settler: settler,
		logger:  log,
	}
}

// Name returns the job name
func (j *OutcomeSettlementJob) Name() string {
	return "outcome_settlement"
}

// Schedule returns the cron schedule (15:40 exchange time on weekdays,
// after the 15:00 close and the closing-auction prints).
func (j *OutcomeSettlementJob) Schedule() string {
	return "0 40 15 * * MON-FRI"
}

// Run executes the settlement for today
func (j *OutcomeSettlementJob) Run(ctx context.Context) error {
	tradeDate := todayTradeDate(time.Now())

	stat, err := j.settler.Settle(ctx, tradeDate)
	if err != nil {
		return fmt.Errorf("settle outcomes: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"trade_date":      tradeDate.Format("2006-01-02"),
		"top_decile_rate": stat.TopDecileLimitUpRate,
		"market_rate":     stat.MarketLimitUpRate,
		"lift":            stat.Lift(),
	}).Info("Scheduled outcome settlement completed")

	return nil
}
