package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moyan/superforce/backend/internal/contracts"
)

// PeriodStatRepository implements contracts.PeriodStatRepository on
// Postgres. One row per trade date, written by the post-close settlement
// job and read-only afterwards.
type PeriodStatRepository struct {
	pool *pgxpool.Pool
}

// NewPeriodStatRepository creates a new period stat repository
func NewPeriodStatRepository(pool *pgxpool.Pool) *PeriodStatRepository {
	return &PeriodStatRepository{pool: pool}
}

// GetWindow retrieves up to windowDays stats strictly before the anchor
// date, most recent first. Fewer rows near the start of history is
// normal, not an error.
func (r *PeriodStatRepository) GetWindow(ctx context.Context, date time.Time, windowDays int) ([]contracts.PeriodStat, error) {
	query := `
		SELECT trade_date, advancer_ratio, avg_gap_percent, heat_std_dev,
		       market_limit_up_rate, top_decile_limit_up_rate
		FROM auction.period_stats
		WHERE trade_date < $1
		ORDER BY trade_date DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, date, windowDays)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []contracts.PeriodStat
	for rows.Next() {
		var s contracts.PeriodStat
		if err := rows.Scan(
			&s.TradeDate, &s.AdvancerRatio, &s.AvgGapPercent, &s.HeatStdDev,
			&s.MarketLimitUpRate, &s.TopDecileLimitUpRate,
		); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// Save upserts one trade date's realized outcome statistics
func (r *PeriodStatRepository) Save(ctx context.Context, stat *contracts.PeriodStat) error {
	query := `
		INSERT INTO auction.period_stats (
			trade_date, advancer_ratio, avg_gap_percent, heat_std_dev,
			market_limit_up_rate, top_decile_limit_up_rate
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (trade_date) DO UPDATE SET
			advancer_ratio = EXCLUDED.advancer_ratio,
			avg_gap_percent = EXCLUDED.avg_gap_percent,
			heat_std_dev = EXCLUDED.heat_std_dev,
			market_limit_up_rate = EXCLUDED.market_limit_up_rate,
			top_decile_limit_up_rate = EXCLUDED.top_decile_limit_up_rate
	`

	_, err := r.pool.Exec(ctx, query,
		stat.TradeDate, stat.AdvancerRatio, stat.AvgGapPercent, stat.HeatStdDev,
		stat.MarketLimitUpRate, stat.TopDecileLimitUpRate,
	)
	return err
}
