package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moyan/superforce/backend/internal/contracts"
)

// SnapshotRepository implements contracts.SnapshotRepository on Postgres.
// One row per stock per trade date; collection bookkeeping lives in a
// separate table so "collected but empty" is distinguishable from
// "never collected".
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// GetByDate retrieves all auction snapshots for a trade date
func (r *SnapshotRepository) GetByDate(ctx context.Context, date time.Time) ([]*contracts.AuctionSnapshot, error) {
	query := `
		SELECT stock_code, stock_name, industry, theme, trade_date,
		       auction_price, prev_close, gap_percent,
		       auction_volume, auction_amount, turnover_rate, volume_ratio,
		       float_shares, pe_ratio, auction_limit_up
		FROM auction.snapshots
		WHERE trade_date = $1
		ORDER BY stock_code ASC
	`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []*contracts.AuctionSnapshot
	for rows.Next() {
		var s contracts.AuctionSnapshot
		if err := rows.Scan(
			&s.Code, &s.Name, &s.Industry, &s.Theme, &s.TradeDate,
			&s.AuctionPrice, &s.PrevClose, &s.GapPercent,
			&s.AuctionVolume, &s.AuctionAmount, &s.TurnoverRate, &s.VolumeRatio,
			&s.FloatShares, &s.PERatio, &s.AuctionLimitUp,
		); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, &s)
	}
	return snapshots, rows.Err()
}

// SaveBatch upserts a day's snapshots in one round trip
func (r *SnapshotRepository) SaveBatch(ctx context.Context, snapshots []*contracts.AuctionSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	query := `
		INSERT INTO auction.snapshots (
			stock_code, stock_name, industry, theme, trade_date,
			auction_price, prev_close, gap_percent,
			auction_volume, auction_amount, turnover_rate, volume_ratio,
			float_shares, pe_ratio, auction_limit_up
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (stock_code, trade_date) DO UPDATE SET
			stock_name = EXCLUDED.stock_name,
			industry = EXCLUDED.industry,
			theme = EXCLUDED.theme,
			auction_price = EXCLUDED.auction_price,
			prev_close = EXCLUDED.prev_close,
			gap_percent = EXCLUDED.gap_percent,
			auction_volume = EXCLUDED.auction_volume,
			auction_amount = EXCLUDED.auction_amount,
			turnover_rate = EXCLUDED.turnover_rate,
			volume_ratio = EXCLUDED.volume_ratio,
			float_shares = EXCLUDED.float_shares,
			pe_ratio = EXCLUDED.pe_ratio,
			auction_limit_up = EXCLUDED.auction_limit_up
	`

	batch := &pgx.Batch{}
	for _, s := range snapshots {
		batch.Queue(query,
			s.Code, s.Name, s.Industry, s.Theme, s.TradeDate,
			s.AuctionPrice, s.PrevClose, s.GapPercent,
			s.AuctionVolume, s.AuctionAmount, s.TurnoverRate, s.VolumeRatio,
			s.FloatShares, s.PERatio, s.AuctionLimitUp,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range snapshots {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// HasCollection reports whether the trade date was already collected
func (r *SnapshotRepository) HasCollection(ctx context.Context, date time.Time) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM auction.collections WHERE trade_date = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, date).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// MarkCollected records that the trade date was collected from a source.
// Re-collection overwrites the previous record.
func (r *SnapshotRepository) MarkCollected(ctx context.Context, date time.Time, source string) error {
	query := `
		INSERT INTO auction.collections (trade_date, source, collected_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (trade_date) DO UPDATE SET
			source = EXCLUDED.source,
			collected_at = EXCLUDED.collected_at
	`

	_, err := r.pool.Exec(ctx, query, date, source)
	return err
}

// DeleteByDate clears a day's snapshots ahead of forced re-collection
func (r *SnapshotRepository) DeleteByDate(ctx context.Context, date time.Time) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM auction.snapshots WHERE trade_date = $1`, date)
	return err
}
