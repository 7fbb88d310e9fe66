package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moyan/superforce/backend/internal/contracts"
)

// ThemeRepository implements contracts.ThemeRepository on Postgres.
// One row per theme per trade date.
type ThemeRepository struct {
	pool *pgxpool.Pool
}

// NewThemeRepository creates a new theme repository
func NewThemeRepository(pool *pgxpool.Pool) *ThemeRepository {
	return &ThemeRepository{pool: pool}
}

// GetHotness retrieves the full theme hotness profile for a trade date.
// An empty profile (no boost anywhere) is a valid result.
func (r *ThemeRepository) GetHotness(ctx context.Context, date time.Time) (contracts.ThemeProfile, error) {
	query := `
		SELECT theme, hotness
		FROM auction.theme_heat
		WHERE trade_date = $1
	`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profile := contracts.ThemeProfile{}
	for rows.Next() {
		var theme string
		var hotness float64
		if err := rows.Scan(&theme, &hotness); err != nil {
			return nil, err
		}
		profile[theme] = hotness
	}
	return profile, rows.Err()
}

// SaveBatch upserts a trade date's theme hotness profile
func (r *ThemeRepository) SaveBatch(ctx context.Context, date time.Time, profile contracts.ThemeProfile) error {
	if len(profile) == 0 {
		return nil
	}

	query := `
		INSERT INTO auction.theme_heat (trade_date, theme, hotness)
		VALUES ($1, $2, $3)
		ON CONFLICT (trade_date, theme) DO UPDATE SET
			hotness = EXCLUDED.hotness
	`

	batch := &pgx.Batch{}
	for theme, hotness := range profile {
		batch.Queue(query, date, theme, hotness)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range profile {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}
