package contracts

import (
	"context"
	"time"
)

// Repository interfaces are defined here and nowhere else. The engine
// consumes them as black boxes; implementations live in internal/storage.

// SnapshotRepository manages call-auction snapshot data
type SnapshotRepository interface {
	GetByDate(ctx context.Context, date time.Time) ([]*AuctionSnapshot, error)
	SaveBatch(ctx context.Context, snapshots []*AuctionSnapshot) error

	// DeleteByDate clears a date before a forced re-collection so rows
	// absent from the fresh fetch do not linger.
	DeleteByDate(ctx context.Context, date time.Time) error

	// Collection bookkeeping: at-most-once per trade date, with force
	// re-collection handled by the collector.
	HasCollection(ctx context.Context, date time.Time) (bool, error)
	MarkCollected(ctx context.Context, date time.Time, source string) error
}

// PeriodStatRepository manages the rolling window of realized outcomes
type PeriodStatRepository interface {
	// GetWindow returns up to windowDays stats for trade dates strictly
	// before the anchor date, most recent first. May return fewer entries
	// near the start of history.
	GetWindow(ctx context.Context, date time.Time, windowDays int) ([]PeriodStat, error)
	Save(ctx context.Context, stat *PeriodStat) error
}

// ThemeRepository manages per-date theme hotness profiles
type ThemeRepository interface {
	GetHotness(ctx context.Context, date time.Time) (ThemeProfile, error)
	SaveBatch(ctx context.Context, date time.Time, profile ThemeProfile) error
}
