package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moyan/superforce/backend/internal/contracts"
	"github.com/moyan/superforce/backend/internal/strategyconfig"
	"github.com/moyan/superforce/backend/pkg/logger"
)

// In-memory repositories backing the engine in tests

type fakeSnapshotRepo struct {
	snapshots []*contracts.AuctionSnapshot
	collected bool
	err       error
}

func (f *fakeSnapshotRepo) GetByDate(_ context.Context, _ time.Time) ([]*contracts.AuctionSnapshot, error) {
	return f.snapshots, f.err
}

func (f *fakeSnapshotRepo) SaveBatch(_ context.Context, snapshots []*contracts.AuctionSnapshot) error {
	f.snapshots = append(f.snapshots, snapshots...)
	return nil
}

func (f *fakeSnapshotRepo) DeleteByDate(_ context.Context, _ time.Time) error {
	f.snapshots = nil
	return nil
}

func (f *fakeSnapshotRepo) HasCollection(_ context.Context, _ time.Time) (bool, error) {
	return f.collected, f.err
}

func (f *fakeSnapshotRepo) MarkCollected(_ context.Context, _ time.Time, _ string) error {
	f.collected = true
	return nil
}

type fakePeriodStatRepo struct {
	stats []contracts.PeriodStat
}

func (f *fakePeriodStatRepo) GetWindow(_ context.Context, _ time.Time, windowDays int) ([]contracts.PeriodStat, error) {
	if len(f.stats) > windowDays {
		return f.stats[:windowDays], nil
	}
	return f.stats, nil
}

func (f *fakePeriodStatRepo) Save(_ context.Context, stat *contracts.PeriodStat) error {
	f.stats = append([]contracts.PeriodStat{*stat}, f.stats...)
	return nil
}

type fakeThemeRepo struct {
	profile contracts.ThemeProfile
}

func (f *fakeThemeRepo) GetHotness(_ context.Context, _ time.Time) (contracts.ThemeProfile, error) {
	return f.profile, nil
}

func (f *fakeThemeRepo) SaveBatch(_ context.Context, _ time.Time, profile contracts.ThemeProfile) error {
	f.profile = profile
	return nil
}

var testDate = time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC)

func snapshotFixture(code, name, theme string, volumeRatio, turnover, gapPct, amount float64, limitUp bool) *contracts.AuctionSnapshot {
	prevClose := 10.0
	return &contracts.AuctionSnapshot{
		Code:           code,
		Name:           name,
		Theme:          theme,
		TradeDate:      testDate,
		PrevClose:      prevClose,
		AuctionPrice:   prevClose * (1 + gapPct/100),
		GapPercent:     gapPct,
		VolumeRatio:    volumeRatio,
		TurnoverRate:   turnover,
		AuctionAmount:  amount,
		AuctionVolume:  int64(amount / prevClose),
		PERatio:        35,
		AuctionLimitUp: limitUp,
	}
}

func newTestEngine(snaps *fakeSnapshotRepo, stats *fakePeriodStatRepo, themes *fakeThemeRepo) *Engine {
	return New(snaps, stats, themes, strategyconfig.Default(), logger.NewNop())
}

func staticParams() contracts.ScoringParameters {
	p := contracts.DefaultScoringParameters()
	p.DynamicAlpha = false
	return p
}

func TestRank_RejectsInvalidParameters(t *testing.T) {
	e := newTestEngine(&fakeSnapshotRepo{collected: true}, &fakePeriodStatRepo{}, &fakeThemeRepo{})

	bad := staticParams()
	bad.ThemeAlpha = 0.7

	_, err := e.Rank(context.Background(), RankRequest{TradeDate: testDate, Params: bad})
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrInvalidParameter))

	badWeights := staticParams()
	badWeights.Weights.VolumeRatio = 0.9

	_, err = e.Rank(context.Background(), RankRequest{TradeDate: testDate, Params: badWeights})
	assert.True(t, errors.Is(err, contracts.ErrInvalidParameter))
}

func TestRank_RejectsNegativeLimit(t *testing.T) {
	e := newTestEngine(&fakeSnapshotRepo{collected: true}, &fakePeriodStatRepo{}, &fakeThemeRepo{})

	_, err := e.Rank(context.Background(), RankRequest{TradeDate: testDate, Limit: -1, Params: staticParams()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrInvalidParameter))
}

func TestRank_NoDataForDate(t *testing.T) {
	e := newTestEngine(&fakeSnapshotRepo{collected: false}, &fakePeriodStatRepo{}, &fakeThemeRepo{})

	result, err := e.Rank(context.Background(), RankRequest{TradeDate: testDate, Params: staticParams()})
	require.NoError(t, err)

	assert.Equal(t, contracts.DataSourceNone, result.DataSource)
	assert.Empty(t, result.Candidates)
	assert.Equal(t, contracts.Summary{}, result.Summary)
}

func TestRank_RepositoryErrorPropagates(t *testing.T) {
	e := newTestEngine(&fakeSnapshotRepo{err: errors.New("connection refused")}, &fakePeriodStatRepo{}, &fakeThemeRepo{})

	_, err := e.Rank(context.Background(), RankRequest{TradeDate: testDate, Params: staticParams()})
	require.Error(t, err)
	assert.False(t, errors.Is(err, contracts.ErrInvalidParameter))
}

func TestRank_EndToEnd(t *testing.T) {
	snaps := &fakeSnapshotRepo{
		collected: true,
		snapshots: []*contracts.AuctionSnapshot{
			snapshotFixture("600001", "甲公司", "chip", 5, 8, 3, 2e8, false),
			snapshotFixture("600002", "乙公司", "", 1.2, 2, -1, 5e7, false),
			snapshotFixture("600003", "丙公司", "", 9, 12, 9.97, 4e8, true),
		},
	}
	themes := &fakeThemeRepo{profile: contracts.ThemeProfile{"chip": 1.4}}
	e := newTestEngine(snaps, &fakePeriodStatRepo{}, themes)

	params := staticParams()
	params.ThemeAlpha = 0.25

	result, err := e.Rank(context.Background(), RankRequest{TradeDate: testDate, Params: params})
	require.NoError(t, err)

	require.Len(t, result.Candidates, 3)
	assert.Equal(t, contracts.DataSourceCollected, result.DataSource)

	// The sealed limit-up leads, the gapping-up theme stock next, the
	// weak opener last.
	assert.Equal(t, "600003", result.Candidates[0].Code)
	assert.Equal(t, "600001", result.Candidates[1].Code)
	assert.Equal(t, "600002", result.Candidates[2].Code)

	sealed := result.Candidates[0]
	assert.True(t, sealed.LikelyLimitUp)
	assert.Equal(t, 1.0, sealed.LikelyLimitUpProb)

	boosted := result.Candidates[1]
	assert.InDelta(t, 1.1, boosted.ThemeEnhanceFactor, 1e-9) // 1 + 0.25*(1.4-1)
	assert.Greater(t, boosted.HeatScore, result.Candidates[2].HeatScore)

	for i, c := range result.Candidates {
		assert.Equal(t, i+1, c.Rank)
		assert.GreaterOrEqual(t, c.HeatScore, 0.0)
		assert.LessOrEqual(t, c.HeatScore, 100.0)
	}

	s := result.Summary
	assert.Equal(t, 3, s.Count)
	assert.GreaterOrEqual(t, s.LimitUpCandidates, 1)
	assert.InDelta(t, 2e8+5e7+4e8, s.TotalAmount, 1e-3)
	assert.Equal(t, 0.25, s.ThemeAlphaInput)
	assert.Equal(t, 0.25, s.ThemeAlphaEffective)
	assert.Equal(t, string(contracts.RegimeCalm), s.MarketRegime)
	assert.Equal(t, 0, s.SkippedRows)
}

func TestRank_Idempotent(t *testing.T) {
	snaps := &fakeSnapshotRepo{
		collected: true,
		snapshots: []*contracts.AuctionSnapshot{
			snapshotFixture("600001", "甲公司", "chip", 5, 8, 3, 2e8, false),
			snapshotFixture("600002", "乙公司", "", 3, 4, 1, 1e8, false),
		},
	}
	e := newTestEngine(snaps, &fakePeriodStatRepo{}, &fakeThemeRepo{profile: contracts.ThemeProfile{"chip": 1.4}})

	req := RankRequest{TradeDate: testDate, Params: staticParams()}

	first, err := e.Rank(context.Background(), req)
	require.NoError(t, err)
	second, err := e.Rank(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRank_VolumeRatioMonotone(t *testing.T) {
	// Identical snapshots except one metric: the higher volume ratio must
	// never score lower.
	snaps := &fakeSnapshotRepo{
		collected: true,
		snapshots: []*contracts.AuctionSnapshot{
			snapshotFixture("600001", "甲公司", "", 3, 8, 3, 2e8, false),
			snapshotFixture("600002", "乙公司", "", 8, 8, 3, 2e8, false),
		},
	}
	e := newTestEngine(snaps, &fakePeriodStatRepo{}, &fakeThemeRepo{})

	params := staticParams()
	params.SortMode = contracts.SortHeatDesc

	result, err := e.Rank(context.Background(), RankRequest{TradeDate: testDate, Params: params})
	require.NoError(t, err)

	require.Len(t, result.Candidates, 2)
	assert.Equal(t, "600002", result.Candidates[0].Code)
	assert.Greater(t, result.Candidates[0].HeatScore, result.Candidates[1].HeatScore)
}

func TestRank_LimitTruncatesAfterRanking(t *testing.T) {
	snaps := &fakeSnapshotRepo{collected: true}
	for i := 1; i <= 6; i++ {
		snaps.snapshots = append(snaps.snapshots,
			snapshotFixture("60000"+string(rune('0'+i)), "公司", "", float64(i), 5, 2, 1e8, false))
	}
	e := newTestEngine(snaps, &fakePeriodStatRepo{}, &fakeThemeRepo{})

	result, err := e.Rank(context.Background(), RankRequest{TradeDate: testDate, Limit: 3, Params: staticParams()})
	require.NoError(t, err)

	require.Len(t, result.Candidates, 3)
	// The summary still covers the whole filtered set, not the truncation
	assert.Equal(t, 6, result.Summary.Count)
	for i, c := range result.Candidates {
		assert.Equal(t, i+1, c.Rank)
	}
}

func TestRankBatch_SkipsMalformedRows(t *testing.T) {
	good := snapshotFixture("600001", "甲公司", "", 5, 8, 3, 2e8, false)
	noPrev := snapshotFixture("600002", "乙公司", "", 3, 4, 1, 1e8, false)
	noPrev.PrevClose = 0
	noCode := snapshotFixture("", "丙公司", "", 3, 4, 1, 1e8, false)

	e := newTestEngine(&fakeSnapshotRepo{}, &fakePeriodStatRepo{}, &fakeThemeRepo{})

	result := e.RankBatch(testDate,
		[]*contracts.AuctionSnapshot{good, noPrev, noCode},
		nil, nil, staticParams(), 0)

	require.Len(t, result.Candidates, 1)
	assert.Equal(t, "600001", result.Candidates[0].Code)
	assert.Equal(t, 2, result.Summary.SkippedRows)
	assert.Equal(t, 1, result.Summary.Count)
}

func TestRank_DynamicAlphaUsesWindow(t *testing.T) {
	stats := &fakePeriodStatRepo{}
	for i := 0; i < 10; i++ {
		stats.stats = append(stats.stats, contracts.PeriodStat{
			TradeDate:            testDate.AddDate(0, 0, -(i + 1)),
			AdvancerRatio:        0.5,
			AvgGapPercent:        1.0,
			HeatStdDev:           10,
			TopDecileLimitUpRate: 0.125, // half the lift target
			MarketLimitUpRate:    0.05,
		})
	}
	snaps := &fakeSnapshotRepo{
		collected: true,
		snapshots: []*contracts.AuctionSnapshot{snapshotFixture("600001", "甲公司", "chip", 5, 8, 3, 2e8, false)},
	}
	e := newTestEngine(snaps, stats, &fakeThemeRepo{profile: contracts.ThemeProfile{"chip": 1.4}})

	params := contracts.DefaultScoringParameters() // dynamic alpha on

	result, err := e.Rank(context.Background(), RankRequest{TradeDate: testDate, Params: params})
	require.NoError(t, err)

	assert.Equal(t, 0.25, result.Summary.ThemeAlphaInput)
	assert.InDelta(t, 0.125, result.Summary.ThemeAlphaEffective, 1e-9)
	assert.Equal(t, 10, result.Summary.CoveredDays)
}
