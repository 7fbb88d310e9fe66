package commands

import (
	"fmt"
	"time"

	"github.com/moyan/superforce/backend/internal/collector"
	"github.com/moyan/superforce/backend/internal/engine"
	"github.com/moyan/superforce/backend/internal/external/eastmoney"
	"github.com/moyan/superforce/backend/internal/storage"
	"github.com/moyan/superforce/backend/internal/strategyconfig"
	"github.com/moyan/superforce/backend/pkg/config"
	"github.com/moyan/superforce/backend/pkg/database"
	"github.com/moyan/superforce/backend/pkg/httputil"
	"github.com/moyan/superforce/backend/pkg/logger"
	"github.com/moyan/superforce/backend/pkg/redis"
)

// exchangeTZ is the Shanghai/Shenzhen session timezone. Schedules and
// "today" defaults are anchored here rather than in server-local time.
var exchangeTZ = time.FixedZone("CST", 8*3600)

// app wires the shared dependency graph used by every subcommand:
// config, logging, Postgres, optional Redis, the quote provider client,
// repositories, the scoring engine, and the collection pipeline.
type app struct {
	cfg *config.Config
	log *logger.Logger

	db          *database.DB
	redisClient *redis.Client
	cache       *redis.Cache

	snapshots   *storage.SnapshotRepository
	periodStats *storage.PeriodStatRepository
	themes      *storage.ThemeRepository

	strategy  *strategyconfig.Config
	engine    *engine.Engine
	collector *collector.Collector
	settler   *collector.Settler
}

// newApp loads configuration and builds the full dependency graph.
// Redis is optional; when disabled or unreachable the app runs without
// the ranking cache.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	var redisClient *redis.Client
	var cache *redis.Cache
	if cfg.Redis.Enabled {
		redisClient, err = redis.New(cfg)
		if err != nil {
			log.WithField("error", err.Error()).Warn("Redis unavailable, running without cache")
		} else {
			cache = redis.NewCache(redisClient, "superforce")
		}
	}

	httpClient := httpClientFor(cfg, log)
	quoteClient := eastmoney.NewClient(httpClient, cfg.Provider, log)

	snapshots := storage.NewSnapshotRepository(db.Pool)
	periodStats := storage.NewPeriodStatRepository(db.Pool)
	themes := storage.NewThemeRepository(db.Pool)

	strategy, err := strategyconfig.LoadOrDefault(cfg.StrategyConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load strategy config: %w", err)
	}
	if hash, err := strategyconfig.Hash(strategy); err == nil {
		log.WithFields(map[string]interface{}{
			"path": cfg.StrategyConfigPath,
			"hash": hash,
		}).Info("Strategy config loaded")
	}

	eng := engine.New(snapshots, periodStats, themes, strategy, log)
	col := collector.NewCollector(quoteClient, snapshots, themes, log)
	settler := collector.NewSettler(eng, periodStats, quoteClient, log)

	return &app{
		cfg:         cfg,
		log:         log,
		db:          db,
		redisClient: redisClient,
		cache:       cache,
		snapshots:   snapshots,
		periodStats: periodStats,
		themes:      themes,
		strategy:    strategy,
		engine:      eng,
		collector:   col,
		settler:     settler,
	}, nil
}

// httpClientFor builds the rate-limited HTTP client used against the
// quote provider
func httpClientFor(cfg *config.Config, log *logger.Logger) *httputil.Client {
	return httputil.New(log).WithRateLimit(cfg.Provider.RatePerSec, cfg.Provider.Burst)
}

// tradeDateArg parses a --date flag value; empty means today in
// exchange time. The returned date is normalized to midnight UTC, the
// convention used for trade_date keys throughout.
func tradeDateArg(value string) (time.Time, error) {
	if value == "" {
		now := time.Now().In(exchangeTZ)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return parsed, nil
}

// Close releases the app's external connections
func (a *app) Close() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.WithField("error", err.Error()).Warn("Failed to close Redis client")
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}
