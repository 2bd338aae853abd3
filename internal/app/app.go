package app

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-cycling/internal/config"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/leaderboard"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-cycling/internal/domain/uow"
	"github.com/riskibarqy/fantasy-cycling/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-cycling/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/fantasy-cycling/internal/platform/cache"
	idgen "github.com/riskibarqy/fantasy-cycling/internal/platform/id"
	"github.com/riskibarqy/fantasy-cycling/internal/platform/logging"
	"github.com/riskibarqy/fantasy-cycling/internal/usecase"
)

// Container holds the pipeline services built on one unit of work.
type Container struct {
	Locks       *usecase.LockService
	Imports     *usecase.ResultImportService
	Settlements *usecase.SettlementService
	Races       *usecase.RaceService
	Leaderboard *usecase.LeaderboardService
	Metrics     *usecase.Metrics

	db *sqlx.DB
}

// NewPostgresContainer wires the services onto a Postgres unit of work.
func NewPostgresContainer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Container, error) {
	db, err := OpenDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c := newContainer(postgres.NewUnitOfWork(db), cfg, logger)
	c.db = db
	return c, nil
}

// NewMemoryContainer wires the services onto an in-memory store seeded
// with the demo season.
func NewMemoryContainer(cfg config.Config, logger *logging.Logger, now time.Time) *Container {
	store := memory.NewStore()
	memory.SeedDemo(store, now)
	return newContainer(store, cfg, logger)
}

func newContainer(unit uow.UnitOfWork, cfg config.Config, logger *logging.Logger) *Container {
	if logger == nil {
		logger = logging.Default()
	}
	ids := idgen.NewUUIDGenerator()
	metrics := usecase.NewMetrics()
	settlement := SettlementConfig(cfg)

	c := &Container{
		Locks:       usecase.NewLockService(unit, ids, logger.With("component", "lock"), metrics),
		Imports:     usecase.NewResultImportService(unit, ids, settlement.Policy, logger.With("component", "import"), metrics),
		Settlements: usecase.NewSettlementService(unit, ids, settlement, logger.With("component", "settlement"), metrics),
		Races:       usecase.NewRaceService(unit, settlement.Pricing, logger.With("component", "race")),
		Leaderboard: usecase.NewLeaderboardService(unit, settlement.Calculator.Table),
		Metrics:     metrics,
	}
	if cfg.LeaderboardCacheTTL > 0 {
		c.Leaderboard.WithCache(cache.NewStore[[]leaderboard.Entry](cfg.LeaderboardCacheTTL))
		c.Imports.OnSeasonChange(c.Leaderboard.Invalidate)
		c.Settlements.OnSeasonChange(c.Leaderboard.Invalidate)
		c.Races.OnSeasonChange(c.Leaderboard.Invalidate)
	}
	return c
}

// SettlementConfig maps loaded configuration onto settlement rules.
func SettlementConfig(cfg config.Config) usecase.SettlementConfig {
	out := usecase.DefaultSettlementConfig()
	if len(cfg.PointsTable) > 0 {
		out.Calculator = scoring.NewCalculator(cfg.PointsTable, cfg.SubstitutionRule)
	}
	if len(cfg.SettlementPolicy.RequiredSets) > 0 {
		out.Policy = cfg.SettlementPolicy
	}
	if cfg.PricingRule.Validate() == nil {
		out.Pricing = cfg.PricingRule
	}
	if cfg.SettleMaxWorkers > 0 {
		out.MaxWorkers = cfg.SettleMaxWorkers
	}
	return out
}

// NewScheduler builds the lock/settle scheduler on the container's services.
func (c *Container) NewScheduler(cfg config.Config, logger *logging.Logger) *usecase.Scheduler {
	return usecase.NewScheduler(c.Locks, c.Settlements, cfg.SchedulerInterval, cfg.SettleMaxWorkers, logger)
}

// DB returns the Postgres handle, or nil for the memory backend.
func (c *Container) DB() *sqlx.DB {
	return c.db
}

func (c *Container) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}
