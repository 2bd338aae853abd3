package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/fantasy-cycling/internal/platform/logging"
	"github.com/sourcegraph/conc"
)

// TickReport summarises one scheduler pass.
type TickReport struct {
	Locks       []LockSweepItem
	Settlements []SettleSweepItem
	LockErr     error
	SettleErr   error
}

// Scheduler periodically locks due races and settles pending ones.
type Scheduler struct {
	locks       *LockService
	settlements *SettlementService
	interval    time.Duration
	lockWorkers int
	logger      *logging.Logger
}

func NewScheduler(locks *LockService, settlements *SettlementService, interval time.Duration, lockWorkers int, logger *logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Scheduler{
		locks:       locks,
		settlements: settlements,
		interval:    interval,
		lockWorkers: lockWorkers,
		logger:      logger,
	}
}

// Run ticks until ctx is cancelled. The first pass runs immediately.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.Tick(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Tick runs the lock sweep and the settlement sweep concurrently. They
// touch races in disjoint states.
func (s *Scheduler) Tick(ctx context.Context) TickReport {
	var report TickReport
	var wg conc.WaitGroup
	wg.Go(func() {
		report.Locks, report.LockErr = s.locks.LockDueRaces(ctx, s.lockWorkers)
	})
	wg.Go(func() {
		report.Settlements, report.SettleErr = s.settlements.SettlePending(ctx)
	})
	wg.Wait()

	s.logReport(ctx, report)
	return report
}

func (s *Scheduler) logReport(ctx context.Context, report TickReport) {
	if report.LockErr != nil {
		s.logger.ErrorContext(ctx, "lock sweep failed", "error", report.LockErr)
	}
	if report.SettleErr != nil {
		s.logger.ErrorContext(ctx, "settlement sweep failed", "error", report.SettleErr)
	}

	failed := 0
	for _, item := range report.Locks {
		if item.Err != nil {
			failed++
			s.logger.ErrorContext(ctx, "scheduled lock failed", "race_id", item.RaceID, "error", item.Err)
		}
	}
	for _, item := range report.Settlements {
		if item.Err != nil {
			failed++
			s.logger.ErrorContext(ctx, "scheduled settle failed", "race_id", item.RaceID, "error", item.Err)
		}
	}
	s.logger.InfoContext(ctx, "scheduler tick finished",
		"locked_races", len(report.Locks),
		"settled_races", len(report.Settlements),
		"failed", failed,
	)
}
