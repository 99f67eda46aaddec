package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SLAScanner is the work the scheduler drives.
type SLAScanner interface {
	RunWarningScan(ctx context.Context) (int, error)
	RunOverdueScan(ctx context.Context) (int, error)
}

// SLAScheduler runs the warning and overdue scans on independent intervals.
type SLAScheduler struct {
	scanner         SLAScanner
	warningInterval time.Duration
	overdueInterval time.Duration
	logger          *zap.Logger
	wg              sync.WaitGroup
}

// NewSLAScheduler builds the scheduler.
func NewSLAScheduler(scanner SLAScanner, warningInterval, overdueInterval time.Duration, logger *zap.Logger) *SLAScheduler {
	if warningInterval <= 0 {
		warningInterval = time.Hour
	}
	if overdueInterval <= 0 {
		overdueInterval = 15 * time.Minute
	}
	return &SLAScheduler{
		scanner:         scanner,
		warningInterval: warningInterval,
		overdueInterval: overdueInterval,
		logger:          logger.Named("sla_scheduler"),
	}
}

// Start launches both loops. They stop when ctx is cancelled; Wait blocks until they have.
func (s *SLAScheduler) Start(ctx context.Context) {
	s.wg.Add(2)
	go s.loop(ctx, "warning", s.warningInterval, s.scanner.RunWarningScan)
	go s.loop(ctx, "overdue", s.overdueInterval, s.scanner.RunOverdueScan)
	s.logger.Info("sla scheduler started",
		zap.Duration("warning_interval", s.warningInterval),
		zap.Duration("overdue_interval", s.overdueInterval))
}

// Wait blocks until both loops have exited.
func (s *SLAScheduler) Wait() {
	s.wg.Wait()
}

func (s *SLAScheduler) loop(ctx context.Context, name string, interval time.Duration, scan func(context.Context) (int, error)) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sla scan loop stopped", zap.String("scan", name))
			return
		case <-ticker.C:
			s.runOnce(ctx, name, scan)
		}
	}
}

func (s *SLAScheduler) runOnce(ctx context.Context, name string, scan func(context.Context) (int, error)) {
	start := time.Now()
	sent, err := scan(ctx)
	if err != nil {
		s.logger.Warn("sla scan failed", zap.String("scan", name), zap.Error(err))
		return
	}
	s.logger.Debug("sla scan finished",
		zap.String("scan", name),
		zap.Int("alerts", sent),
		zap.Duration("took", time.Since(start)))
}
