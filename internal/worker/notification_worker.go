package worker

import (
	"errors"
	"fmt"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/service"
)

// Pool runs background notification tasks on a bounded set of goroutines.
type Pool struct {
	pool    *ants.Pool
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewPool creates a non-blocking pool of size workers. Submissions beyond capacity are rejected
// instead of stalling the request that triggered them.
func NewPool(size int, metrics *observability.Metrics, logger *zap.Logger) (*Pool, error) {
	if size <= 0 {
		size = 16
	}
	p := &Pool{metrics: metrics, logger: logger.Named("notification_pool")}
	pool, err := ants.NewPool(size,
		ants.WithExpiryDuration(time.Minute),
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(recovered interface{}) {
			p.metrics.RecordPoolTask("panic")
			p.logger.Error("panic recovered in notification task", zap.Any("panic_error", recovered), zap.Stack("stack"))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create notification pool: %w", err)
	}
	p.pool = pool
	p.logger.Info("notification pool initialized", zap.Int("pool_size", size))
	return p, nil
}

// Submit schedules task. It returns ants.ErrPoolOverload when every worker is busy.
func (p *Pool) Submit(task func()) error {
	err := p.pool.Submit(func() {
		task()
		p.metrics.RecordPoolTask("done")
	})
	if err != nil {
		outcome := "rejected"
		if errors.Is(err, ants.ErrPoolClosed) {
			outcome = "closed"
		}
		p.metrics.RecordPoolTask(outcome)
		return err
	}
	p.metrics.RecordPoolTask("submitted")
	return nil
}

// Running reports the number of busy workers.
func (p *Pool) Running() int {
	return p.pool.Running()
}

// Release waits up to timeout for in-flight tasks, then stops the pool.
func (p *Pool) Release(timeout time.Duration) {
	if err := p.pool.ReleaseTimeout(timeout); err != nil {
		p.logger.Warn("notification pool release timed out", zap.Error(err))
	}
}

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
