package notification

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/observability"
)

// ResilienceConfig tunes retry and breaker behaviour for one transport.
type ResilienceConfig struct {
	Name             string
	RetryAttempts    int
	BreakerThreshold int
	InitialInterval  time.Duration
	OpenTimeout      time.Duration
}

// guard wraps calls with exponential retry inside a circuit breaker.
type guard struct {
	name    string
	cfg     ResilienceConfig
	cb      *gobreaker.CircuitBreaker[struct{}]
	metrics *observability.Metrics
	logger  *zap.Logger
}

func newGuard(cfg ResilienceConfig, metrics *observability.Metrics, logger *zap.Logger) *guard {
	if cfg.RetryAttempts < 1 {
		cfg.RetryAttempts = 1
	}
	if cfg.BreakerThreshold < 1 {
		cfg.BreakerThreshold = 5
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 200 * time.Millisecond
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = time.Minute
	}
	g := &guard{name: cfg.Name, cfg: cfg, metrics: metrics, logger: logger.Named(cfg.Name)}
	threshold := uint32(cfg.BreakerThreshold)
	metrics.SetBreakerState(cfg.Name, 0)
	g.cb = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			g.logger.Warn("circuit breaker state change", zap.String("from", from.String()), zap.String("to", to.String()))
			metrics.SetBreakerState(name, stateValue(to))
		},
	})
	return g
}

// do runs op with retries; the whole retry sequence counts as one breaker request.
func (g *guard) do(ctx context.Context, op func(ctx context.Context) error) error {
	_, err := g.cb.Execute(func() (struct{}, error) {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = g.cfg.InitialInterval
		policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(g.cfg.RetryAttempts-1)), ctx)
		attempt := func() error {
			err := op(ctx)
			if err != nil && !retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		notify := func(err error, wait time.Duration) {
			g.logger.Debug("delivery failed, retrying", zap.Error(err), zap.Duration("wait", wait))
		}
		return struct{}{}, backoff.RetryNotify(attempt, policy, notify)
	})
	switch {
	case err == nil:
		g.metrics.RecordNotification(g.name, "sent")
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		g.metrics.RecordNotification(g.name, "rejected")
	default:
		g.metrics.RecordNotification(g.name, "failed")
	}
	return err
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}
	return true
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// ResilientMailer adds retry and a circuit breaker to a Mailer.
type ResilientMailer struct {
	next  Mailer
	guard *guard
}

func NewResilientMailer(next Mailer, cfg ResilienceConfig, metrics *observability.Metrics, logger *zap.Logger) *ResilientMailer {
	if cfg.Name == "" {
		cfg.Name = "email"
	}
	return &ResilientMailer{next: next, guard: newGuard(cfg, metrics, logger)}
}

func (m *ResilientMailer) SendEmail(ctx context.Context, to, subject, html string) error {
	return m.guard.do(ctx, func(ctx context.Context) error {
		return m.next.SendEmail(ctx, to, subject, html)
	})
}

// ResilientPusher adds retry and a circuit breaker to a Pusher.
type ResilientPusher struct {
	next  Pusher
	guard *guard
}

func NewResilientPusher(next Pusher, cfg ResilienceConfig, metrics *observability.Metrics, logger *zap.Logger) *ResilientPusher {
	if cfg.Name == "" {
		cfg.Name = "push"
	}
	return &ResilientPusher{next: next, guard: newGuard(cfg, metrics, logger)}
}

func (p *ResilientPusher) SendPush(ctx context.Context, token, title, body string, data map[string]string) error {
	return p.guard.do(ctx, func(ctx context.Context) error {
		return p.next.SendPush(ctx, token, title, body, data)
	})
}
