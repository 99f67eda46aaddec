package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AlertSuppressor records that an alert was sent so repeats within ttl can be skipped.
type AlertSuppressor interface {
	// Acquire returns true when no alert of kind was recorded for ticketID within ttl.
	Acquire(ctx context.Context, kind, ticketID string, ttl time.Duration) (bool, error)
	// Release drops the record so the next scan alerts again.
	Release(ctx context.Context, kind, ticketID string) error
}

type redisAlertSuppressor struct {
	client *redis.Client
}

// NewRedisAlertSuppressor builds a suppressor keyed on sla_alert:<kind>:<ticket>.
func NewRedisAlertSuppressor(client *redis.Client) AlertSuppressor {
	return &redisAlertSuppressor{client: client}
}

func (s *redisAlertSuppressor) Acquire(ctx context.Context, kind, ticketID string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, alertKey(kind, ticketID), time.Now().UTC().Format(time.RFC3339), ttl).Result()
}

func (s *redisAlertSuppressor) Release(ctx context.Context, kind, ticketID string) error {
	return s.client.Del(ctx, alertKey(kind, ticketID)).Err()
}

func alertKey(kind, ticketID string) string {
	return fmt.Sprintf("sla_alert:%s:%s", kind, ticketID)
}
