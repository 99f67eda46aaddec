package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const sequenceKeyTTL = 48 * time.Hour

// TicketSequence yields the next per-day ticket number suffix for the day [dayStart, dayEnd).
type TicketSequence interface {
	Next(ctx context.Context, dayStart, dayEnd time.Time) (int, error)
}

// TicketCounter is the slice of TicketRepository the sequences need.
type TicketCounter interface {
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int, error)
}

type countingSequence struct {
	tickets TicketCounter
}

// NewCountingSequence returns today's ticket count plus one. Concurrent callers can
// observe the same value; the unique constraint on ticket_number catches that.
func NewCountingSequence(tickets TicketCounter) TicketSequence {
	return &countingSequence{tickets: tickets}
}

func (s *countingSequence) Next(ctx context.Context, dayStart, dayEnd time.Time) (int, error) {
	count, err := s.tickets.CountCreatedBetween(ctx, dayStart, dayEnd)
	if err != nil {
		return 0, err
	}
	return count + 1, nil
}

type redisSequence struct {
	client   *redis.Client
	prefix   string
	fallback TicketSequence
	tickets  TicketCounter
	logger   *zap.Logger
}

// NewRedisSequence hands out suffixes from an atomic per-day Redis counter. The counter is
// seeded from the database count the first time a day is seen, and the counting sequence
// is used whenever Redis is unavailable.
func NewRedisSequence(client *redis.Client, prefix string, tickets TicketCounter, logger *zap.Logger) TicketSequence {
	return &redisSequence{
		client:   client,
		prefix:   prefix,
		fallback: NewCountingSequence(tickets),
		tickets:  tickets,
		logger:   logger.Named("ticket_sequence"),
	}
}

func (s *redisSequence) Next(ctx context.Context, dayStart, dayEnd time.Time) (int, error) {
	key := fmt.Sprintf("ticket_seq:%s:%s", s.prefix, dayStart.Format("20060102"))

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		s.logger.Warn("redis sequence unavailable, counting instead", zap.String("key", key), zap.Error(err))
		return s.fallback.Next(ctx, dayStart, dayEnd)
	}
	if exists == 0 {
		count, err := s.tickets.CountCreatedBetween(ctx, dayStart, dayEnd)
		if err != nil {
			return 0, err
		}
		if err := s.client.SetNX(ctx, key, count, sequenceKeyTTL).Err(); err != nil {
			s.logger.Warn("seed redis sequence", zap.String("key", key), zap.Error(err))
			return s.fallback.Next(ctx, dayStart, dayEnd)
		}
	}

	next, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		s.logger.Warn("redis sequence unavailable, counting instead", zap.String("key", key), zap.Error(err))
		return s.fallback.Next(ctx, dayStart, dayEnd)
	}
	return int(next), nil
}
