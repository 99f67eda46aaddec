package service

import (
	"context"
	"fmt"
	"time"

	"github.com/spec-kit/complaint-service/internal/repository"
)

// TicketNumberGenerator formats PREFIX-YYYYMMDDNNNN numbers in the configured timezone.
type TicketNumberGenerator struct {
	sequence repository.TicketSequence
	prefix   string
	location *time.Location
}

// NewTicketNumberGenerator builds a generator.
func NewTicketNumberGenerator(sequence repository.TicketSequence, prefix string, location *time.Location) *TicketNumberGenerator {
	if location == nil {
		location = time.UTC
	}
	return &TicketNumberGenerator{sequence: sequence, prefix: prefix, location: location}
}

// Next returns the number for a ticket created at now.
func (g *TicketNumberGenerator) Next(ctx context.Context, now time.Time) (string, error) {
	start, end := DayBounds(now, g.location)
	seq, err := g.sequence.Next(ctx, start, end)
	if err != nil {
		return "", fmt.Errorf("next ticket sequence: %w", err)
	}
	return FormatTicketNumber(g.prefix, start, seq), nil
}

// DayBounds returns [midnight, next midnight) of the day containing t in loc.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// FormatTicketNumber renders PREFIX-YYYYMMDD followed by a zero-padded 4 digit sequence.
func FormatTicketNumber(prefix string, day time.Time, seq int) string {
	return fmt.Sprintf("%s-%s%04d", prefix, day.Format("20060102"), seq)
}
