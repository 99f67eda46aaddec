package memory

import (
	"context"
	"sort"

	"github.com/spec-kit/complaint-service/internal/domain"
)

type activityRepository struct {
	s *Store
}

func (r *activityRepository) Create(_ context.Context, activity *domain.TicketActivity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.activities = append(r.s.activities, *activity)
	return nil
}

func (r *activityRepository) ListByTicket(_ context.Context, ticketID string, types ...domain.ActivityType) ([]domain.TicketActivity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []domain.TicketActivity
	for _, activity := range r.s.activities {
		if activity.TicketID != ticketID {
			continue
		}
		if len(types) > 0 && !contains(types, activity.ActivityType) {
			continue
		}
		result = append(result, activity)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ActivityTime.Before(result[j].ActivityTime)
	})
	return result, nil
}

type statusEventRepository struct {
	s *Store
}

func (r *statusEventRepository) Create(_ context.Context, event *domain.TicketStatusEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.statusEvents = append(r.s.statusEvents, *event)
	return nil
}

func (r *statusEventRepository) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketStatusEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []domain.TicketStatusEvent
	for _, event := range r.s.statusEvents {
		if event.TicketID == ticketID {
			result = append(result, event)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].OccurredAt.Before(result[j].OccurredAt)
	})
	return result, nil
}
