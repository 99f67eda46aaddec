package memory

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
)

type feedbackRepository struct {
	s *Store
}

func (r *feedbackRepository) Create(_ context.Context, feedback *domain.Feedback) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.feedbacks[feedback.TicketID]; ok {
		return uniqueViolation(repository.FeedbackConstraint)
	}
	feedback.UpdatedAt = feedback.CreatedAt
	r.s.feedbacks[feedback.TicketID] = *feedback
	return nil
}

func (r *feedbackRepository) UpdateComment(_ context.Context, feedback *domain.Feedback) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.feedbacks[feedback.TicketID]
	if !ok || existing.ID != feedback.ID {
		return pgx.ErrNoRows
	}
	existing.Comment = feedback.Comment
	existing.UpdatedAt = feedback.UpdatedAt
	r.s.feedbacks[feedback.TicketID] = existing
	return nil
}

func (r *feedbackRepository) GetByTicket(_ context.Context, ticketID string) (*domain.Feedback, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	feedback, ok := r.s.feedbacks[ticketID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &feedback, nil
}

type alertSuppressor struct {
	s *Store
}

func (a *alertSuppressor) Acquire(_ context.Context, kind, ticketID string, ttl time.Duration) (bool, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	key := kind + ":" + ticketID
	now := time.Now()
	if until, ok := a.s.alerts[key]; ok && now.Before(until) {
		return false, nil
	}
	a.s.alerts[key] = now.Add(ttl)
	return true, nil
}

func (a *alertSuppressor) Release(_ context.Context, kind, ticketID string) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	delete(a.s.alerts, kind+":"+ticketID)
	return nil
}
