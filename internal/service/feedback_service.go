package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/persistence"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// FeedbackService records customer ratings of closed tickets.
type FeedbackService struct {
	feedbacks repository.FeedbackRepository
	tickets   repository.TicketRepository
	policies  repository.PolicyRepository
	logger    *zap.Logger
	nowFn     func() time.Time
}

// NewFeedbackService constructs the service.
func NewFeedbackService(feedbacks repository.FeedbackRepository, tickets repository.TicketRepository, policies repository.PolicyRepository, logger *zap.Logger, now func() time.Time) *FeedbackService {
	if now == nil {
		now = time.Now
	}
	return &FeedbackService{
		feedbacks: feedbacks,
		tickets:   tickets,
		policies:  policies,
		logger:    logger.Named("feedback_service"),
		nowFn:     now,
	}
}

// Submit stores the owner's rating of a CLOSED ticket. A ticket can be rated once.
func (s *FeedbackService) Submit(ctx context.Context, actor domain.Actor, ticketID string, score int, comment string) (*domain.Feedback, error) {
	ticket, err := s.ownedTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.EmployeeStatus != domain.EmployeeStatusClosed {
		return nil, apperrors.NewValidationError("feedback can only be given on closed tickets", nil)
	}
	if score < domain.FeedbackScoreMin || score > domain.FeedbackScoreMax {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("score must be between %d and %d", domain.FeedbackScoreMin, domain.FeedbackScoreMax),
			map[string]any{"field": "score"})
	}

	now := s.nowFn().UTC()
	feedback := &domain.Feedback{
		ID:         uuid.NewString(),
		TicketID:   ticket.ID,
		CustomerID: actor.ID,
		Score:      score,
		Comment:    strings.TrimSpace(comment),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.feedbacks.Create(ctx, feedback); err != nil {
		if persistence.IsUniqueViolation(err, repository.FeedbackConstraint) {
			return nil, apperrors.NewConflict("feedback already submitted", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("feedback submitted", zap.String("ticket_id", ticket.ID), zap.Int("score", score))
	return feedback, nil
}

// UpdateComment changes the comment of existing feedback. The score is immutable.
func (s *FeedbackService) UpdateComment(ctx context.Context, actor domain.Actor, ticketID string, score *int, comment string) (*domain.Feedback, error) {
	if score != nil {
		return nil, apperrors.NewValidationError("score cannot be changed", map[string]any{"field": "score"})
	}
	if _, err := s.ownedTicket(ctx, actor, ticketID); err != nil {
		return nil, err
	}
	feedback, err := s.feedbacks.GetByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "feedback", map[string]any{"ticket_id": ticketID})
	}
	feedback.Comment = strings.TrimSpace(comment)
	feedback.UpdatedAt = s.nowFn().UTC()
	if err := s.feedbacks.UpdateComment(ctx, feedback); err != nil {
		return nil, apperrors.NotFoundOr(err, "feedback", map[string]any{"ticket_id": ticketID})
	}
	return feedback, nil
}

// Get returns feedback for a ticket visible to actor.
func (s *FeedbackService) Get(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Feedback, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil || ticket.IsDeleted() {
		return nil, apperrors.NotFoundOr(orNoRows(err), "ticket", map[string]any{"ticket_id": ticketID})
	}
	var policy *domain.ComplaintPolicy
	if ticket.PolicyID != nil {
		policy, _ = s.policies.GetByID(ctx, *ticket.PolicyID)
	}
	if err := authorizeView(actor, ticket, policy); err != nil {
		return nil, err
	}
	feedback, err := s.feedbacks.GetByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "feedback", map[string]any{"ticket_id": ticketID})
	}
	return feedback, nil
}

func (s *FeedbackService) ownedTicket(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, error) {
	if !actor.IsCustomer() {
		return nil, apperrors.NewForbidden("only customers can give feedback")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil || ticket.IsDeleted() {
		return nil, apperrors.NotFoundOr(orNoRows(err), "ticket", map[string]any{"ticket_id": ticketID})
	}
	if ticket.CustomerID != actor.ID {
		return nil, apperrors.NewForbidden("ticket belongs to another customer")
	}
	return ticket, nil
}

// orNoRows treats a soft-deleted row the same as a missing one.
func orNoRows(err error) error {
	if err != nil {
		return err
	}
	return pgx.ErrNoRows
}
