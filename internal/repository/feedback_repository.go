package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/persistence"
)

// FeedbackConstraint is the one-feedback-per-ticket unique constraint.
const FeedbackConstraint = "feedbacks_ticket_id_key"

// FeedbackRepository persists customer feedback on closed tickets.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *domain.Feedback) error
	UpdateComment(ctx context.Context, feedback *domain.Feedback) error
	GetByTicket(ctx context.Context, ticketID string) (*domain.Feedback, error)
}

type feedbackRepository struct {
	pool *pgxpool.Pool
}

// NewFeedbackRepository constructs repository.
func NewFeedbackRepository(pool *pgxpool.Pool) FeedbackRepository {
	return &feedbackRepository{pool: pool}
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *domain.Feedback) error {
	const query = `
        INSERT INTO feedbacks (id, ticket_id, customer_id, score, comment, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$6)
        RETURNING created_at, updated_at`
	return persistence.Conn(ctx, r.pool).QueryRow(ctx, query,
		feedback.ID,
		feedback.TicketID,
		feedback.CustomerID,
		feedback.Score,
		feedback.Comment,
		feedback.CreatedAt,
	).Scan(&feedback.CreatedAt, &feedback.UpdatedAt)
}

// UpdateComment changes only the comment; the score column is never written after insert.
func (r *feedbackRepository) UpdateComment(ctx context.Context, feedback *domain.Feedback) error {
	const query = `UPDATE feedbacks SET comment=$1, updated_at=$2 WHERE id=$3`
	cmd, err := persistence.Conn(ctx, r.pool).Exec(ctx, query, feedback.Comment, feedback.UpdatedAt, feedback.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *feedbackRepository) GetByTicket(ctx context.Context, ticketID string) (*domain.Feedback, error) {
	const query = `
        SELECT id, ticket_id, customer_id, score, comment, created_at, updated_at
        FROM feedbacks WHERE ticket_id=$1`
	var feedback domain.Feedback
	if err := persistence.Conn(ctx, r.pool).QueryRow(ctx, query, ticketID).Scan(
		&feedback.ID,
		&feedback.TicketID,
		&feedback.CustomerID,
		&feedback.Score,
		&feedback.Comment,
		&feedback.CreatedAt,
		&feedback.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &feedback, nil
}
