package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/persistence"
)

// TicketActivityRepository manages the append-only ticket activity log.
type TicketActivityRepository interface {
	Create(ctx context.Context, activity *domain.TicketActivity) error
	// ListByTicket returns activities in ascending time order, restricted to types when any are given.
	ListByTicket(ctx context.Context, ticketID string, types ...domain.ActivityType) ([]domain.TicketActivity, error)
}

type ticketActivityRepository struct {
	pool *pgxpool.Pool
}

// NewTicketActivityRepository builds repository.
func NewTicketActivityRepository(pool *pgxpool.Pool) TicketActivityRepository {
	return &ticketActivityRepository{pool: pool}
}

func (r *ticketActivityRepository) Create(ctx context.Context, activity *domain.TicketActivity) error {
	const query = `
        INSERT INTO ticket_activities (id, ticket_id, activity_type, sender_type, sender_id, content, activity_time)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := persistence.Conn(ctx, r.pool).Exec(ctx, query,
		activity.ID,
		activity.TicketID,
		activity.ActivityType,
		activity.SenderType,
		activity.SenderID,
		activity.Content,
		activity.ActivityTime,
	)
	return err
}

func (r *ticketActivityRepository) ListByTicket(ctx context.Context, ticketID string, types ...domain.ActivityType) ([]domain.TicketActivity, error) {
	query := `
        SELECT id, ticket_id, activity_type, sender_type, sender_id, content, activity_time
        FROM ticket_activities WHERE ticket_id=$1`
	args := []any{ticketID}
	if len(types) > 0 {
		placeholders := make([]string, len(types))
		for i, t := range types {
			args = append(args, t)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		query += fmt.Sprintf(" AND activity_type IN (%s)", strings.Join(placeholders, ","))
	}
	query += " ORDER BY activity_time ASC, id ASC"

	rows, err := persistence.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivities(rows)
}

func scanActivities(rows pgx.Rows) ([]domain.TicketActivity, error) {
	var result []domain.TicketActivity
	for rows.Next() {
		var activity domain.TicketActivity
		if err := rows.Scan(
			&activity.ID,
			&activity.TicketID,
			&activity.ActivityType,
			&activity.SenderType,
			&activity.SenderID,
			&activity.Content,
			&activity.ActivityTime,
		); err != nil {
			return nil, err
		}
		result = append(result, activity)
	}
	return result, rows.Err()
}
