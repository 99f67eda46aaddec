package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/persistence"
)

// TicketStatusEventRepository stores structured status transitions.
type TicketStatusEventRepository interface {
	Create(ctx context.Context, event *domain.TicketStatusEvent) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketStatusEvent, error)
}

type ticketStatusEventRepository struct {
	pool *pgxpool.Pool
}

// NewTicketStatusEventRepository builds repository.
func NewTicketStatusEventRepository(pool *pgxpool.Pool) TicketStatusEventRepository {
	return &ticketStatusEventRepository{pool: pool}
}

func (r *ticketStatusEventRepository) Create(ctx context.Context, event *domain.TicketStatusEvent) error {
	const query = `
        INSERT INTO ticket_status_events (id, ticket_id, activity_id, from_customer_status, to_customer_status,
            from_employee_status, to_employee_status, action, actor_type, actor_id, occurred_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	_, err := persistence.Conn(ctx, r.pool).Exec(ctx, query,
		event.ID,
		event.TicketID,
		event.ActivityID,
		event.FromCustomerStatus,
		event.ToCustomerStatus,
		event.FromEmployeeStatus,
		event.ToEmployeeStatus,
		event.Action,
		event.ActorType,
		event.ActorID,
		event.OccurredAt,
	)
	return err
}

func (r *ticketStatusEventRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketStatusEvent, error) {
	const query = `
        SELECT id, ticket_id, activity_id, from_customer_status, to_customer_status, from_employee_status,
               to_employee_status, action, actor_type, actor_id, occurred_at
        FROM ticket_status_events WHERE ticket_id=$1 ORDER BY occurred_at ASC, id ASC`
	rows, err := persistence.Conn(ctx, r.pool).Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketStatusEvent
	for rows.Next() {
		var event domain.TicketStatusEvent
		if err := rows.Scan(
			&event.ID,
			&event.TicketID,
			&event.ActivityID,
			&event.FromCustomerStatus,
			&event.ToCustomerStatus,
			&event.FromEmployeeStatus,
			&event.ToEmployeeStatus,
			&event.Action,
			&event.ActorType,
			&event.ActorID,
			&event.OccurredAt,
		); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}
