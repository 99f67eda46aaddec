package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/persistence"
)

// TicketNumberConstraint is the unique constraint guarding ticket numbers.
const TicketNumberConstraint = "tickets_ticket_number_key"

// TicketFilter captures list parameters. Nil fields are not filtered on.
type TicketFilter struct {
	CustomerID       *int64
	UICID            *int64
	ComplaintID      *int64
	PriorityID       *int64
	CustomerStatuses []domain.CustomerStatus
	EmployeeStatuses []domain.EmployeeStatus
	SearchTerm       *string
	CreatedFrom      *time.Time
	CreatedTo        *time.Time
	IncludeDeleted   bool
	Limit            int
	Offset           int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByNumber(ctx context.Context, number string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int, error)
	ListDueBetween(ctx context.Context, from, to time.Time) ([]domain.Ticket, error)
	ListOverdue(ctx context.Context, now time.Time) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, ticket_number, complaint_id, issue_channel_id, priority_id, terminal_id, intake_source,
               customer_id, responsible_employee_id, customer_status, employee_status, policy_id,
               committed_due_at, closed_time, description, record, reason, solution, division_notes,
               transaction_date, amount, created_at, updated_at, delete_at, delete_by`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, ticket_number, complaint_id, issue_channel_id, priority_id, terminal_id, intake_source,
            customer_id, responsible_employee_id, customer_status, employee_status, policy_id, committed_due_at,
            closed_time, description, record, reason, solution, division_notes, transaction_date, amount, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$22)
        RETURNING created_at, updated_at`
	return persistence.Conn(ctx, r.pool).QueryRow(ctx, query,
		ticket.ID,
		ticket.TicketNumber,
		ticket.ComplaintID,
		ticket.IssueChannelID,
		ticket.PriorityID,
		ticket.TerminalID,
		ticket.IntakeSource,
		ticket.CustomerID,
		ticket.ResponsibleEmployeeID,
		ticket.CustomerStatus,
		ticket.EmployeeStatus,
		ticket.PolicyID,
		ticket.CommittedDueAt,
		ticket.ClosedTime,
		ticket.Description,
		ticket.Record,
		ticket.Reason,
		ticket.Solution,
		notesOrEmpty(ticket.DivisionNotes),
		ticket.TransactionDate,
		ticket.Amount,
		ticket.CreatedAt,
	).Scan(&ticket.CreatedAt, &ticket.UpdatedAt)
}

// Update writes every mutable column. customer_id and ticket_number are never touched.
func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET complaint_id=$1, issue_channel_id=$2, priority_id=$3, terminal_id=$4,
            responsible_employee_id=$5, customer_status=$6, employee_status=$7, policy_id=$8,
            committed_due_at=$9, closed_time=$10, record=$11, reason=$12, solution=$13, division_notes=$14,
            delete_at=$15, delete_by=$16, updated_at=$17
        WHERE id=$18`
	cmd, err := persistence.Conn(ctx, r.pool).Exec(ctx, query,
		ticket.ComplaintID,
		ticket.IssueChannelID,
		ticket.PriorityID,
		ticket.TerminalID,
		ticket.ResponsibleEmployeeID,
		ticket.CustomerStatus,
		ticket.EmployeeStatus,
		ticket.PolicyID,
		ticket.CommittedDueAt,
		ticket.ClosedTime,
		ticket.Record,
		ticket.Reason,
		ticket.Solution,
		notesOrEmpty(ticket.DivisionNotes),
		ticket.DeletedAt,
		ticket.DeletedBy,
		ticket.UpdatedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE ticket_number=$1`
	return r.fetchSingle(ctx, query, number)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := scanTicket(persistence.Conn(ctx, r.pool).QueryRow(ctx, query, arg), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT ` + ticketColumns + ` FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if !filter.IncludeDeleted {
		clauses = append(clauses, "delete_at IS NULL")
	}
	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		clauses = append(clauses, fmt.Sprintf("customer_id=$%d", len(args)))
	}
	if filter.UICID != nil {
		args = append(args, *filter.UICID)
		clauses = append(clauses, fmt.Sprintf("policy_id IN (SELECT id FROM complaint_policies WHERE uic_id=$%d)", len(args)))
	}
	if filter.ComplaintID != nil {
		args = append(args, *filter.ComplaintID)
		clauses = append(clauses, fmt.Sprintf("complaint_id=$%d", len(args)))
	}
	if filter.PriorityID != nil {
		args = append(args, *filter.PriorityID)
		clauses = append(clauses, fmt.Sprintf("priority_id=$%d", len(args)))
	}
	if len(filter.CustomerStatuses) > 0 {
		placeholders := make([]string, len(filter.CustomerStatuses))
		for i, status := range filter.CustomerStatuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("customer_status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.EmployeeStatuses) > 0 {
		placeholders := make([]string, len(filter.EmployeeStatuses))
		for i, status := range filter.EmployeeStatuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("employee_status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at < $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(ticket_number) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	limit, offset := NormalizePage(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC, id LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := persistence.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// CountCreatedBetween counts tickets created in [from, to), deleted ones included.
func (r *ticketRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM tickets WHERE created_at >= $1 AND created_at < $2`
	var count int
	if err := persistence.Conn(ctx, r.pool).QueryRow(ctx, query, from, to).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ListDueBetween returns open tickets with committed_due_at in [from, to).
func (r *ticketRepository) ListDueBetween(ctx context.Context, from, to time.Time) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets
        WHERE closed_time IS NULL AND delete_at IS NULL AND committed_due_at >= $1 AND committed_due_at < $2
        ORDER BY committed_due_at ASC`
	rows, err := persistence.Conn(ctx, r.pool).Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// ListOverdue returns open tickets whose committed_due_at is before now.
func (r *ticketRepository) ListOverdue(ctx context.Context, now time.Time) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets
        WHERE closed_time IS NULL AND delete_at IS NULL AND committed_due_at < $1
        ORDER BY committed_due_at ASC`
	rows, err := persistence.Conn(ctx, r.pool).Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.TicketNumber,
		&ticket.ComplaintID,
		&ticket.IssueChannelID,
		&ticket.PriorityID,
		&ticket.TerminalID,
		&ticket.IntakeSource,
		&ticket.CustomerID,
		&ticket.ResponsibleEmployeeID,
		&ticket.CustomerStatus,
		&ticket.EmployeeStatus,
		&ticket.PolicyID,
		&ticket.CommittedDueAt,
		&ticket.ClosedTime,
		&ticket.Description,
		&ticket.Record,
		&ticket.Reason,
		&ticket.Solution,
		&ticket.DivisionNotes,
		&ticket.TransactionDate,
		&ticket.Amount,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.DeletedAt,
		&ticket.DeletedBy,
	)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func notesOrEmpty(notes []domain.DivisionNote) []domain.DivisionNote {
	if notes == nil {
		return []domain.DivisionNote{}
	}
	return notes
}
