package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
)

type ticketRepository struct {
	s *Store
}

func (r *ticketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.tickets {
		if existing.TicketNumber == ticket.TicketNumber {
			return uniqueViolation(repository.TicketNumberConstraint)
		}
	}
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now().UTC()
	}
	ticket.UpdatedAt = ticket.CreatedAt
	r.s.tickets[ticket.ID] = cloneTicket(*ticket)
	return nil
}

func (r *ticketRepository) Update(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	updated := cloneTicket(*ticket)
	updated.CustomerID = existing.CustomerID
	updated.TicketNumber = existing.TicketNumber
	updated.CreatedAt = existing.CreatedAt
	r.s.tickets[ticket.ID] = updated
	return nil
}

func (r *ticketRepository) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ticket, ok := r.s.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := cloneTicket(ticket)
	return &out, nil
}

func (r *ticketRepository) GetByNumber(_ context.Context, number string) (*domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, ticket := range r.s.tickets {
		if ticket.TicketNumber == number {
			out := cloneTicket(ticket)
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *ticketRepository) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []domain.Ticket
	for _, ticket := range r.s.tickets {
		if r.matches(ticket, filter) {
			result = append(result, cloneTicket(ticket))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	limit, offset := repository.NormalizePage(filter.Limit, filter.Offset)
	if offset >= len(result) {
		return nil, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], nil
}

func (r *ticketRepository) matches(ticket domain.Ticket, filter repository.TicketFilter) bool {
	if !filter.IncludeDeleted && ticket.DeletedAt != nil {
		return false
	}
	if filter.CustomerID != nil && ticket.CustomerID != *filter.CustomerID {
		return false
	}
	if filter.UICID != nil {
		if ticket.PolicyID == nil {
			return false
		}
		policy, ok := r.s.policies[*ticket.PolicyID]
		if !ok || policy.UICID == nil || *policy.UICID != *filter.UICID {
			return false
		}
	}
	if filter.ComplaintID != nil && ticket.ComplaintID != *filter.ComplaintID {
		return false
	}
	if filter.PriorityID != nil && ticket.PriorityID != *filter.PriorityID {
		return false
	}
	if len(filter.CustomerStatuses) > 0 && !contains(filter.CustomerStatuses, ticket.CustomerStatus) {
		return false
	}
	if len(filter.EmployeeStatuses) > 0 && !contains(filter.EmployeeStatuses, ticket.EmployeeStatus) {
		return false
	}
	if filter.CreatedFrom != nil && ticket.CreatedAt.Before(*filter.CreatedFrom) {
		return false
	}
	if filter.CreatedTo != nil && !ticket.CreatedAt.Before(*filter.CreatedTo) {
		return false
	}
	if filter.SearchTerm != nil {
		term := strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
		if term != "" &&
			!strings.Contains(strings.ToLower(ticket.TicketNumber), term) &&
			!strings.Contains(strings.ToLower(ticket.Description), term) {
			return false
		}
	}
	return true
}

func (r *ticketRepository) CountCreatedBetween(_ context.Context, from, to time.Time) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	count := 0
	for _, ticket := range r.s.tickets {
		if !ticket.CreatedAt.Before(from) && ticket.CreatedAt.Before(to) {
			count++
		}
	}
	return count, nil
}

func (r *ticketRepository) ListDueBetween(_ context.Context, from, to time.Time) ([]domain.Ticket, error) {
	return r.openWhere(func(t domain.Ticket) bool {
		return !t.CommittedDueAt.Before(from) && t.CommittedDueAt.Before(to)
	}), nil
}

func (r *ticketRepository) ListOverdue(_ context.Context, now time.Time) ([]domain.Ticket, error) {
	return r.openWhere(func(t domain.Ticket) bool {
		return t.CommittedDueAt.Before(now)
	}), nil
}

func (r *ticketRepository) openWhere(pred func(domain.Ticket) bool) []domain.Ticket {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []domain.Ticket
	for _, ticket := range r.s.tickets {
		if ticket.ClosedTime != nil || ticket.DeletedAt != nil || !pred(ticket) {
			continue
		}
		result = append(result, cloneTicket(ticket))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CommittedDueAt.Before(result[j].CommittedDueAt)
	})
	return result
}

func cloneTicket(t domain.Ticket) domain.Ticket {
	if t.DivisionNotes != nil {
		notes := make([]domain.DivisionNote, len(t.DivisionNotes))
		copy(notes, t.DivisionNotes)
		t.DivisionNotes = notes
	}
	return t
}

func contains[T comparable](items []T, v T) bool {
	for _, item := range items {
		if item == v {
			return true
		}
	}
	return false
}
