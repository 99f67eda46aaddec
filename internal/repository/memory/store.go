// Package memory implements the repository interfaces on process memory. It backs
// STORAGE_DRIVER=memory and the service tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
)

// Store holds every collection behind one lock.
type Store struct {
	mu sync.RWMutex

	divisions  map[int64]domain.Division
	channels   map[int64]domain.Channel
	complaints map[int64]domain.Complaint
	priorities map[int64]domain.Priority
	sources    map[int64]domain.Source
	terminals  map[int64]domain.Terminal
	policies   map[int64]domain.ComplaintPolicy
	customers  map[int64]domain.Customer
	employees  map[int64]domain.Employee

	tickets      map[string]domain.Ticket
	activities   []domain.TicketActivity
	statusEvents []domain.TicketStatusEvent
	feedbacks    map[string]domain.Feedback

	nextPolicyID   int64
	nextCustomerID int64
	nextEmployeeID int64
	nextTerminalID int64

	alerts map[string]time.Time
}

// NewStore returns a store seeded with the same reference rows as the SQL migration.
func NewStore() *Store {
	s := &Store{
		divisions:  map[int64]domain.Division{},
		channels:   map[int64]domain.Channel{},
		complaints: map[int64]domain.Complaint{},
		priorities: map[int64]domain.Priority{},
		sources:    map[int64]domain.Source{},
		terminals:  map[int64]domain.Terminal{},
		policies:   map[int64]domain.ComplaintPolicy{},
		customers:  map[int64]domain.Customer{},
		employees:  map[int64]domain.Employee{},
		tickets:    map[string]domain.Ticket{},
		feedbacks:  map[string]domain.Feedback{},
		alerts:     map[string]time.Time{},
	}
	for _, d := range []domain.Division{
		{ID: 1, Code: "CXC", Name: "Customer Experience Center", IsActive: true},
		{ID: 2, Code: "CARD", Name: "Card Operations", IsActive: true},
		{ID: 3, Code: "DIGITAL", Name: "Digital Banking Operations", IsActive: true},
		{ID: 4, Code: "TRANSFER", Name: "Payment and Transfer Operations", IsActive: true},
	} {
		s.divisions[d.ID] = d
	}
	for _, c := range []domain.Channel{
		{ID: 1, Code: "BRANCH", Name: "Branch"},
		{ID: 2, Code: "ATM", Name: "ATM"},
		{ID: 3, Code: "MOBILE", Name: "Mobile Banking"},
		{ID: 4, Code: "CALL_CENTER", Name: "Call Center"},
	} {
		s.channels[c.ID] = c
	}
	for _, c := range []domain.Complaint{
		{ID: 1, Code: "CARD_RETAINED", Name: "Card retained"},
		{ID: 2, Code: "FAILED_TRANSFER", Name: "Failed transfer"},
		{ID: 3, Code: "DOUBLE_DEBIT", Name: "Double debit"},
	} {
		s.complaints[c.ID] = c
	}
	for _, p := range []domain.Priority{
		{ID: 1, Code: "REGULAR", Name: "Regular"},
		{ID: 2, Code: "HIGH", Name: "High"},
		{ID: 3, Code: "CRITICAL", Name: "Critical"},
	} {
		s.priorities[p.ID] = p
	}
	for _, src := range []domain.Source{
		{ID: 1, Code: "CUSTOMER", Name: "Customer self-service"},
		{ID: 2, Code: "EMPLOYEE", Name: "Employee intake"},
	} {
		s.sources[src.ID] = src
	}
	return s
}

// AddPolicy stores policy, assigning an ID when it has none.
func (s *Store) AddPolicy(policy domain.ComplaintPolicy) domain.ComplaintPolicy {
	s.mu.Lock()
	defer s.mu.Unlock()
	if policy.ID == 0 {
		s.nextPolicyID++
		policy.ID = s.nextPolicyID
	} else if policy.ID > s.nextPolicyID {
		s.nextPolicyID = policy.ID
	}
	if policy.CreatedAt.IsZero() {
		policy.CreatedAt = time.Now().UTC()
	}
	s.policies[policy.ID] = policy
	return policy
}

// AddCustomer stores customer, assigning an ID when it has none.
func (s *Store) AddCustomer(customer domain.Customer) domain.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if customer.ID == 0 {
		s.nextCustomerID++
		customer.ID = s.nextCustomerID
	} else if customer.ID > s.nextCustomerID {
		s.nextCustomerID = customer.ID
	}
	s.customers[customer.ID] = customer
	return customer
}

// AddEmployee stores employee, assigning an ID when it has none.
func (s *Store) AddEmployee(employee domain.Employee) domain.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	if employee.ID == 0 {
		s.nextEmployeeID++
		employee.ID = s.nextEmployeeID
	} else if employee.ID > s.nextEmployeeID {
		s.nextEmployeeID = employee.ID
	}
	s.employees[employee.ID] = employee
	return employee
}

// AddTerminal stores terminal, assigning an ID when it has none.
func (s *Store) AddTerminal(terminal domain.Terminal) domain.Terminal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if terminal.ID == 0 {
		s.nextTerminalID++
		terminal.ID = s.nextTerminalID
	} else if terminal.ID > s.nextTerminalID {
		s.nextTerminalID = terminal.ID
	}
	s.terminals[terminal.ID] = terminal
	return terminal
}

// WithinTx runs fn directly; the memory store has no rollback.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (s *Store) Tickets() repository.TicketRepository { return &ticketRepository{s: s} }

func (s *Store) Activities() repository.TicketActivityRepository {
	return &activityRepository{s: s}
}

func (s *Store) StatusEvents() repository.TicketStatusEventRepository {
	return &statusEventRepository{s: s}
}

func (s *Store) Policies() repository.PolicyRepository { return &policyRepository{s: s} }

func (s *Store) References() repository.ReferenceRepository { return &referenceRepository{s: s} }

func (s *Store) Customers() repository.CustomerRepository { return &customerRepository{s: s} }

func (s *Store) Employees() repository.EmployeeRepository { return &employeeRepository{s: s} }

func (s *Store) Feedbacks() repository.FeedbackRepository { return &feedbackRepository{s: s} }

func (s *Store) AlertSuppressor() repository.AlertSuppressor { return &alertSuppressor{s: s} }

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint, Message: "duplicate key value violates unique constraint"}
}
