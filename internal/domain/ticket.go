package domain

import "time"

// CustomerStatus is the coarse, customer-visible ticket status.
type CustomerStatus string

const (
	CustomerStatusAccepted   CustomerStatus = "ACCEPTED"
	CustomerStatusVerifying  CustomerStatus = "VERIFYING"
	CustomerStatusProcessing CustomerStatus = "PROCESSING"
	CustomerStatusClosed     CustomerStatus = "CLOSED"
	CustomerStatusDeclined   CustomerStatus = "DECLINED"
)

// EmployeeStatus is the fine-grained internal ticket status.
type EmployeeStatus string

const (
	EmployeeStatusOpen       EmployeeStatus = "OPEN"
	EmployeeStatusHandledCXC EmployeeStatus = "HANDLEDCXC"
	EmployeeStatusEscalated  EmployeeStatus = "ESCALATED"
	EmployeeStatusDoneByUIC  EmployeeStatus = "DONE_BY_UIC"
	EmployeeStatusClosed     EmployeeStatus = "CLOSED"
	EmployeeStatusDeclined   EmployeeStatus = "DECLINED"
	EmployeeStatusResolved   EmployeeStatus = "RESOLVED"
)

// IsTerminal reports whether no further transition is possible.
func (s EmployeeStatus) IsTerminal() bool {
	switch s {
	case EmployeeStatusClosed, EmployeeStatusDeclined, EmployeeStatusResolved:
		return true
	default:
		return false
	}
}

// IntakeSource records who opened the ticket.
type IntakeSource string

const (
	IntakeSourceCustomer IntakeSource = "CUSTOMER"
	IntakeSourceEmployee IntakeSource = "EMPLOYEE"
)

// DivisionNote is a timestamped note left by an employee.
type DivisionNote struct {
	EmployeeID int64     `json:"employee_id"`
	DivisionID int64     `json:"division_id"`
	Note       string    `json:"note"`
	CreatedAt  time.Time `json:"created_at"`
}

// Ticket is the aggregate for customer complaints.
type Ticket struct {
	ID                    string
	TicketNumber          string
	ComplaintID           int64
	IssueChannelID        int64
	PriorityID            int64
	TerminalID            *int64
	IntakeSource          IntakeSource
	CustomerID            int64
	ResponsibleEmployeeID *int64
	CustomerStatus        CustomerStatus
	EmployeeStatus        EmployeeStatus
	PolicyID              *int64
	CommittedDueAt        time.Time
	ClosedTime            *time.Time
	Description           string
	Record                *string
	Reason                *string
	Solution              *string
	DivisionNotes         []DivisionNote
	TransactionDate       *time.Time
	Amount                *float64
	CreatedAt             time.Time
	UpdatedAt             time.Time
	DeletedAt             *time.Time
	DeletedBy             *int64
}

// IsDeleted reports whether the ticket was soft deleted.
func (t *Ticket) IsDeleted() bool {
	return t.DeletedAt != nil
}

// IsOverdue reports whether the committed due date passed without closure.
func (t *Ticket) IsOverdue(now time.Time) bool {
	return t.ClosedTime == nil && !t.CommittedDueAt.IsZero() && now.After(t.CommittedDueAt)
}
