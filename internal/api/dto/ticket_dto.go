package dto

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Action          string     `json:"action" validate:"omitempty,oneof=ESCALATED CLOSED escalated closed"`
	CustomerID      *int64     `json:"customer_id" validate:"omitempty,gt=0"`
	ComplaintID     int64      `json:"complaint_id" validate:"required,gt=0"`
	IssueChannelID  int64      `json:"issue_channel_id" validate:"required,gt=0"`
	PriorityID      *int64     `json:"priority_id" validate:"omitempty,gt=0"`
	TerminalID      *int64     `json:"terminal_id" validate:"omitempty,gt=0"`
	Description     string     `json:"description" validate:"required,max=5000"`
	Record          *string    `json:"record" validate:"omitempty,max=5000"`
	Solution        *string    `json:"solution" validate:"omitempty,max=5000"`
	DivisionNote    *string    `json:"division_note" validate:"omitempty,max=2000"`
	TransactionDate *time.Time `json:"transaction_date"`
	Amount          *float64   `json:"amount" validate:"omitempty,gte=0"`
}

// UpdateTicketRequest payload. Which fields are honored depends on action.
type UpdateTicketRequest struct {
	Action         string  `json:"action"`
	ComplaintID    *int64  `json:"complaint_id" validate:"omitempty,gt=0"`
	IssueChannelID *int64  `json:"issue_channel_id" validate:"omitempty,gt=0"`
	PriorityID     *int64  `json:"priority_id" validate:"omitempty,gt=0"`
	TerminalID     *int64  `json:"terminal_id" validate:"omitempty,gt=0"`
	Record         *string `json:"record" validate:"omitempty,max=5000"`
	Reason         *string `json:"reason" validate:"omitempty,max=5000"`
	Solution       *string `json:"solution" validate:"omitempty,max=5000"`
	DivisionNote   *string `json:"division_note" validate:"omitempty,max=2000"`
}

// CreateActivityRequest payload.
type CreateActivityRequest struct {
	ActivityType string   `json:"activity_type" validate:"required,oneof=COMMENT ATTACHMENT"`
	Content      string   `json:"content" validate:"max=5000"`
	FileNames    []string `json:"file_names" validate:"omitempty,max=20,dive,required,max=255"`
}

// SLAInfoResponse summarises SLA position.
type SLAInfoResponse struct {
	PolicyID       *int64    `json:"policy_id,omitempty"`
	SLADays        int       `json:"sla_days"`
	UICID          *int64    `json:"uic_id,omitempty"`
	CommittedDueAt time.Time `json:"committed_due_at"`
	IsOverdue      bool      `json:"is_overdue"`
	HoursRemaining float64   `json:"hours_remaining"`
}

// TicketResponse is the ticket as shown to the caller. Internal fields are omitted for customers.
type TicketResponse struct {
	ID                    string                 `json:"id"`
	TicketNumber          string                 `json:"ticket_number"`
	ComplaintID           int64                  `json:"complaint_id"`
	IssueChannelID        int64                  `json:"issue_channel_id"`
	PriorityID            int64                  `json:"priority_id"`
	TerminalID            *int64                 `json:"terminal_id,omitempty"`
	IntakeSource          domain.IntakeSource    `json:"intake_source"`
	CustomerID            int64                  `json:"customer_id"`
	CustomerStatus        domain.CustomerStatus  `json:"customer_status"`
	EmployeeStatus        *domain.EmployeeStatus `json:"employee_status,omitempty"`
	ResponsibleEmployeeID *int64                 `json:"responsible_employee_id,omitempty"`
	PolicyID              *int64                 `json:"policy_id,omitempty"`
	CommittedDueAt        time.Time              `json:"committed_due_at"`
	ClosedTime            *time.Time             `json:"closed_time,omitempty"`
	Description           string                 `json:"description"`
	Record                *string                `json:"record,omitempty"`
	Reason                *string                `json:"reason,omitempty"`
	Solution              *string                `json:"solution,omitempty"`
	DivisionNotes         []domain.DivisionNote  `json:"division_notes,omitempty"`
	TransactionDate       *time.Time             `json:"transaction_date,omitempty"`
	Amount                *float64               `json:"amount,omitempty"`
	CreatedAt             time.Time              `json:"created_at"`
	UpdatedAt             time.Time              `json:"updated_at"`
	SLAInfo               SLAInfoResponse        `json:"sla_info"`
}

// ActivityResponse is one activity log entry.
type ActivityResponse struct {
	ID           string              `json:"id"`
	ActivityType domain.ActivityType `json:"activity_type"`
	SenderType   domain.SenderType   `json:"sender_type"`
	SenderID     *int64              `json:"sender_id,omitempty"`
	Content      string              `json:"content"`
	ActivityTime time.Time           `json:"activity_time"`
}

// StatusHistoryResponse is one status change.
type StatusHistoryResponse struct {
	ActivityID         string                   `json:"activity_id"`
	Action             domain.StatusEventAction `json:"action_type"`
	FromCustomerStatus *domain.CustomerStatus   `json:"from_customer_status,omitempty"`
	ToCustomerStatus   *domain.CustomerStatus   `json:"to_customer_status,omitempty"`
	FromEmployeeStatus *domain.EmployeeStatus   `json:"from_employee_status,omitempty"`
	ToEmployeeStatus   *domain.EmployeeStatus   `json:"to_employee_status,omitempty"`
	ActorType          domain.SenderType        `json:"actor_type"`
	ActorID            *int64                   `json:"actor_id,omitempty"`
	Content            string                   `json:"content"`
	OccurredAt         time.Time                `json:"occurred_at"`
}

// EmailHistoryResponse is one recorded email.
type EmailHistoryResponse struct {
	ActivityID     string            `json:"activity_id"`
	SenderType     domain.SenderType `json:"sender_type"`
	SenderID       *int64            `json:"sender_id,omitempty"`
	Content        string            `json:"content"`
	RecipientCount *int              `json:"recipient_count,omitempty"`
	SentAt         time.Time         `json:"sent_at"`
}

// CreateFeedbackRequest payload.
type CreateFeedbackRequest struct {
	Score   int    `json:"score" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// UpdateFeedbackRequest payload. Score is accepted only to reject it.
type UpdateFeedbackRequest struct {
	Score   *int   `json:"score"`
	Comment string `json:"comment" validate:"max=2000"`
}

// FeedbackResponse payload.
type FeedbackResponse struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	Score     int       `json:"score"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
