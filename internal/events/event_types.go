package events

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketEscalated     EventType = "ticket_escalated"
	EventTicketDoneByUIC     EventType = "ticket_done_by_uic"
	EventTicketDeleted       EventType = "ticket_deleted"
	EventSLAWarning          EventType = "sla_warning"
	EventSLAOverdue          EventType = "sla_overdue"
)

// AllEventTypes lists every type the service publishes.
var AllEventTypes = []EventType{
	EventTicketCreated,
	EventTicketStatusChanged,
	EventTicketEscalated,
	EventTicketDoneByUIC,
	EventTicketDeleted,
	EventSLAWarning,
	EventSLAOverdue,
}

// RoutingKey maps the event type onto the integration exchange key.
func (t EventType) RoutingKey() string {
	switch t {
	case EventSLAWarning:
		return "sla.warning"
	case EventSLAOverdue:
		return "sla.overdue"
	case EventTicketCreated:
		return "ticket.created"
	case EventTicketStatusChanged:
		return "ticket.status_changed"
	case EventTicketEscalated:
		return "ticket.escalated"
	case EventTicketDoneByUIC:
		return "ticket.done_by_uic"
	case EventTicketDeleted:
		return "ticket.deleted"
	default:
		return "ticket." + string(t)
	}
}

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type domain.SenderType `json:"type"`
	ID   *int64            `json:"id,omitempty"`
}

// ActorOf converts the domain actor into event metadata.
func ActorOf(actor domain.Actor) Actor {
	return Actor{Type: actor.SenderType(), ID: actor.SenderID()}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  string    `json:"ticket_id"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketNumber   string                `json:"ticket_number"`
	CustomerID     int64                 `json:"customer_id"`
	CustomerStatus domain.CustomerStatus `json:"customer_status"`
	EmployeeStatus domain.EmployeeStatus `json:"employee_status"`
	PolicyID       *int64                `json:"policy_id,omitempty"`
	CommittedDueAt time.Time             `json:"committed_due_at"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	TicketNumber       string                   `json:"ticket_number"`
	Action             domain.StatusEventAction `json:"action"`
	FromCustomerStatus *domain.CustomerStatus   `json:"from_customer_status,omitempty"`
	ToCustomerStatus   domain.CustomerStatus    `json:"to_customer_status"`
	FromEmployeeStatus *domain.EmployeeStatus   `json:"from_employee_status,omitempty"`
	ToEmployeeStatus   domain.EmployeeStatus    `json:"to_employee_status"`
}

// TicketEscalatedPayload payload. It triggers the escalation notifier.
type TicketEscalatedPayload struct {
	TicketNumber string `json:"ticket_number"`
	PolicyID     *int64 `json:"policy_id,omitempty"`
}

// TicketDoneByUICPayload payload. It triggers the responsible agent notification.
type TicketDoneByUICPayload struct {
	TicketNumber          string `json:"ticket_number"`
	ResponsibleEmployeeID *int64 `json:"responsible_employee_id,omitempty"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	TicketNumber string `json:"ticket_number"`
}

// SLAAlertPayload payload shared by warning and overdue alerts.
type SLAAlertPayload struct {
	TicketNumber   string    `json:"ticket_number"`
	CommittedDueAt time.Time `json:"committed_due_at"`
	HoursOverdue   float64   `json:"hours_overdue,omitempty"`
}
