package domain

import "time"

// StatusEventAction classifies how a status change came about.
type StatusEventAction string

const (
	StatusEventCreated   StatusEventAction = "created"
	StatusEventHandled   StatusEventAction = "handled"
	StatusEventEscalated StatusEventAction = "escalated"
	StatusEventClosed    StatusEventAction = "closed"
	StatusEventDeclined  StatusEventAction = "declined"
	StatusEventDoneByUIC StatusEventAction = "done_by_uic"
	StatusEventUpdated   StatusEventAction = "updated"
)

// TicketStatusEvent is the structured, append-only record of a status change.
// The STATUS_CHANGE activity text is rendered from these fields, never parsed back.
type TicketStatusEvent struct {
	ID                 string
	TicketID           string
	ActivityID         string
	FromCustomerStatus *CustomerStatus
	ToCustomerStatus   CustomerStatus
	FromEmployeeStatus *EmployeeStatus
	ToEmployeeStatus   EmployeeStatus
	Action             StatusEventAction
	ActorType          SenderType
	ActorID            *int64
	OccurredAt         time.Time
}
