package domain

import "time"

// ActivityType classifies ticket activity log entries.
type ActivityType string

const (
	ActivityTypeComment      ActivityType = "COMMENT"
	ActivityTypeStatusChange ActivityType = "STATUS_CHANGE"
	ActivityTypeAttachment   ActivityType = "ATTACHMENT"
	ActivityTypeEmailSent    ActivityType = "EMAIL_SENT"
	ActivityTypeNotification ActivityType = "NOTIFICATION"
	ActivityTypeNote         ActivityType = "NOTE"
)

// IsInternal reports whether customers must not see this activity.
func (t ActivityType) IsInternal() bool {
	switch t {
	case ActivityTypeEmailSent, ActivityTypeNotification, ActivityTypeNote:
		return true
	default:
		return false
	}
}

// SenderType indicates who authored an activity.
type SenderType string

const (
	SenderTypeCustomer SenderType = "CUSTOMER"
	SenderTypeEmployee SenderType = "EMPLOYEE"
	SenderTypeSystem   SenderType = "SYSTEM"
)

// TicketActivity is an append-only ticket log entry.
type TicketActivity struct {
	ID           string
	TicketID     string
	ActivityType ActivityType
	SenderType   SenderType
	SenderID     *int64
	Content      string
	ActivityTime time.Time
}
