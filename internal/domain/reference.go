package domain

import "time"

// Division is an organizational unit; CXC or a unit in charge (UIC).
type Division struct {
	ID       int64
	Code     string
	Name     string
	IsActive bool
}

// Channel is the intake channel a complaint arrived through.
type Channel struct {
	ID   int64
	Code string
	Name string
}

// Complaint is a complaint category.
type Complaint struct {
	ID   int64
	Code string
	Name string
}

// Priority ranks ticket urgency.
type Priority struct {
	ID   int64
	Code string
	Name string
}

// Source is the intake source of a ticket.
type Source struct {
	ID   int64
	Code string
	Name string
}

// Terminal is a physical device (ATM, CRM) a complaint can reference.
type Terminal struct {
	ID       int64
	Code     string
	Location string
}

// ComplaintPolicy maps a complaint category and channel to an SLA and a target division.
type ComplaintPolicy struct {
	ID          int64
	ComplaintID int64
	ChannelID   *int64
	SLADays     int
	UICID       *int64
	Description string
	CreatedAt   time.Time
}

// SLADuration converts the policy SLA days into a duration.
func (p *ComplaintPolicy) SLADuration() time.Duration {
	return time.Duration(p.SLADays) * 24 * time.Hour
}
