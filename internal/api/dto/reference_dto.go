package dto

import "time"

// ReferenceItem is a code/name lookup row.
type ReferenceItem struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// DivisionResponse payload.
type DivisionResponse struct {
	ID       int64  `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// TerminalResponse payload.
type TerminalResponse struct {
	ID       int64  `json:"id"`
	Code     string `json:"code"`
	Location string `json:"location"`
}

// PolicyResponse payload.
type PolicyResponse struct {
	ID          int64     `json:"id"`
	ComplaintID int64     `json:"complaint_id"`
	ChannelID   *int64    `json:"channel_id,omitempty"`
	SLADays     int       `json:"sla_days"`
	UICID       *int64    `json:"uic_id,omitempty"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
