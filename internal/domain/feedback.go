package domain

import "time"

const (
	FeedbackScoreMin = 1
	FeedbackScoreMax = 5
)

// Feedback is the customer rating of a closed ticket. Score is immutable once created.
type Feedback struct {
	ID         string
	TicketID   string
	CustomerID int64
	Score      int
	Comment    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
