package domain

import "time"

// Customer is a bank customer who files complaints.
type Customer struct {
	ID           int64
	FullName     string
	Email        string
	PhoneNumber  string
	CIFNumber    string
	PasswordHash string
	PushToken    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
