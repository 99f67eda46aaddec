package domain

import "time"

// Employee models a CXC agent or a specialist in a unit in charge.
type Employee struct {
	ID           int64
	NPP          string
	FullName     string
	Email        string
	PasswordHash string
	RoleID       int64
	DivisionID   int64
	PushToken    *string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor builds the explicit caller value for this employee.
func (e *Employee) Actor() Actor {
	return Actor{ID: e.ID, Kind: ActorKindEmployee, RoleID: e.RoleID, DivisionID: e.DivisionID}
}
