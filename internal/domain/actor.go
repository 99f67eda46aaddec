package domain

// ActorKind differentiates customer vs employee callers.
type ActorKind string

const (
	ActorKindCustomer ActorKind = "customer"
	ActorKindEmployee ActorKind = "employee"
	ActorKindSystem   ActorKind = "system"
)

const (
	// RoleIDAgent is the employee role allowed to triage tickets.
	RoleIDAgent int64 = 1
	// DivisionIDCXC is the front-line customer experience division.
	DivisionIDCXC int64 = 1
)

// Actor is the authenticated caller passed explicitly into every ticket operation.
type Actor struct {
	ID         int64
	Kind       ActorKind
	RoleID     int64
	DivisionID int64
}

// SystemActor is used for activities written by background jobs.
var SystemActor = Actor{Kind: ActorKindSystem}

func (a Actor) IsCustomer() bool {
	return a.Kind == ActorKindCustomer
}

func (a Actor) IsEmployee() bool {
	return a.Kind == ActorKindEmployee
}

// IsCXCAgent reports whether the actor is an agent in the CXC division.
func (a Actor) IsCXCAgent() bool {
	return a.IsEmployee() && a.RoleID == RoleIDAgent && a.DivisionID == DivisionIDCXC
}

// IsSpecialist reports whether the actor is an employee of a division other than CXC.
// CXC employees who are not agents are neither agents nor specialists.
func (a Actor) IsSpecialist() bool {
	return a.IsEmployee() && a.DivisionID != DivisionIDCXC
}

// SenderType maps the actor onto the activity sender dimension.
func (a Actor) SenderType() SenderType {
	switch a.Kind {
	case ActorKindCustomer:
		return SenderTypeCustomer
	case ActorKindEmployee:
		return SenderTypeEmployee
	default:
		return SenderTypeSystem
	}
}

// SenderID returns the actor ID, or nil for the system actor.
func (a Actor) SenderID() *int64 {
	if a.Kind == ActorKindSystem || a.ID == 0 {
		return nil
	}
	id := a.ID
	return &id
}
