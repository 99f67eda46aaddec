package domain

import "fmt"

// Transition describes the statuses an action moves a ticket into.
type Transition struct {
	Action         TicketAction
	CustomerStatus CustomerStatus
	EmployeeStatus EmployeeStatus
	EventAction    StatusEventAction
}

var transitions = map[TicketAction]Transition{
	ActionHandledCXC: {ActionHandledCXC, CustomerStatusVerifying, EmployeeStatusHandledCXC, StatusEventHandled},
	ActionEscalated:  {ActionEscalated, CustomerStatusProcessing, EmployeeStatusEscalated, StatusEventEscalated},
	ActionClosed:     {ActionClosed, CustomerStatusClosed, EmployeeStatusClosed, StatusEventClosed},
	ActionDeclined:   {ActionDeclined, CustomerStatusDeclined, EmployeeStatusDeclined, StatusEventDeclined},
	ActionDoneByUIC:  {ActionDoneByUIC, CustomerStatusProcessing, EmployeeStatusDoneByUIC, StatusEventDoneByUIC},
}

// TransitionFor returns the transition selected by action.
func TransitionFor(action TicketAction) (Transition, bool) {
	t, ok := transitions[action]
	return t, ok
}

// CreationTransition returns the initial statuses for a new ticket, optionally
// created directly in the escalated or closed state.
func CreationTransition(action TicketAction) (Transition, error) {
	switch action {
	case "":
		return Transition{CustomerStatus: CustomerStatusAccepted, EmployeeStatus: EmployeeStatusOpen, EventAction: StatusEventCreated}, nil
	case ActionEscalated:
		t := transitions[ActionEscalated]
		t.EventAction = StatusEventCreated
		return t, nil
	case ActionClosed:
		t := transitions[ActionClosed]
		t.EventAction = StatusEventCreated
		return t, nil
	default:
		return Transition{}, &CommandError{Message: fmt.Sprintf("action %s is not allowed at creation", action)}
	}
}

// CheckFrom validates that the transition may leave the current employee status.
func (t Transition) CheckFrom(current EmployeeStatus) error {
	if current.IsTerminal() {
		return &CommandError{Message: fmt.Sprintf("ticket is already %s", current)}
	}
	if t.Action == ActionDoneByUIC && current != EmployeeStatusEscalated {
		return &CommandError{Message: fmt.Sprintf("ticket must be %s to be marked %s", EmployeeStatusEscalated, ActionDoneByUIC)}
	}
	return nil
}
