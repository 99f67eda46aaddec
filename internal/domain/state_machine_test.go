package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionFor_StatusPairs(t *testing.T) {
	cases := map[TicketAction][2]string{
		ActionHandledCXC: {"VERIFYING", "HANDLEDCXC"},
		ActionEscalated:  {"PROCESSING", "ESCALATED"},
		ActionClosed:     {"CLOSED", "CLOSED"},
		ActionDeclined:   {"DECLINED", "DECLINED"},
		ActionDoneByUIC:  {"PROCESSING", "DONE_BY_UIC"},
	}
	for action, want := range cases {
		tr, ok := TransitionFor(action)
		require.True(t, ok, action)
		assert.Equal(t, CustomerStatus(want[0]), tr.CustomerStatus, action)
		assert.Equal(t, EmployeeStatus(want[1]), tr.EmployeeStatus, action)
	}

	_, ok := TransitionFor("")
	assert.False(t, ok)
}

func TestCreationTransition(t *testing.T) {
	tr, err := CreationTransition("")
	require.NoError(t, err)
	assert.Equal(t, CustomerStatusAccepted, tr.CustomerStatus)
	assert.Equal(t, EmployeeStatusOpen, tr.EmployeeStatus)
	assert.Equal(t, StatusEventCreated, tr.EventAction)

	tr, err = CreationTransition(ActionEscalated)
	require.NoError(t, err)
	assert.Equal(t, EmployeeStatusEscalated, tr.EmployeeStatus)
	assert.Equal(t, StatusEventCreated, tr.EventAction)

	tr, err = CreationTransition(ActionClosed)
	require.NoError(t, err)
	assert.Equal(t, EmployeeStatusClosed, tr.EmployeeStatus)

	_, err = CreationTransition(ActionDoneByUIC)
	assert.Error(t, err)
}

func TestTransitionCheckFrom(t *testing.T) {
	escalate, _ := TransitionFor(ActionEscalated)
	done, _ := TransitionFor(ActionDoneByUIC)

	assert.NoError(t, escalate.CheckFrom(EmployeeStatusOpen))
	assert.NoError(t, escalate.CheckFrom(EmployeeStatusDoneByUIC))
	assert.Error(t, escalate.CheckFrom(EmployeeStatusClosed))
	assert.Error(t, escalate.CheckFrom(EmployeeStatusDeclined))

	assert.NoError(t, done.CheckFrom(EmployeeStatusEscalated))
	assert.Error(t, done.CheckFrom(EmployeeStatusHandledCXC))
}

func TestEmployeeStatusIsTerminal(t *testing.T) {
	assert.True(t, EmployeeStatusClosed.IsTerminal())
	assert.True(t, EmployeeStatusDeclined.IsTerminal())
	assert.True(t, EmployeeStatusResolved.IsTerminal())
	assert.False(t, EmployeeStatusEscalated.IsTerminal())
	assert.False(t, EmployeeStatusDoneByUIC.IsTerminal())
}

func TestTicketIsOverdue(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	ticket := &Ticket{CommittedDueAt: now.Add(-time.Minute)}
	assert.True(t, ticket.IsOverdue(now))

	closed := now.Add(-time.Hour)
	ticket.ClosedTime = &closed
	assert.False(t, ticket.IsOverdue(now))

	assert.False(t, (&Ticket{CommittedDueAt: now.Add(time.Hour)}).IsOverdue(now))
}

func TestActorRoles(t *testing.T) {
	agent := Actor{ID: 1, Kind: ActorKindEmployee, RoleID: RoleIDAgent, DivisionID: DivisionIDCXC}
	specialist := Actor{ID: 2, Kind: ActorKindEmployee, RoleID: 2, DivisionID: 3}
	nonAgentInCXC := Actor{ID: 3, Kind: ActorKindEmployee, RoleID: 2, DivisionID: DivisionIDCXC}
	customer := Actor{ID: 4, Kind: ActorKindCustomer}

	assert.True(t, agent.IsCXCAgent())
	assert.False(t, specialist.IsCXCAgent())
	assert.True(t, specialist.IsSpecialist())
	assert.False(t, nonAgentInCXC.IsSpecialist())
	assert.False(t, nonAgentInCXC.IsCXCAgent())
	assert.False(t, agent.IsSpecialist())
	assert.False(t, customer.IsEmployee())
	assert.Equal(t, SenderTypeCustomer, customer.SenderType())
	assert.Nil(t, SystemActor.SenderID())
	assert.Equal(t, SenderTypeSystem, SystemActor.SenderType())
}
