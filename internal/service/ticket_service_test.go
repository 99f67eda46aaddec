package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

type scriptedSequence struct {
	values []int
	calls  int
}

func (s *scriptedSequence) Next(context.Context, time.Time, time.Time) (int, error) {
	v := s.values[min(s.calls, len(s.values)-1)]
	s.calls++
	return v, nil
}

func TestCreate_CustomerTicketStartsAcceptedOpen(t *testing.T) {
	f := newFixture(t)

	details := f.createCardTicket()
	ticket := details.Ticket

	assert.Equal(t, "TCK-202503100001", ticket.TicketNumber)
	assert.Equal(t, domain.CustomerStatusAccepted, ticket.CustomerStatus)
	assert.Equal(t, domain.EmployeeStatusOpen, ticket.EmployeeStatus)
	assert.Equal(t, domain.IntakeSourceCustomer, ticket.IntakeSource)
	assert.Equal(t, seedCustomerID, ticket.CustomerID)
	assert.Equal(t, int64(1), ticket.PriorityID)
	assert.Nil(t, ticket.ResponsibleEmployeeID)
	assert.Nil(t, ticket.ClosedTime)
	require.NotNil(t, ticket.PolicyID)
	assert.Equal(t, int64(1), *ticket.PolicyID)
	assert.Equal(t, f.clock.Now().Add(72*time.Hour), ticket.CommittedDueAt)

	assert.Equal(t, 3, details.SLA.SLADays)
	require.NotNil(t, details.SLA.UICID)
	assert.Equal(t, int64(2), *details.SLA.UICID)
	assert.False(t, details.SLA.IsOverdue)
	assert.Equal(t, 72.0, details.SLA.HoursRemaining)

	changes := f.activities(ticket.ID, domain.ActivityTypeStatusChange)
	require.Len(t, changes, 1)
	assert.Equal(t, "Initial status set: customer status to ACCEPTED, employee status to OPEN", changes[0].Content)
	assert.Equal(t, domain.SenderTypeCustomer, changes[0].SenderType)

	assert.Equal(t, []events.EventType{events.EventTicketCreated}, f.published.Types())
	assert.Empty(t, f.mailer.Sent())
}

func TestCreate_NumbersAreSequentialPerDay(t *testing.T) {
	f := newFixture(t)

	first := f.createCardTicket()
	second := f.createCardTicket()
	f.clock.Advance(24 * time.Hour)
	nextDay := f.createCardTicket()

	assert.Equal(t, "TCK-202503100001", first.Ticket.TicketNumber)
	assert.Equal(t, "TCK-202503100002", second.Ticket.TicketNumber)
	assert.Equal(t, "TCK-202503110001", nextDay.Ticket.TicketNumber)
}

func TestCreate_RetriesOnNumberCollision(t *testing.T) {
	f := newFixture(t)
	f.createCardTicket()

	svc := f.ticketService(&scriptedSequence{values: []int{1, 2}})
	details, err := svc.Create(context.Background(), customerActor, CreateTicketInput{
		ComplaintID:    complaintCardRetained,
		IssueChannelID: channelATM,
		Description:    "second card retained",
	})
	require.NoError(t, err)
	assert.Equal(t, "TCK-202503100002", details.Ticket.TicketNumber)
}

func TestCreate_ConflictWhenNumbersExhausted(t *testing.T) {
	f := newFixture(t)
	f.createCardTicket()

	svc := f.ticketService(&scriptedSequence{values: []int{1}})
	_, err := svc.Create(context.Background(), customerActor, CreateTicketInput{
		ComplaintID:    complaintCardRetained,
		IssueChannelID: channelATM,
		Description:    "duplicate number",
	})
	requireStatus(t, err, http.StatusConflict)
}

func TestCreate_Authorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := CreateTicketInput{ComplaintID: complaintCardRetained, IssueChannelID: channelATM, Description: "card retained"}

	withAction := base
	withAction.Action = "ESCALATED"
	_, err := f.tickets.Create(ctx, customerActor, withAction)
	requireStatus(t, err, http.StatusForbidden)

	forOther := base
	forOther.CustomerID = idRef(99)
	_, err = f.tickets.Create(ctx, customerActor, forOther)
	requireStatus(t, err, http.StatusForbidden)

	_, err = f.tickets.Create(ctx, cardActor, base)
	requireStatus(t, err, http.StatusForbidden)

	_, err = f.tickets.Create(ctx, agentActor, base)
	requireStatus(t, err, http.StatusBadRequest)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tickets.Create(ctx, customerActor, CreateTicketInput{ComplaintID: complaintCardRetained, IssueChannelID: channelATM, Description: "   "})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = f.tickets.Create(ctx, customerActor, CreateTicketInput{ComplaintID: 99, IssueChannelID: channelATM, Description: "x"})
	requireStatus(t, err, http.StatusBadRequest)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "unknown complaint_id", domainErr.Message)

	_, err = f.tickets.Create(ctx, customerActor, CreateTicketInput{ComplaintID: complaintCardRetained, IssueChannelID: channelATM, PriorityID: idRef(42), Description: "x"})
	requireStatus(t, err, http.StatusBadRequest)

	negative := -10.0
	_, err = f.tickets.Create(ctx, customerActor, CreateTicketInput{ComplaintID: complaintCardRetained, IssueChannelID: channelATM, Description: "x", Amount: &negative})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = f.tickets.Create(ctx, customerActor, CreateTicketInput{Action: "REOPEN", ComplaintID: complaintCardRetained, IssueChannelID: channelATM, Description: "x"})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestCreate_AgentEscalatesOnIntake(t *testing.T) {
	f := newFixture(t)

	details, err := f.tickets.Create(context.Background(), agentActor, CreateTicketInput{
		Action:         "ESCALATED",
		CustomerID:     idRef(seedCustomerID),
		ComplaintID:    complaintCardRetained,
		IssueChannelID: channelATM,
		Description:    "walk-in customer, card retained",
		DivisionNote:   strRef("customer waiting at branch"),
	})
	require.NoError(t, err)

	ticket := details.Ticket
	assert.Equal(t, domain.CustomerStatusProcessing, ticket.CustomerStatus)
	assert.Equal(t, domain.EmployeeStatusEscalated, ticket.EmployeeStatus)
	assert.Equal(t, domain.IntakeSourceEmployee, ticket.IntakeSource)
	require.NotNil(t, ticket.ResponsibleEmployeeID)
	assert.Equal(t, seedAgentID, *ticket.ResponsibleEmployeeID)
	require.Len(t, ticket.DivisionNotes, 1)
	assert.Equal(t, "customer waiting at branch", ticket.DivisionNotes[0].Note)

	assert.Equal(t, []events.EventType{events.EventTicketCreated, events.EventTicketEscalated}, f.published.Types())

	sent := f.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "card@example.com", sent[0].To)
	require.Len(t, f.activities(ticket.ID, domain.ActivityTypeEmailSent), 1)
}

func TestCreate_AgentClosesOnIntake(t *testing.T) {
	f := newFixture(t)

	details, err := f.tickets.Create(context.Background(), agentActor, CreateTicketInput{
		Action:         "CLOSED",
		CustomerID:     idRef(seedCustomerID),
		ComplaintID:    complaintCardRetained,
		IssueChannelID: channelATM,
		Description:    "card returned on the spot",
		Solution:       strRef("card handed back"),
	})
	require.NoError(t, err)

	ticket := details.Ticket
	assert.Equal(t, domain.EmployeeStatusClosed, ticket.EmployeeStatus)
	require.NotNil(t, ticket.ClosedTime)
	assert.Equal(t, f.clock.Now(), *ticket.ClosedTime)
	require.NotNil(t, ticket.Solution)
	assert.Equal(t, "card handed back", *ticket.Solution)
	assert.Zero(t, details.SLA.HoursRemaining)
}

func TestUpdate_EscalationNotifiesDivision(t *testing.T) {
	f := newFixture(t)
	created := f.createCardTicket()
	f.clock.Advance(time.Hour)

	details, err := f.update(agentActor, created.Ticket.ID, "ESCALATED", domain.TicketPatch{DivisionNote: strRef("customer called twice")})
	require.NoError(t, err)

	ticket := details.Ticket
	assert.Equal(t, domain.CustomerStatusProcessing, ticket.CustomerStatus)
	assert.Equal(t, domain.EmployeeStatusEscalated, ticket.EmployeeStatus)
	require.NotNil(t, ticket.ResponsibleEmployeeID)
	assert.Equal(t, seedAgentID, *ticket.ResponsibleEmployeeID)
	assert.Equal(t, created.Ticket.CommittedDueAt, ticket.CommittedDueAt)
	require.Len(t, ticket.DivisionNotes, 1)
	assert.Equal(t, domain.DivisionIDCXC, ticket.DivisionNotes[0].DivisionID)

	assert.Len(t, f.activities(ticket.ID, domain.ActivityTypeStatusChange), 2)

	emails := f.activities(ticket.ID, domain.ActivityTypeEmailSent)
	require.Len(t, emails, 1)
	assert.Equal(t, "Escalation email sent to 1 recipient(s) in division CARD", emails[0].Content)
	assert.Equal(t, domain.SenderTypeEmployee, emails[0].SenderType)
	require.NotNil(t, emails[0].SenderID)
	assert.Equal(t, seedAgentID, *emails[0].SenderID)

	sent := f.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "card@example.com", sent[0].To)
	assert.Contains(t, sent[0].Subject, ticket.TicketNumber)

	history, err := f.tickets.StatusHistory(context.Background(), agentActor, ticket.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.StatusEventEscalated, history[1].Action)
	require.NotNil(t, history[1].FromEmployeeStatus)
	assert.Equal(t, domain.EmployeeStatusOpen, *history[1].FromEmployeeStatus)
	assert.Equal(t, domain.EmployeeStatusEscalated, *history[1].ToEmployeeStatus)
	assert.False(t, history[1].Legacy)

	emailHistory, err := f.tickets.EmailHistory(context.Background(), agentActor, ticket.ID)
	require.NoError(t, err)
	require.Len(t, emailHistory, 1)
	require.NotNil(t, emailHistory[0].RecipientCount)
	assert.Equal(t, 1, *emailHistory[0].RecipientCount)

	assert.Equal(t, []events.EventType{
		events.EventTicketCreated,
		events.EventTicketStatusChanged,
		events.EventTicketEscalated,
	}, f.published.Types())
}

func TestUpdate_EscalationReclassifiesAndReroutes(t *testing.T) {
	f := newFixture(t)
	created := f.createCardTicket()

	details, err := f.update(agentActor, created.Ticket.ID, "ESCALATED", domain.TicketPatch{
		ComplaintID:    idRef(complaintFailedTransfer),
		IssueChannelID: idRef(channelMobile),
	})
	require.NoError(t, err)

	ticket := details.Ticket
	assert.Equal(t, complaintFailedTransfer, ticket.ComplaintID)
	assert.Equal(t, channelMobile, ticket.IssueChannelID)
	require.NotNil(t, ticket.PolicyID)
	assert.Equal(t, int64(3), *ticket.PolicyID, "the policy naming a specific counterparty wins the tie")
	assert.Equal(t, ticket.CreatedAt.Add(48*time.Hour), ticket.CommittedDueAt)

	sent := f.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "transfer@example.com", sent[0].To)
}

func TestUpdate_DoneByUICRequiresRoutedSpecialist(t *testing.T) {
	f := newFixture(t)
	created := f.createCardTicket()
	id := created.Ticket.ID

	_, err := f.update(cardActor, id, "DONE_BY_UIC", domain.TicketPatch{})
	requireStatus(t, err, http.StatusForbidden)

	_, err = f.update(agentActor, id, "ESCALATED", domain.TicketPatch{})
	require.NoError(t, err)

	_, err = f.update(transferActor, id, "DONE_BY_UIC", domain.TicketPatch{})
	requireStatus(t, err, http.StatusForbidden)

	_, err = f.update(agentActor, id, "DONE_BY_UIC", domain.TicketPatch{})
	requireStatus(t, err, http.StatusForbidden)

	_, err = f.update(cardActor, id, "CLOSED", domain.TicketPatch{})
	requireStatus(t, err, http.StatusForbidden)

	f.clock.Advance(2 * time.Hour)
	details, err := f.update(cardActor, id, "DONE_BY_UIC", domain.TicketPatch{Solution: strRef("card returned to branch")})
	require.NoError(t, err)
	assert.Equal(t, domain.CustomerStatusProcessing, details.Ticket.CustomerStatus)
	assert.Equal(t, domain.EmployeeStatusDoneByUIC, details.Ticket.EmployeeStatus)
	require.NotNil(t, details.Ticket.Solution)
	assert.Equal(t, "card returned to branch", *details.Ticket.Solution)

	sent := f.mailer.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "agent@example.com", sent[1].To)

	emails := f.activities(id, domain.ActivityTypeEmailSent)
	require.Len(t, emails, 2)
	assert.Equal(t, "Done by UIC email sent to 1 recipient(s): agent@example.com", emails[1].Content)
	require.NotNil(t, emails[1].SenderID)
	assert.Equal(t, seedCardSpecialistID, *emails[1].SenderID)

	closed, err := f.update(agentActor, id, "CLOSED", domain.TicketPatch{})
	require.NoError(t, err)
	assert.Equal(t, domain.EmployeeStatusClosed, closed.Ticket.EmployeeStatus)
}

func TestUpdate_ClosedTicketIsFinal(t *testing.T) {
	f := newFixture(t)
	created := f.createCardTicket()
	id := created.Ticket.ID
	f.clock.Advance(30 * time.Minute)

	details, err := f.update(agentActor, id, "CLOSED", domain.TicketPatch{Solution: strRef("card returned")})
	require.NoError(t, err)
	ticket := details.Ticket
	assert.Equal(t, domain.CustomerStatusClosed, ticket.CustomerStatus)
	assert.Equal(t, domain.EmployeeStatusClosed, ticket.EmployeeStatus)
	require.NotNil(t, ticket.ClosedTime)
	assert.Equal(t, f.clock.Now(), *ticket.ClosedTime)
	require.NotNil(t, ticket.ResponsibleEmployeeID)
	assert.Equal(t, seedAgentID, *ticket.ResponsibleEmployeeID)

	_, err = f.update(agentActor, id, "ESCALATED", domain.TicketPatch{})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = f.update(agentActor, id, "", domain.TicketPatch{DivisionNote: strRef("late note")})
	requireStatus(t, err, http.StatusBadRequest)

	err = f.tickets.Delete(context.Background(), agentActor, id)
	requireStatus(t, err, http.StatusBadRequest)
}

func TestUpdate_DeclineAndHandle(t *testing.T) {
	f := newFixture(t)

	handled, err := f.update(agentActor, f.createCardTicket().Ticket.ID, "HANDLEDCXC", domain.TicketPatch{
		Record:     strRef("called customer, card blocked"),
		PriorityID: idRef(2),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.CustomerStatusVerifying, handled.Ticket.CustomerStatus)
	assert.Equal(t, domain.EmployeeStatusHandledCXC, handled.Ticket.EmployeeStatus)
	assert.Equal(t, int64(2), handled.Ticket.PriorityID)
	require.NotNil(t, handled.Ticket.Record)

	declined, err := f.update(agentActor, f.createCardTicket().Ticket.ID, "DECLINED", domain.TicketPatch{Reason: strRef("duplicate of earlier ticket")})
	require.NoError(t, err)
	assert.Equal(t, domain.CustomerStatusDeclined, declined.Ticket.CustomerStatus)
	assert.Equal(t, domain.EmployeeStatusDeclined, declined.Ticket.EmployeeStatus)
	assert.NotNil(t, declined.Ticket.ClosedTime)
	require.NotNil(t, declined.Ticket.Reason)
	assert.Equal(t, "duplicate of earlier ticket", *declined.Ticket.Reason)
}

func TestUpdate_RejectsFieldsOutsideAction(t *testing.T) {
	f := newFixture(t)
	created := f.createCardTicket()

	_, err := f.update(agentActor, created.Ticket.ID, "CLOSED", domain.TicketPatch{Reason: strRef("not allowed")})
	requireStatus(t, err, http.StatusBadRequest)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, []string{"reason"}, domainErr.Details["fields"])

	_, err = f.update(agentActor, created.Ticket.ID, "", domain.TicketPatch{})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestUpdate_CustomerIsForbidden(t *testing.T) {
	f := newFixture(t)
	created := f.createCardTicket()

	_, err := f.update(customerActor, created.Ticket.ID, "CLOSED", domain.TicketPatch{})
	requireStatus(t, err, http.StatusForbidden)

	_, err = f.update(customerActor, created.Ticket.ID, "", domain.TicketPatch{DivisionNote: strRef("hello")})
	requireStatus(t, err, http.StatusForbidden)

	_, err = f.update(agentActor, "missing", "CLOSED", domain.TicketPatch{})
	requireStatus(t, err, http.StatusNotFound)
}

func TestUpdate_NoteOnlyKeepsStatus(t *testing.T) {
	f := newFixture(t)
	created := f.createCardTicket()
	id := created.Ticket.ID

	details, err := f.update(agentActor, id, "", domain.TicketPatch{DivisionNote: strRef("waiting for branch")})
	require.NoError(t, err)
	assert.Equal(t, domain.EmployeeStatusOpen, details.Ticket.EmployeeStatus)
	require.Len(t, details.Ticket.DivisionNotes, 1)
	assert.Len(t, f.activities(id, domain.ActivityTypeNote), 1)
	assert.Len(t, f.activities(id, domain.ActivityTypeStatusChange), 1)

	_, err = f.update(cardActor, id, "", domain.TicketPatch{DivisionNote: strRef("not escalated yet")})
	requireStatus(t, err, http.StatusForbidden)

	_, err = f.update(agentActor, id, "ESCALATED", domain.TicketPatch{})
	require.NoError(t, err)

	details, err = f.update(cardActor, id, "", domain.TicketPatch{DivisionNote: strRef("checking switch logs")})
	require.NoError(t, err)
	require.Len(t, details.Ticket.DivisionNotes, 2)
	assert.Equal(t, int64(2), details.Ticket.DivisionNotes[1].DivisionID)
	assert.Equal(t, domain.EmployeeStatusEscalated, details.Ticket.EmployeeStatus)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.createCardTicket()
	id := created.Ticket.ID

	requireStatus(t, f.tickets.Delete(ctx, customerActor, id), http.StatusForbidden)
	requireStatus(t, f.tickets.Delete(ctx, cardActor, id), http.StatusForbidden)

	require.NoError(t, f.tickets.Delete(ctx, agentActor, id))
	assert.Contains(t, f.published.Types(), events.EventTicketDeleted)

	_, err := f.tickets.Get(ctx, agentActor, id)
	requireStatus(t, err, http.StatusNotFound)

	requireStatus(t, f.tickets.Delete(ctx, agentActor, id), http.StatusConflict)
	requireStatus(t, f.tickets.Delete(ctx, agentActor, "missing"), http.StatusNotFound)

	list, err := f.tickets.List(ctx, agentActor, ListTicketsInput{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := f.store.AddCustomer(domain.Customer{FullName: "Other", Email: "other@example.com"})
	otherActor := domain.Actor{ID: other.ID, Kind: domain.ActorKindCustomer}

	created := f.createCardTicket()
	id := created.Ticket.ID

	_, err := f.tickets.Get(ctx, otherActor, id)
	requireStatus(t, err, http.StatusForbidden)

	_, err = f.tickets.Get(ctx, cardActor, id)
	require.NoError(t, err)

	_, err = f.tickets.Get(ctx, transferActor, id)
	requireStatus(t, err, http.StatusForbidden)

	_, err = f.update(agentActor, id, "ESCALATED", domain.TicketPatch{DivisionNote: strRef("internal")})
	require.NoError(t, err)

	all, err := f.tickets.ListActivities(ctx, agentActor, id)
	require.NoError(t, err)
	visible, err := f.tickets.ListActivities(ctx, customerActor, id)
	require.NoError(t, err)

	assert.Len(t, all, 3)
	assert.Len(t, visible, 2)
	for _, a := range visible {
		assert.False(t, a.ActivityType.IsInternal(), a.ActivityType)
	}

	_, err = f.tickets.EmailHistory(ctx, customerActor, id)
	requireStatus(t, err, http.StatusForbidden)

	history, err := f.tickets.StatusHistory(ctx, customerActor, id)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestListActivities_CustomerStatusChangesOmitEmployeeStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.createCardTicket()
	id := created.Ticket.ID

	f.clock.Advance(time.Hour)
	_, err := f.update(agentActor, id, "ESCALATED", domain.TicketPatch{})
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	require.NoError(t, f.store.Activities().Create(ctx, &domain.TicketActivity{
		ID:           "imported-status-change",
		TicketID:     id,
		ActivityType: domain.ActivityTypeStatusChange,
		SenderType:   domain.SenderTypeSystem,
		Content:      "Ticket handled: customer status to VERIFYING, employee status to HANDLEDCXC",
		ActivityTime: f.clock.Now(),
	}))

	visible, err := f.tickets.ListActivities(ctx, customerActor, id)
	require.NoError(t, err)
	var contents []string
	for _, a := range visible {
		if a.ActivityType == domain.ActivityTypeStatusChange {
			contents = append(contents, a.Content)
		}
		assert.NotContains(t, a.Content, "employee status")
	}
	assert.Equal(t, []string{
		"Initial status set: customer status to ACCEPTED",
		"Ticket escalated: customer status to PROCESSING",
		"Ticket handled by CXC: customer status to VERIFYING",
	}, contents)

	all, err := f.tickets.ListActivities(ctx, agentActor, id)
	require.NoError(t, err)
	var employeeView []string
	for _, a := range all {
		if a.ActivityType == domain.ActivityTypeStatusChange {
			employeeView = append(employeeView, a.Content)
		}
	}
	require.Len(t, employeeView, 3)
	assert.Contains(t, employeeView[1], "employee status to ESCALATED")

	stored := f.activities(id, domain.ActivityTypeStatusChange)
	assert.Contains(t, stored[0].Content, "employee status to OPEN")
}

func TestCXCNonAgentIsForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	supervisor := domain.Actor{ID: 99, Kind: domain.ActorKindEmployee, RoleID: 2, DivisionID: domain.DivisionIDCXC}
	created := f.createCardTicket()
	id := created.Ticket.ID

	assertCXCOnly := func(err error) {
		t.Helper()
		requireStatus(t, err, http.StatusForbidden)
		var domainErr *apperrors.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "only CXC agents can work on CXC tickets", domainErr.Message)
	}

	_, err := f.tickets.Get(ctx, supervisor, id)
	assertCXCOnly(err)

	_, err = f.update(supervisor, id, "HANDLEDCXC", domain.TicketPatch{})
	assertCXCOnly(err)

	_, err = f.tickets.List(ctx, supervisor, ListTicketsInput{})
	assertCXCOnly(err)
}

func TestList_ScopesByActor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := f.store.AddCustomer(domain.Customer{FullName: "Other", Email: "other@example.com"})

	f.createCardTicket()
	f.clock.Advance(time.Minute)
	f.createCardTicket()
	f.clock.Advance(time.Minute)
	transfer, err := f.tickets.Create(ctx, agentActor, CreateTicketInput{
		CustomerID:     idRef(other.ID),
		ComplaintID:    complaintFailedTransfer,
		IssueChannelID: channelMobile,
		Description:    "transfer to another bank never arrived",
	})
	require.NoError(t, err)

	count := func(actor domain.Actor, input ListTicketsInput) int {
		t.Helper()
		list, err := f.tickets.List(ctx, actor, input)
		require.NoError(t, err)
		return len(list)
	}

	assert.Equal(t, 2, count(customerActor, ListTicketsInput{}))
	assert.Equal(t, 3, count(agentActor, ListTicketsInput{}))
	assert.Equal(t, 2, count(cardActor, ListTicketsInput{}))
	assert.Equal(t, 1, count(transferActor, ListTicketsInput{}))

	assert.Equal(t, 1, count(agentActor, ListTicketsInput{SearchTerm: strRef(transfer.Ticket.TicketNumber)}))
	assert.Equal(t, 1, count(agentActor, ListTicketsInput{SearchTerm: strRef("another bank")}))
	assert.Equal(t, 1, count(agentActor, ListTicketsInput{ComplaintID: idRef(complaintFailedTransfer)}))
	assert.Equal(t, 2, count(agentActor, ListTicketsInput{Limit: 2}))
	assert.Equal(t, 1, count(agentActor, ListTicketsInput{Limit: 2, Offset: 2}))

	assert.Equal(t, 2, count(customerActor, ListTicketsInput{EmployeeStatuses: []domain.EmployeeStatus{domain.EmployeeStatusClosed}}))
	assert.Equal(t, 0, count(agentActor, ListTicketsInput{EmployeeStatuses: []domain.EmployeeStatus{domain.EmployeeStatusClosed}}))

	list, err := f.tickets.List(ctx, agentActor, ListTicketsInput{})
	require.NoError(t, err)
	assert.Equal(t, transfer.Ticket.ID, list[0].Ticket.ID, "newest first")
}

func TestAddActivity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.createCardTicket()
	id := created.Ticket.ID

	comment, err := f.tickets.AddActivity(ctx, customerActor, id, AddActivityInput{Type: domain.ActivityTypeComment, Content: " any update? "})
	require.NoError(t, err)
	assert.Equal(t, "any update?", comment.Content)
	assert.Equal(t, domain.SenderTypeCustomer, comment.SenderType)

	attachment, err := f.tickets.AddActivity(ctx, agentActor, id, AddActivityInput{
		Type:      domain.ActivityTypeAttachment,
		Content:   "see attached",
		FileNames: []string{"receipt.pdf", "statement.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Attached 2 file(s): receipt.pdf, statement.png - see attached", attachment.Content)

	_, err = f.tickets.AddActivity(ctx, customerActor, id, AddActivityInput{Type: domain.ActivityTypeComment, Content: "  "})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = f.tickets.AddActivity(ctx, customerActor, id, AddActivityInput{Type: domain.ActivityTypeAttachment})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = f.tickets.AddActivity(ctx, agentActor, id, AddActivityInput{Type: domain.ActivityTypeEmailSent, Content: "forged"})
	requireStatus(t, err, http.StatusBadRequest)

	got, err := f.tickets.Get(ctx, agentActor, id)
	require.NoError(t, err)
	assert.Equal(t, domain.EmployeeStatusOpen, got.Ticket.EmployeeStatus)
}

func TestGet_ReportsOverdue(t *testing.T) {
	f := newFixture(t)
	created := f.createCardTicket()

	f.clock.Advance(73 * time.Hour)
	details, err := f.tickets.Get(context.Background(), agentActor, created.Ticket.ID)
	require.NoError(t, err)
	assert.True(t, details.SLA.IsOverdue)
	assert.Equal(t, -1.0, details.SLA.HoursRemaining)
}
