package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
)

func TestRenderStatusContent(t *testing.T) {
	content := RenderStatusContent(domain.TicketStatusEvent{
		Action:           domain.StatusEventDoneByUIC,
		ToCustomerStatus: domain.CustomerStatusProcessing,
		ToEmployeeStatus: domain.EmployeeStatusDoneByUIC,
	})
	assert.Equal(t, "Ticket marked done by UIC: customer status to PROCESSING, employee status to DONE_BY_UIC", content)

	customer, employee, action := ParseLegacyStatusContent(content)
	require.NotNil(t, customer)
	require.NotNil(t, employee)
	assert.Equal(t, domain.CustomerStatusProcessing, *customer)
	assert.Equal(t, domain.EmployeeStatusDoneByUIC, *employee)
	assert.Equal(t, domain.StatusEventDoneByUIC, action)
}

func TestRenderCustomerStatusContent(t *testing.T) {
	closed := domain.CustomerStatusClosed
	assert.Equal(t, "Ticket closed: customer status to CLOSED", RenderCustomerStatusContent(domain.StatusEventClosed, &closed))
	assert.Equal(t, "Ticket declined", RenderCustomerStatusContent(domain.StatusEventDeclined, nil))
	assert.Equal(t, "Status updated: customer status to CLOSED", RenderCustomerStatusContent("SOMETHING_NEW", &closed))
}

func TestParseLegacyStatusContent(t *testing.T) {
	cases := []struct {
		content  string
		customer string
		employee string
		action   domain.StatusEventAction
	}{
		{"Initial status set: customer status to ACCEPTED, employee status to OPEN", "ACCEPTED", "OPEN", domain.StatusEventCreated},
		{"Ticket escalated by agent: customer status to PROCESSING, employee status to ESCALATED", "PROCESSING", "ESCALATED", domain.StatusEventEscalated},
		{"Ticket closed: customer status to CLOSED, employee status to CLOSED", "CLOSED", "CLOSED", domain.StatusEventClosed},
		{"Ticket handled: customer status to VERIFYING, employee status to HANDLEDCXC", "VERIFYING", "HANDLEDCXC", domain.StatusEventHandled},
		{"Status changed: employee status to DECLINED", "", "DECLINED", domain.StatusEventUpdated},
	}
	for _, tc := range cases {
		customer, employee, action := ParseLegacyStatusContent(tc.content)
		if tc.customer == "" {
			assert.Nil(t, customer, tc.content)
		} else {
			require.NotNil(t, customer, tc.content)
			assert.Equal(t, domain.CustomerStatus(tc.customer), *customer)
		}
		require.NotNil(t, employee, tc.content)
		assert.Equal(t, domain.EmployeeStatus(tc.employee), *employee)
		assert.Equal(t, tc.action, action, tc.content)
	}
}

func TestBuildStatusHistory_MergesEventsAndLegacyText(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	agent := int64(1)
	open, accepted := domain.EmployeeStatusOpen, domain.CustomerStatusAccepted

	activities := []domain.TicketActivity{
		{ID: "a1", ActivityType: domain.ActivityTypeStatusChange, SenderType: domain.SenderTypeCustomer, ActivityTime: base,
			Content: "Initial status set: customer status to ACCEPTED, employee status to OPEN"},
		{ID: "c1", ActivityType: domain.ActivityTypeComment, ActivityTime: base.Add(time.Minute), Content: "hello"},
		{ID: "a2", ActivityType: domain.ActivityTypeStatusChange, SenderType: domain.SenderTypeEmployee, SenderID: &agent, ActivityTime: base.Add(time.Hour),
			Content: "Ticket escalated: customer status to PROCESSING, employee status to ESCALATED"},
		{ID: "a3", ActivityType: domain.ActivityTypeStatusChange, SenderType: domain.SenderTypeEmployee, SenderID: &agent, ActivityTime: base.Add(2 * time.Hour),
			Content: "Ticket closed: customer status to CLOSED, employee status to CLOSED"},
	}
	statusEvents := []domain.TicketStatusEvent{
		{ActivityID: "a1", ToCustomerStatus: accepted, ToEmployeeStatus: open, Action: domain.StatusEventCreated,
			ActorType: domain.SenderTypeCustomer, OccurredAt: base},
	}

	history := BuildStatusHistory(activities, statusEvents)
	require.Len(t, history, 3)

	assert.False(t, history[0].Legacy)
	assert.Nil(t, history[0].FromEmployeeStatus)
	assert.Equal(t, open, *history[0].ToEmployeeStatus)

	assert.True(t, history[1].Legacy)
	assert.Equal(t, domain.StatusEventEscalated, history[1].Action)
	require.NotNil(t, history[1].FromEmployeeStatus)
	assert.Equal(t, open, *history[1].FromEmployeeStatus)
	assert.Equal(t, accepted, *history[1].FromCustomerStatus)
	assert.Equal(t, domain.EmployeeStatusEscalated, *history[1].ToEmployeeStatus)
	assert.Equal(t, &agent, history[1].ActorID)

	assert.Equal(t, domain.EmployeeStatusEscalated, *history[2].FromEmployeeStatus)
	assert.Equal(t, domain.EmployeeStatusClosed, *history[2].ToEmployeeStatus)
	assert.Equal(t, domain.StatusEventClosed, history[2].Action)
}

func TestBuildEmailHistory(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	entries := BuildEmailHistory([]domain.TicketActivity{
		{ID: "e1", ActivityType: domain.ActivityTypeEmailSent, SenderType: domain.SenderTypeSystem, ActivityTime: now,
			Content: "Escalation email sent to 4 recipient(s) in division CARD, 1 failed"},
		{ID: "n1", ActivityType: domain.ActivityTypeNotification, ActivityTime: now, Content: "push"},
		{ID: "e2", ActivityType: domain.ActivityTypeEmailSent, ActivityTime: now, Content: "Customer informed by phone"},
	})

	require.Len(t, entries, 2)
	require.NotNil(t, entries[0].RecipientCount)
	assert.Equal(t, 4, *entries[0].RecipientCount)
	assert.Nil(t, entries[1].RecipientCount)
}
