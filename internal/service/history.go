package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// StatusHistoryEntry is one reconstructed status change.
type StatusHistoryEntry struct {
	ActivityID         string
	Action             domain.StatusEventAction
	FromCustomerStatus *domain.CustomerStatus
	ToCustomerStatus   *domain.CustomerStatus
	FromEmployeeStatus *domain.EmployeeStatus
	ToEmployeeStatus   *domain.EmployeeStatus
	ActorType          domain.SenderType
	ActorID            *int64
	OccurredAt         time.Time
	Content            string
	// Legacy is true when the entry was parsed from activity text rather than read from a status event.
	Legacy bool
}

// EmailHistoryEntry is one EMAIL_SENT activity.
type EmailHistoryEntry struct {
	ActivityID     string
	SenderType     domain.SenderType
	SenderID       *int64
	Content        string
	RecipientCount *int
	SentAt         time.Time
}

var actionPhrases = map[domain.StatusEventAction]string{
	domain.StatusEventCreated:   "Initial status set",
	domain.StatusEventHandled:   "Ticket handled by CXC",
	domain.StatusEventEscalated: "Ticket escalated",
	domain.StatusEventClosed:    "Ticket closed",
	domain.StatusEventDeclined:  "Ticket declined",
	domain.StatusEventDoneByUIC: "Ticket marked done by UIC",
	domain.StatusEventUpdated:   "Status updated",
}

// RenderStatusContent produces the STATUS_CHANGE activity text for a status event.
// The text always contains "customer status to X, employee status to Y".
func RenderStatusContent(event domain.TicketStatusEvent) string {
	return fmt.Sprintf("%s: customer status to %s, employee status to %s",
		actionPhrase(event.Action), event.ToCustomerStatus, event.ToEmployeeStatus)
}

// RenderCustomerStatusContent is the STATUS_CHANGE text shown to customers. It never
// names the employee status.
func RenderCustomerStatusContent(action domain.StatusEventAction, customer *domain.CustomerStatus) string {
	if customer == nil {
		return actionPhrase(action)
	}
	return fmt.Sprintf("%s: customer status to %s", actionPhrase(action), *customer)
}

func actionPhrase(action domain.StatusEventAction) string {
	if phrase, ok := actionPhrases[action]; ok {
		return phrase
	}
	return actionPhrases[domain.StatusEventUpdated]
}

var (
	customerStatusPattern = regexp.MustCompile(`customer status to (\w+)`)
	employeeStatusPattern = regexp.MustCompile(`employee status to (\w+)`)
	recipientCountPattern = regexp.MustCompile(`sent to (\d+) recipient`)
)

// legacyActionKeywords is checked in order; the first keyword found classifies the entry.
var legacyActionKeywords = []struct {
	keyword string
	action  domain.StatusEventAction
}{
	{"Initial status set", domain.StatusEventCreated},
	{"done by UIC", domain.StatusEventDoneByUIC},
	{"escalated", domain.StatusEventEscalated},
	{"declined", domain.StatusEventDeclined},
	{"closed", domain.StatusEventClosed},
	{"handled", domain.StatusEventHandled},
}

// ParseLegacyStatusContent extracts the status codes and action from activity text that
// has no structured status event.
func ParseLegacyStatusContent(content string) (*domain.CustomerStatus, *domain.EmployeeStatus, domain.StatusEventAction) {
	var customer *domain.CustomerStatus
	var employee *domain.EmployeeStatus
	if m := customerStatusPattern.FindStringSubmatch(content); m != nil {
		s := domain.CustomerStatus(m[1])
		customer = &s
	}
	if m := employeeStatusPattern.FindStringSubmatch(content); m != nil {
		s := domain.EmployeeStatus(m[1])
		employee = &s
	}
	action := domain.StatusEventUpdated
	for _, kw := range legacyActionKeywords {
		if strings.Contains(content, kw.keyword) {
			action = kw.action
			break
		}
	}
	return customer, employee, action
}

// BuildStatusHistory merges STATUS_CHANGE activities with their structured events in
// ascending time order. Activities without an event fall back to text parsing, with
// the from-statuses carried over from the previous entry.
func BuildStatusHistory(activities []domain.TicketActivity, statusEvents []domain.TicketStatusEvent) []StatusHistoryEntry {
	byActivity := make(map[string]domain.TicketStatusEvent, len(statusEvents))
	for _, ev := range statusEvents {
		byActivity[ev.ActivityID] = ev
	}

	entries := make([]StatusHistoryEntry, 0, len(activities))
	var lastCustomer *domain.CustomerStatus
	var lastEmployee *domain.EmployeeStatus
	for _, activity := range activities {
		if activity.ActivityType != domain.ActivityTypeStatusChange {
			continue
		}
		entry := StatusHistoryEntry{
			ActivityID: activity.ID,
			ActorType:  activity.SenderType,
			ActorID:    activity.SenderID,
			OccurredAt: activity.ActivityTime,
			Content:    activity.Content,
		}
		if ev, ok := byActivity[activity.ID]; ok {
			toCustomer, toEmployee := ev.ToCustomerStatus, ev.ToEmployeeStatus
			entry.Action = ev.Action
			entry.FromCustomerStatus = ev.FromCustomerStatus
			entry.FromEmployeeStatus = ev.FromEmployeeStatus
			entry.ToCustomerStatus = &toCustomer
			entry.ToEmployeeStatus = &toEmployee
			entry.ActorType = ev.ActorType
			entry.ActorID = ev.ActorID
			entry.OccurredAt = ev.OccurredAt
		} else {
			customer, employee, action := ParseLegacyStatusContent(activity.Content)
			entry.Action = action
			entry.FromCustomerStatus = lastCustomer
			entry.FromEmployeeStatus = lastEmployee
			entry.ToCustomerStatus = customer
			entry.ToEmployeeStatus = employee
			entry.Legacy = true
		}
		if entry.ToCustomerStatus != nil {
			lastCustomer = entry.ToCustomerStatus
		}
		if entry.ToEmployeeStatus != nil {
			lastEmployee = entry.ToEmployeeStatus
		}
		entries = append(entries, entry)
	}
	return entries
}

// BuildEmailHistory converts EMAIL_SENT activities into history entries.
func BuildEmailHistory(activities []domain.TicketActivity) []EmailHistoryEntry {
	entries := make([]EmailHistoryEntry, 0, len(activities))
	for _, activity := range activities {
		if activity.ActivityType != domain.ActivityTypeEmailSent {
			continue
		}
		entry := EmailHistoryEntry{
			ActivityID: activity.ID,
			SenderType: activity.SenderType,
			SenderID:   activity.SenderID,
			Content:    activity.Content,
			SentAt:     activity.ActivityTime,
		}
		if m := recipientCountPattern.FindStringSubmatch(activity.Content); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				entry.RecipientCount = &n
			}
		}
		entries = append(entries, entry)
	}
	return entries
}
