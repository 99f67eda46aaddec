package handlers

import (
	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/service"
)

// ticketResponse renders details for actor. Customers do not see internal workflow fields.
func ticketResponse(details *service.TicketDetails, actor domain.Actor) dto.TicketResponse {
	t := details.Ticket
	resp := dto.TicketResponse{
		ID:              t.ID,
		TicketNumber:    t.TicketNumber,
		ComplaintID:     t.ComplaintID,
		IssueChannelID:  t.IssueChannelID,
		PriorityID:      t.PriorityID,
		TerminalID:      t.TerminalID,
		IntakeSource:    t.IntakeSource,
		CustomerID:      t.CustomerID,
		CustomerStatus:  t.CustomerStatus,
		CommittedDueAt:  t.CommittedDueAt,
		ClosedTime:      t.ClosedTime,
		Description:     t.Description,
		Reason:          t.Reason,
		Solution:        t.Solution,
		TransactionDate: t.TransactionDate,
		Amount:          t.Amount,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
		SLAInfo: dto.SLAInfoResponse{
			SLADays:        details.SLA.SLADays,
			CommittedDueAt: details.SLA.CommittedDueAt,
			IsOverdue:      details.SLA.IsOverdue,
			HoursRemaining: details.SLA.HoursRemaining,
		},
	}
	if actor.IsCustomer() {
		return resp
	}
	status := t.EmployeeStatus
	resp.EmployeeStatus = &status
	resp.ResponsibleEmployeeID = t.ResponsibleEmployeeID
	resp.PolicyID = t.PolicyID
	resp.Record = t.Record
	resp.DivisionNotes = t.DivisionNotes
	resp.SLAInfo.PolicyID = details.SLA.PolicyID
	resp.SLAInfo.UICID = details.SLA.UICID
	return resp
}

func activityResponse(a *domain.TicketActivity) dto.ActivityResponse {
	return dto.ActivityResponse{
		ID:           a.ID,
		ActivityType: a.ActivityType,
		SenderType:   a.SenderType,
		SenderID:     a.SenderID,
		Content:      a.Content,
		ActivityTime: a.ActivityTime,
	}
}

// statusHistoryResponse hides employee statuses and the raw activity text from customers.
func statusHistoryResponse(entry service.StatusHistoryEntry, actor domain.Actor) dto.StatusHistoryResponse {
	resp := dto.StatusHistoryResponse{
		ActivityID:         entry.ActivityID,
		Action:             entry.Action,
		FromCustomerStatus: entry.FromCustomerStatus,
		ToCustomerStatus:   entry.ToCustomerStatus,
		ActorType:          entry.ActorType,
		OccurredAt:         entry.OccurredAt,
	}
	if actor.IsCustomer() {
		return resp
	}
	resp.FromEmployeeStatus = entry.FromEmployeeStatus
	resp.ToEmployeeStatus = entry.ToEmployeeStatus
	resp.ActorID = entry.ActorID
	resp.Content = entry.Content
	return resp
}

func feedbackResponse(f *domain.Feedback) dto.FeedbackResponse {
	return dto.FeedbackResponse{
		ID:        f.ID,
		TicketID:  f.TicketID,
		Score:     f.Score,
		Comment:   f.Comment,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}
