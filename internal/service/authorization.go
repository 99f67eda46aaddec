package service

import (
	"github.com/spec-kit/complaint-service/internal/domain"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

func cxcAgentsOnly() error {
	return apperrors.NewForbidden("only CXC agents can work on CXC tickets")
}

// escalatedTo reports whether policy routes the ticket to division.
func escalatedTo(policy *domain.ComplaintPolicy, division int64) bool {
	return policy != nil && policy.UICID != nil && *policy.UICID == division
}

// authorizeCreate returns the owning customer for a new ticket.
func authorizeCreate(actor domain.Actor, requestedCustomer *int64, action domain.TicketAction) (int64, error) {
	switch {
	case actor.IsCustomer():
		if action != "" {
			return 0, apperrors.NewForbidden("customers cannot create tickets with an action")
		}
		if requestedCustomer != nil && *requestedCustomer != actor.ID {
			return 0, apperrors.NewForbidden("customers can only create tickets for themselves")
		}
		return actor.ID, nil
	case actor.IsCXCAgent():
		if requestedCustomer == nil || *requestedCustomer <= 0 {
			return 0, apperrors.NewValidationError("customer_id is required", map[string]any{"field": "customer_id"})
		}
		return *requestedCustomer, nil
	default:
		return 0, apperrors.NewForbidden("only customers and CXC agents can create tickets")
	}
}

// authorizeView checks read access to a single ticket.
func authorizeView(actor domain.Actor, ticket *domain.Ticket, policy *domain.ComplaintPolicy) error {
	switch {
	case actor.IsCustomer():
		if ticket.CustomerID != actor.ID {
			return apperrors.NewForbidden("ticket belongs to another customer")
		}
		return nil
	case actor.IsCXCAgent():
		return nil
	case actor.IsSpecialist():
		if !escalatedTo(policy, actor.DivisionID) {
			return apperrors.NewForbidden("ticket is not routed to your division")
		}
		return nil
	case actor.IsEmployee():
		return cxcAgentsOnly()
	default:
		return apperrors.NewForbidden("access denied")
	}
}

// authorizeCommand checks that actor may apply cmd to ticket.
func authorizeCommand(actor domain.Actor, ticket *domain.Ticket, policy *domain.ComplaintPolicy, cmd domain.TicketCommand) error {
	switch {
	case actor.IsCustomer():
		return apperrors.NewForbidden("customers cannot update tickets")
	case actor.IsCXCAgent():
		if _, ok := cmd.(domain.MarkDoneByUIC); ok {
			return apperrors.NewForbidden("only the unit in charge can mark a ticket done")
		}
		return nil
	case actor.IsSpecialist():
		switch cmd.(type) {
		case domain.MarkDoneByUIC, domain.AddDivisionNote:
		default:
			return apperrors.NewForbidden("specialists may only mark tickets done or add notes")
		}
		if ticket.EmployeeStatus != domain.EmployeeStatusEscalated || !escalatedTo(policy, actor.DivisionID) {
			return apperrors.NewForbidden("ticket is not escalated to your division")
		}
		return nil
	case actor.IsEmployee():
		return cxcAgentsOnly()
	default:
		return apperrors.NewForbidden("access denied")
	}
}

// authorizeDelete allows only CXC agents to soft delete.
func authorizeDelete(actor domain.Actor) error {
	if !actor.IsCXCAgent() {
		return apperrors.NewForbidden("only CXC agents can delete tickets")
	}
	return nil
}
