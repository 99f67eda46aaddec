package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/notification"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/repository"
)

// NotifierDependencies bundles collaborators for the escalation notifier.
type NotifierDependencies struct {
	TicketRepo      repository.TicketRepository
	ActivityRepo    repository.TicketActivityRepository
	PolicyRepo      repository.PolicyRepository
	ReferenceRepo   repository.ReferenceRepository
	CustomerRepo    repository.CustomerRepository
	EmployeeRepo    repository.EmployeeRepository
	Mailer          notification.Mailer
	Pusher          notification.Pusher
	Metrics         *observability.Metrics
	Logger          *zap.Logger
	SendConcurrency int
	Now             func() time.Time
}

// EscalationNotifier informs the unit in charge about escalated tickets and the responsible
// CXC agent about tickets handed back. Delivery is best effort: failures are logged, never returned
// to the ticket operation that triggered them.
type EscalationNotifier struct {
	tickets     repository.TicketRepository
	activities  repository.TicketActivityRepository
	policies    repository.PolicyRepository
	references  repository.ReferenceRepository
	customers   repository.CustomerRepository
	employees   repository.EmployeeRepository
	mailer      notification.Mailer
	pusher      notification.Pusher
	metrics     *observability.Metrics
	logger      *zap.Logger
	concurrency int
	nowFn       func() time.Time
}

// EscalationResult summarises one escalation fan-out.
type EscalationResult struct {
	DivisionID int64
	Recipients int
	Failed     int
}

// NewEscalationNotifier constructs the notifier.
func NewEscalationNotifier(deps NotifierDependencies) *EscalationNotifier {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	concurrency := deps.SendConcurrency
	if concurrency <= 0 {
		concurrency = 8
	}
	return &EscalationNotifier{
		tickets:     deps.TicketRepo,
		activities:  deps.ActivityRepo,
		policies:    deps.PolicyRepo,
		references:  deps.ReferenceRepo,
		customers:   deps.CustomerRepo,
		employees:   deps.EmployeeRepo,
		mailer:      deps.Mailer,
		pusher:      deps.Pusher,
		metrics:     deps.Metrics,
		logger:      deps.Logger.Named("escalation_notifier"),
		concurrency: concurrency,
		nowFn:       now,
	}
}

// NotifyEscalation emails every active employee of the ticket's unit in charge and records a
// single EMAIL_SENT activity. A nil result means nothing was sent.
func (n *EscalationNotifier) NotifyEscalation(ctx context.Context, ticketID string, actorID *int64) (*EscalationResult, error) {
	ticket, err := n.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("load ticket %s: %w", ticketID, err)
	}
	if ticket.PolicyID == nil {
		n.logger.Info("no policy resolved, skipping escalation email", zap.String("ticket_id", ticketID))
		return nil, nil
	}
	policy, err := n.policies.GetByID(ctx, *ticket.PolicyID)
	if err != nil {
		return nil, fmt.Errorf("load policy %d: %w", *ticket.PolicyID, err)
	}
	if policy.UICID == nil {
		n.logger.Info("policy has no unit in charge, skipping escalation email",
			zap.String("ticket_id", ticketID),
			zap.Int64("policy_id", policy.ID))
		return nil, nil
	}
	divisionID := *policy.UICID

	active := true
	recipients, err := n.employees.List(ctx, repository.EmployeeFilter{DivisionID: &divisionID, Active: &active})
	if err != nil {
		return nil, fmt.Errorf("list division employees: %w", err)
	}
	if len(recipients) == 0 {
		n.logger.Warn("no active employees in division, skipping escalation email",
			zap.String("ticket_id", ticketID),
			zap.Int64("division_id", divisionID))
		return nil, nil
	}

	division, err := n.references.GetDivision(ctx, divisionID)
	if err != nil {
		return nil, fmt.Errorf("load division %d: %w", divisionID, err)
	}
	data := n.escalationData(ctx, ticket, division)
	subject := fmt.Sprintf("[%s] Ticket escalated to %s", ticket.TicketNumber, division.Name)

	var failed atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n.concurrency)
	for _, recipient := range recipients {
		g.Go(func() error {
			msg := data
			msg.RecipientName = recipient.FullName
			html, err := notification.RenderEscalation(msg)
			if err == nil {
				err = n.mailer.SendEmail(gctx, recipient.Email, subject, html)
			}
			if err != nil {
				failed.Add(1)
				n.logger.Warn("escalation email failed",
					zap.String("ticket_id", ticket.ID),
					zap.String("recipient", recipient.Email),
					zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	result := &EscalationResult{DivisionID: divisionID, Recipients: len(recipients), Failed: int(failed.Load())}
	content := fmt.Sprintf("Escalation email sent to %d recipient(s) in division %s", result.Recipients, division.Code)
	if result.Failed > 0 {
		content += fmt.Sprintf(", %d failed", result.Failed)
	}
	if err := n.record(ctx, ticket.ID, domain.ActivityTypeEmailSent, actorID, content); err != nil {
		return result, err
	}
	n.logger.Info("escalation email dispatched",
		zap.String("ticket_id", ticket.ID),
		zap.Int64("division_id", divisionID),
		zap.Int("recipients", result.Recipients),
		zap.Int("failed", result.Failed))
	return result, nil
}

// NotifyDoneByUIC emails and pushes the responsible CXC agent that the unit in charge finished.
func (n *EscalationNotifier) NotifyDoneByUIC(ctx context.Context, ticketID string, actorID *int64) error {
	ticket, err := n.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return fmt.Errorf("load ticket %s: %w", ticketID, err)
	}
	if ticket.ResponsibleEmployeeID == nil {
		n.logger.Info("no responsible employee, skipping done-by-uic notice", zap.String("ticket_id", ticketID))
		return nil
	}
	agent, err := n.employees.GetByID(ctx, *ticket.ResponsibleEmployeeID)
	if err != nil {
		return fmt.Errorf("load responsible employee: %w", err)
	}

	divisionName := ""
	if ticket.PolicyID != nil {
		if policy, err := n.policies.GetByID(ctx, *ticket.PolicyID); err == nil && policy.UICID != nil {
			if division, err := n.references.GetDivision(ctx, *policy.UICID); err == nil {
				divisionName = division.Name
			}
		}
	}
	if divisionName == "" && actorID != nil {
		if specialist, err := n.employees.GetByID(ctx, *actorID); err == nil {
			if division, err := n.references.GetDivision(ctx, specialist.DivisionID); err == nil {
				divisionName = division.Name
			}
		}
	}

	solution := ""
	if ticket.Solution != nil {
		solution = *ticket.Solution
	}
	html, err := notification.RenderDoneByUIC(notification.DoneByUICEmail{
		TicketNumber:  ticket.TicketNumber,
		DivisionName:  divisionName,
		Solution:      solution,
		RecipientName: agent.FullName,
		DueAt:         ticket.CommittedDueAt,
	})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("[%s] Ticket done by unit in charge", ticket.TicketNumber)
	if err := n.mailer.SendEmail(ctx, agent.Email, subject, html); err != nil {
		n.logger.Warn("done-by-uic email failed",
			zap.String("ticket_id", ticket.ID),
			zap.String("recipient", agent.Email),
			zap.Error(err))
	} else if err := n.record(ctx, ticket.ID, domain.ActivityTypeEmailSent, actorID,
		fmt.Sprintf("Done by UIC email sent to 1 recipient(s): %s", agent.Email)); err != nil {
		return err
	}

	if agent.PushToken != nil && *agent.PushToken != "" {
		err := n.pusher.SendPush(ctx, *agent.PushToken,
			"Ticket ready for closure",
			fmt.Sprintf("%s was marked done by %s", ticket.TicketNumber, fallback(divisionName, "the unit in charge")),
			map[string]string{"ticket_id": ticket.ID, "type": "done_by_uic"})
		if err != nil {
			n.logger.Warn("done-by-uic push failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
		} else if err := n.record(ctx, ticket.ID, domain.ActivityTypeNotification, actorID,
			fmt.Sprintf("Push notification sent to employee %d", agent.ID)); err != nil {
			return err
		}
	}
	return nil
}

func (n *EscalationNotifier) escalationData(ctx context.Context, ticket *domain.Ticket, division *domain.Division) notification.EscalationEmail {
	data := notification.EscalationEmail{
		TicketNumber: ticket.TicketNumber,
		Description:  ticket.Description,
		DivisionName: division.Name,
		DueAt:        ticket.CommittedDueAt,
	}
	if priority, err := n.references.GetPriority(ctx, ticket.PriorityID); err == nil {
		data.Priority = priority.Name
	}
	if complaint, err := n.references.GetComplaint(ctx, ticket.ComplaintID); err == nil {
		data.Complaint = complaint.Name
	}
	if channel, err := n.references.GetChannel(ctx, ticket.IssueChannelID); err == nil {
		data.Channel = channel.Name
	}
	if customer, err := n.customers.GetByID(ctx, ticket.CustomerID); err == nil {
		data.CustomerName = customer.FullName
		data.CustomerEmail = customer.Email
		data.CustomerPhone = customer.PhoneNumber
	}
	return data
}

func (n *EscalationNotifier) record(ctx context.Context, ticketID string, kind domain.ActivityType, actorID *int64, content string) error {
	sender := domain.SenderTypeSystem
	if actorID != nil {
		sender = domain.SenderTypeEmployee
	}
	return n.activities.Create(ctx, &domain.TicketActivity{
		ID:           uuid.NewString(),
		TicketID:     ticketID,
		ActivityType: kind,
		SenderType:   sender,
		SenderID:     actorID,
		Content:      content,
		ActivityTime: n.nowFn().UTC(),
	})
}

func fallback(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
