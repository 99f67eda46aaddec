package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/persistence"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// TicketService owns the ticket lifecycle.
type TicketService struct {
	tx           repository.Transactor
	tickets      repository.TicketRepository
	activities   repository.TicketActivityRepository
	statusEvents repository.TicketStatusEventRepository
	policies     repository.PolicyRepository
	references   repository.ReferenceRepository
	customers    repository.CustomerRepository
	resolver     *PolicyResolver
	numbers      *TicketNumberGenerator
	dispatcher   events.Dispatcher
	metrics      *observability.Metrics
	cfg          config.TicketConfig
	logger       *zap.Logger
	nowFn        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Tx              repository.Transactor
	TicketRepo      repository.TicketRepository
	ActivityRepo    repository.TicketActivityRepository
	StatusEventRepo repository.TicketStatusEventRepository
	PolicyRepo      repository.PolicyRepository
	ReferenceRepo   repository.ReferenceRepository
	CustomerRepo    repository.CustomerRepository
	Resolver        *PolicyResolver
	Numbers         *TicketNumberGenerator
	Dispatcher      events.Dispatcher
	Metrics         *observability.Metrics
	Config          config.TicketConfig
	Logger          *zap.Logger
	Now             func() time.Time
}

// CreateTicketInput describes a ticket creation request.
type CreateTicketInput struct {
	Action          string
	CustomerID      *int64
	ComplaintID     int64
	IssueChannelID  int64
	PriorityID      *int64
	TerminalID      *int64
	Description     string
	Record          *string
	Solution        *string
	DivisionNote    *string
	TransactionDate *time.Time
	Amount          *float64
}

// UpdateTicketInput carries the raw action token and the optional fields of a PATCH.
type UpdateTicketInput struct {
	Action string
	Patch  domain.TicketPatch
}

// ListTicketsInput describes list filters.
type ListTicketsInput struct {
	CustomerStatuses []domain.CustomerStatus
	EmployeeStatuses []domain.EmployeeStatus
	ComplaintID      *int64
	PriorityID       *int64
	SearchTerm       *string
	CreatedFrom      *time.Time
	CreatedTo        *time.Time
	Limit            int
	Offset           int
}

// AddActivityInput describes a free-form activity.
type AddActivityInput struct {
	Type      domain.ActivityType
	Content   string
	FileNames []string
}

// SLAInfo summarises the ticket's SLA position.
type SLAInfo struct {
	PolicyID       *int64
	SLADays        int
	UICID          *int64
	CommittedDueAt time.Time
	IsOverdue      bool
	HoursRemaining float64
}

// TicketDetails is a ticket together with its resolved policy and SLA summary.
type TicketDetails struct {
	Ticket *domain.Ticket
	Policy *domain.ComplaintPolicy
	SLA    SLAInfo
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	cfg := deps.Config
	if cfg.DefaultSLADays <= 0 {
		cfg.DefaultSLADays = 1
	}
	if cfg.NumberMaxAttempts <= 0 {
		cfg.NumberMaxAttempts = 3
	}
	return &TicketService{
		tx:           deps.Tx,
		tickets:      deps.TicketRepo,
		activities:   deps.ActivityRepo,
		statusEvents: deps.StatusEventRepo,
		policies:     deps.PolicyRepo,
		references:   deps.ReferenceRepo,
		customers:    deps.CustomerRepo,
		resolver:     deps.Resolver,
		numbers:      deps.Numbers,
		dispatcher:   deps.Dispatcher,
		metrics:      deps.Metrics,
		cfg:          cfg,
		logger:       deps.Logger.Named("ticket_service"),
		nowFn:        now,
	}
}

// Create opens a ticket for a customer, optionally straight into ESCALATED or CLOSED.
func (s *TicketService) Create(ctx context.Context, actor domain.Actor, input CreateTicketInput) (*TicketDetails, error) {
	var action domain.TicketAction
	if strings.TrimSpace(input.Action) != "" {
		parsed, err := domain.ParseTicketAction(input.Action)
		if err != nil {
			return nil, commandToValidation(err)
		}
		action = parsed
	}
	customerID, err := authorizeCreate(actor, input.CustomerID, action)
	if err != nil {
		return nil, err
	}
	transition, err := domain.CreationTransition(action)
	if err != nil {
		return nil, commandToValidation(err)
	}

	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, apperrors.NewValidationError("description is required", map[string]any{"field": "description"})
	}
	if input.ComplaintID <= 0 || input.IssueChannelID <= 0 {
		return nil, apperrors.NewValidationError("complaint_id and issue_channel_id are required", nil)
	}
	if input.Amount != nil && *input.Amount < 0 {
		return nil, apperrors.NewValidationError("amount must not be negative", map[string]any{"field": "amount"})
	}

	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		return nil, referenceError(err, "customer_id")
	}
	if err := s.validateClassification(ctx, &input.ComplaintID, &input.IssueChannelID, input.TerminalID); err != nil {
		return nil, err
	}
	priorityID, err := s.resolvePriority(ctx, input.PriorityID)
	if err != nil {
		return nil, err
	}

	policy, err := s.resolver.Resolve(ctx, input.ComplaintID, input.IssueChannelID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	now := s.nowFn().UTC()
	ticket := &domain.Ticket{
		ComplaintID:     input.ComplaintID,
		IssueChannelID:  input.IssueChannelID,
		PriorityID:      priorityID,
		TerminalID:      input.TerminalID,
		IntakeSource:    intakeSourceOf(actor),
		CustomerID:      customerID,
		CustomerStatus:  transition.CustomerStatus,
		EmployeeStatus:  transition.EmployeeStatus,
		CommittedDueAt:  now.Add(s.slaDuration(policy)),
		Description:     description,
		Record:          trimmedPtr(input.Record),
		TransactionDate: input.TransactionDate,
		Amount:          input.Amount,
		DivisionNotes:   []domain.DivisionNote{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if policy != nil {
		ticket.PolicyID = &policy.ID
	}
	if action != "" {
		ticket.ResponsibleEmployeeID = actor.SenderID()
	}
	if transition.EmployeeStatus.IsTerminal() {
		ticket.ClosedTime = &now
		ticket.Solution = trimmedPtr(input.Solution)
	}
	if note := trimmedPtr(input.DivisionNote); note != nil && actor.IsEmployee() {
		ticket.DivisionNotes = append(ticket.DivisionNotes, newDivisionNote(actor, *note, now))
	}

	event := domain.TicketStatusEvent{
		ToCustomerStatus: transition.CustomerStatus,
		ToEmployeeStatus: transition.EmployeeStatus,
		Action:           domain.StatusEventCreated,
		ActorType:        actor.SenderType(),
		ActorID:          actor.SenderID(),
		OccurredAt:       now,
	}

	if err := s.insertWithNumber(ctx, ticket, event); err != nil {
		return nil, err
	}

	s.metrics.RecordTransition(string(domain.StatusEventCreated))
	s.logger.Info("ticket created",
		zap.String("ticket_id", ticket.ID),
		zap.String("ticket_number", ticket.TicketNumber),
		zap.String("employee_status", string(ticket.EmployeeStatus)))

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.ActorOf(actor),
		Payload: events.TicketCreatedPayload{
			TicketNumber:   ticket.TicketNumber,
			CustomerID:     ticket.CustomerID,
			CustomerStatus: ticket.CustomerStatus,
			EmployeeStatus: ticket.EmployeeStatus,
			PolicyID:       ticket.PolicyID,
			CommittedDueAt: ticket.CommittedDueAt,
		},
	})
	if action == domain.ActionEscalated {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketEscalated,
			TicketID: ticket.ID,
			Actor:    events.ActorOf(actor),
			Payload:  events.TicketEscalatedPayload{TicketNumber: ticket.TicketNumber, PolicyID: ticket.PolicyID},
		})
	}
	return s.details(ticket, policy), nil
}

// insertWithNumber assigns a ticket number and writes the ticket, its STATUS_CHANGE
// activity and status event in one transaction, retrying on a duplicate number.
func (s *TicketService) insertWithNumber(ctx context.Context, ticket *domain.Ticket, event domain.TicketStatusEvent) error {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.NumberMaxAttempts; attempt++ {
		number, err := s.numbers.Next(ctx, ticket.CreatedAt)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		ticket.ID = uuid.NewString()
		ticket.TicketNumber = number

		ev := event
		lastErr = s.tx.WithinTx(ctx, func(ctx context.Context) error {
			if err := s.tickets.Create(ctx, ticket); err != nil {
				return err
			}
			return s.appendStatusChange(ctx, ticket, &ev)
		})
		if lastErr == nil {
			return nil
		}
		if !persistence.IsUniqueViolation(lastErr, repository.TicketNumberConstraint) {
			return apperrors.MapError(lastErr)
		}
		s.logger.Warn("ticket number collision, retrying",
			zap.String("ticket_number", number),
			zap.Int("attempt", attempt))
	}
	return apperrors.NewConflict("could not allocate a unique ticket number", map[string]any{"attempts": s.cfg.NumberMaxAttempts})
}

// appendStatusChange writes the STATUS_CHANGE activity and the structured event for it.
func (s *TicketService) appendStatusChange(ctx context.Context, ticket *domain.Ticket, event *domain.TicketStatusEvent) error {
	event.ID = uuid.NewString()
	event.TicketID = ticket.ID
	activity := &domain.TicketActivity{
		ID:           uuid.NewString(),
		TicketID:     ticket.ID,
		ActivityType: domain.ActivityTypeStatusChange,
		SenderType:   event.ActorType,
		SenderID:     event.ActorID,
		Content:      RenderStatusContent(*event),
		ActivityTime: event.OccurredAt,
	}
	event.ActivityID = activity.ID
	if err := s.activities.Create(ctx, activity); err != nil {
		return err
	}
	return s.statusEvents.Create(ctx, event)
}

// Update applies a transition or a note-only edit.
func (s *TicketService) Update(ctx context.Context, actor domain.Actor, ticketID string, input UpdateTicketInput) (*TicketDetails, error) {
	if actor.IsCustomer() {
		return nil, apperrors.NewForbidden("customers cannot update tickets")
	}
	if !actor.IsEmployee() {
		return nil, apperrors.NewForbidden("access denied")
	}

	var action domain.TicketAction
	if strings.TrimSpace(input.Action) != "" {
		parsed, err := domain.ParseTicketAction(input.Action)
		if err != nil {
			return nil, commandToValidation(err)
		}
		action = parsed
	}
	cmd, err := domain.NewTicketCommand(action, input.Patch)
	if err != nil {
		return nil, commandToValidation(err)
	}

	ticket, policy, err := s.loadLive(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := authorizeCommand(actor, ticket, policy, cmd); err != nil {
		return nil, err
	}

	if note, ok := cmd.(domain.AddDivisionNote); ok {
		return s.addNote(ctx, actor, ticket, policy, note)
	}

	transition, ok := domain.TransitionFor(cmd.Action())
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unsupported action %s", cmd.Action()), nil)
	}
	if err := transition.CheckFrom(ticket.EmployeeStatus); err != nil {
		return nil, commandToValidation(err)
	}

	now := s.nowFn().UTC()
	if policy, err = s.applyCommand(ctx, actor, ticket, policy, cmd, now); err != nil {
		return nil, err
	}

	fromCustomer, fromEmployee := ticket.CustomerStatus, ticket.EmployeeStatus
	ticket.CustomerStatus = transition.CustomerStatus
	ticket.EmployeeStatus = transition.EmployeeStatus
	if ticket.EmployeeStatus.IsTerminal() && ticket.ClosedTime == nil {
		ticket.ClosedTime = &now
	}
	ticket.UpdatedAt = now

	event := domain.TicketStatusEvent{
		FromCustomerStatus: &fromCustomer,
		ToCustomerStatus:   ticket.CustomerStatus,
		FromEmployeeStatus: &fromEmployee,
		ToEmployeeStatus:   ticket.EmployeeStatus,
		Action:             transition.EventAction,
		ActorType:          actor.SenderType(),
		ActorID:            actor.SenderID(),
		OccurredAt:         now,
	}
	if err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return err
		}
		return s.appendStatusChange(ctx, ticket, &event)
	}); err != nil {
		return nil, apperrors.NotFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}

	s.metrics.RecordTransition(string(transition.EventAction))
	s.logger.Info("ticket transitioned",
		zap.String("ticket_id", ticket.ID),
		zap.String("action", string(cmd.Action())),
		zap.String("from", string(fromEmployee)),
		zap.String("to", string(ticket.EmployeeStatus)))

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    events.ActorOf(actor),
		Payload: events.TicketStatusChangedPayload{
			TicketNumber:       ticket.TicketNumber,
			Action:             transition.EventAction,
			FromCustomerStatus: &fromCustomer,
			ToCustomerStatus:   ticket.CustomerStatus,
			FromEmployeeStatus: &fromEmployee,
			ToEmployeeStatus:   ticket.EmployeeStatus,
		},
	})
	switch cmd.Action() {
	case domain.ActionEscalated:
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketEscalated,
			TicketID: ticket.ID,
			Actor:    events.ActorOf(actor),
			Payload:  events.TicketEscalatedPayload{TicketNumber: ticket.TicketNumber, PolicyID: ticket.PolicyID},
		})
	case domain.ActionDoneByUIC:
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketDoneByUIC,
			TicketID: ticket.ID,
			Actor:    events.ActorOf(actor),
			Payload: events.TicketDoneByUICPayload{
				TicketNumber:          ticket.TicketNumber,
				ResponsibleEmployeeID: ticket.ResponsibleEmployeeID,
			},
		})
	}
	return s.details(ticket, policy), nil
}

// applyCommand copies the command's fields onto ticket and returns the policy in effect afterwards.
func (s *TicketService) applyCommand(ctx context.Context, actor domain.Actor, ticket *domain.Ticket, policy *domain.ComplaintPolicy, cmd domain.TicketCommand, now time.Time) (*domain.ComplaintPolicy, error) {
	switch c := cmd.(type) {
	case domain.HandleByCXC:
		if c.PriorityID != nil {
			if _, err := s.resolvePriority(ctx, c.PriorityID); err != nil {
				return nil, err
			}
			ticket.PriorityID = *c.PriorityID
		}
		if c.Record != nil {
			ticket.Record = c.Record
		}
		ticket.ResponsibleEmployeeID = actor.SenderID()
		s.appendNote(ticket, actor, c.DivisionNote, now)

	case domain.Escalate:
		complaintID, channelID := ticket.ComplaintID, ticket.IssueChannelID
		if c.ComplaintID != nil {
			complaintID = *c.ComplaintID
		}
		if c.IssueChannelID != nil {
			channelID = *c.IssueChannelID
		}
		if err := s.validateClassification(ctx, c.ComplaintID, c.IssueChannelID, c.TerminalID); err != nil {
			return nil, err
		}
		if c.PriorityID != nil {
			if _, err := s.resolvePriority(ctx, c.PriorityID); err != nil {
				return nil, err
			}
			ticket.PriorityID = *c.PriorityID
		}
		resolved, err := s.resolver.Resolve(ctx, complaintID, channelID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		ticket.ComplaintID = complaintID
		ticket.IssueChannelID = channelID
		if c.TerminalID != nil {
			ticket.TerminalID = c.TerminalID
		}
		if c.Record != nil {
			ticket.Record = c.Record
		}
		ticket.PolicyID = nil
		if resolved != nil {
			ticket.PolicyID = &resolved.ID
		}
		ticket.CommittedDueAt = ticket.CreatedAt.Add(s.slaDuration(resolved))
		if ticket.ResponsibleEmployeeID == nil {
			ticket.ResponsibleEmployeeID = actor.SenderID()
		}
		s.appendNote(ticket, actor, c.DivisionNote, now)
		policy = resolved

	case domain.Close:
		if c.Solution != nil {
			ticket.Solution = c.Solution
		}
		if ticket.ResponsibleEmployeeID == nil {
			ticket.ResponsibleEmployeeID = actor.SenderID()
		}

	case domain.Decline:
		if c.Reason != nil {
			ticket.Reason = c.Reason
		}
		if ticket.ResponsibleEmployeeID == nil {
			ticket.ResponsibleEmployeeID = actor.SenderID()
		}

	case domain.MarkDoneByUIC:
		if c.Solution != nil {
			ticket.Solution = c.Solution
		}
		s.appendNote(ticket, actor, c.DivisionNote, now)
	}
	return policy, nil
}

// addNote appends a division note without a status change.
func (s *TicketService) addNote(ctx context.Context, actor domain.Actor, ticket *domain.Ticket, policy *domain.ComplaintPolicy, cmd domain.AddDivisionNote) (*TicketDetails, error) {
	if ticket.EmployeeStatus.IsTerminal() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("ticket is already %s", ticket.EmployeeStatus), nil)
	}
	now := s.nowFn().UTC()
	ticket.DivisionNotes = append(ticket.DivisionNotes, newDivisionNote(actor, cmd.Note, now))
	ticket.UpdatedAt = now

	activity := &domain.TicketActivity{
		ID:           uuid.NewString(),
		TicketID:     ticket.ID,
		ActivityType: domain.ActivityTypeNote,
		SenderType:   actor.SenderType(),
		SenderID:     actor.SenderID(),
		Content:      cmd.Note,
		ActivityTime: now,
	}
	if err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return err
		}
		return s.activities.Create(ctx, activity)
	}); err != nil {
		return nil, apperrors.NotFoundOr(err, "ticket", map[string]any{"ticket_id": ticket.ID})
	}
	return s.details(ticket, policy), nil
}

// Delete soft deletes a non-terminal ticket.
func (s *TicketService) Delete(ctx context.Context, actor domain.Actor, ticketID string) error {
	if err := authorizeDelete(actor); err != nil {
		return err
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return apperrors.NotFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	if ticket.IsDeleted() {
		return apperrors.NewConflict("ticket already deleted", map[string]any{"ticket_id": ticketID})
	}
	if ticket.EmployeeStatus.IsTerminal() {
		return apperrors.NewValidationError(fmt.Sprintf("%s tickets cannot be deleted", ticket.EmployeeStatus), nil)
	}

	now := s.nowFn().UTC()
	ticket.DeletedAt = &now
	ticket.DeletedBy = actor.SenderID()
	ticket.UpdatedAt = now
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return apperrors.NotFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	s.logger.Info("ticket deleted", zap.String("ticket_id", ticket.ID), zap.Int64("deleted_by", actor.ID))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: ticket.ID,
		Actor:    events.ActorOf(actor),
		Payload:  events.TicketDeletedPayload{TicketNumber: ticket.TicketNumber},
	})
	return nil
}

// Get returns a ticket the actor may see.
func (s *TicketService) Get(ctx context.Context, actor domain.Actor, ticketID string) (*TicketDetails, error) {
	ticket, policy, err := s.loadVisible(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	return s.details(ticket, policy), nil
}

// List returns tickets scoped to the actor: own tickets for customers, tickets routed to
// the division for specialists, everything for CXC agents.
func (s *TicketService) List(ctx context.Context, actor domain.Actor, input ListTicketsInput) ([]TicketDetails, error) {
	filter := repository.TicketFilter{
		CustomerStatuses: input.CustomerStatuses,
		EmployeeStatuses: input.EmployeeStatuses,
		ComplaintID:      input.ComplaintID,
		PriorityID:       input.PriorityID,
		SearchTerm:       input.SearchTerm,
		CreatedFrom:      input.CreatedFrom,
		CreatedTo:        input.CreatedTo,
		Limit:            input.Limit,
		Offset:           input.Offset,
	}
	switch {
	case actor.IsCustomer():
		id := actor.ID
		filter.CustomerID = &id
		filter.EmployeeStatuses = nil
	case actor.IsCXCAgent():
	case actor.IsSpecialist():
		division := actor.DivisionID
		filter.UICID = &division
	case actor.IsEmployee():
		return nil, cxcAgentsOnly()
	default:
		return nil, apperrors.NewForbidden("access denied")
	}

	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	policies := map[int64]*domain.ComplaintPolicy{}
	result := make([]TicketDetails, 0, len(tickets))
	for i := range tickets {
		ticket := &tickets[i]
		var policy *domain.ComplaintPolicy
		if ticket.PolicyID != nil {
			cached, ok := policies[*ticket.PolicyID]
			if !ok {
				cached, err = s.policies.GetByID(ctx, *ticket.PolicyID)
				if err != nil && !errors.Is(err, pgx.ErrNoRows) {
					return nil, apperrors.MapError(err)
				}
				policies[*ticket.PolicyID] = cached
			}
			policy = cached
		}
		result = append(result, *s.details(ticket, policy))
	}
	return result, nil
}

// ListActivities returns the ticket log. Customers do not see internal entries, and their
// status changes omit the employee status.
func (s *TicketService) ListActivities(ctx context.Context, actor domain.Actor, ticketID string) ([]domain.TicketActivity, error) {
	if _, _, err := s.loadVisible(ctx, actor, ticketID); err != nil {
		return nil, err
	}
	activities, err := s.activities.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !actor.IsCustomer() {
		return activities, nil
	}
	statusEvents, err := s.statusEvents.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	byActivity := make(map[string]domain.TicketStatusEvent, len(statusEvents))
	for _, ev := range statusEvents {
		byActivity[ev.ActivityID] = ev
	}

	visible := make([]domain.TicketActivity, 0, len(activities))
	for _, a := range activities {
		if a.ActivityType.IsInternal() {
			continue
		}
		if a.ActivityType == domain.ActivityTypeStatusChange {
			a.Content = customerStatusContent(a, byActivity)
		}
		visible = append(visible, a)
	}
	return visible, nil
}

// customerStatusContent rewrites a STATUS_CHANGE entry without the employee status.
func customerStatusContent(a domain.TicketActivity, byActivity map[string]domain.TicketStatusEvent) string {
	if ev, ok := byActivity[a.ID]; ok {
		customer := ev.ToCustomerStatus
		return RenderCustomerStatusContent(ev.Action, &customer)
	}
	customer, _, action := ParseLegacyStatusContent(a.Content)
	return RenderCustomerStatusContent(action, customer)
}

// AddActivity appends a comment or attachment record. It never changes status.
func (s *TicketService) AddActivity(ctx context.Context, actor domain.Actor, ticketID string, input AddActivityInput) (*domain.TicketActivity, error) {
	ticket, _, err := s.loadVisible(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(input.Content)
	switch input.Type {
	case domain.ActivityTypeComment:
		if content == "" {
			return nil, apperrors.NewValidationError("content is required", map[string]any{"field": "content"})
		}
	case domain.ActivityTypeAttachment:
		if len(input.FileNames) == 0 {
			return nil, apperrors.NewValidationError("file_names is required for attachments", map[string]any{"field": "file_names"})
		}
		summary := fmt.Sprintf("Attached %d file(s): %s", len(input.FileNames), strings.Join(input.FileNames, ", "))
		if content != "" {
			summary += " - " + content
		}
		content = summary
	default:
		return nil, apperrors.NewValidationError("activity_type must be COMMENT or ATTACHMENT", map[string]any{"field": "activity_type"})
	}

	activity := &domain.TicketActivity{
		ID:           uuid.NewString(),
		TicketID:     ticket.ID,
		ActivityType: input.Type,
		SenderType:   actor.SenderType(),
		SenderID:     actor.SenderID(),
		Content:      content,
		ActivityTime: s.nowFn().UTC(),
	}
	if err := s.activities.Create(ctx, activity); err != nil {
		return nil, apperrors.MapError(err)
	}
	return activity, nil
}

// StatusHistory reconstructs the ticket's status changes.
func (s *TicketService) StatusHistory(ctx context.Context, actor domain.Actor, ticketID string) ([]StatusHistoryEntry, error) {
	if _, _, err := s.loadVisible(ctx, actor, ticketID); err != nil {
		return nil, err
	}
	activities, err := s.activities.ListByTicket(ctx, ticketID, domain.ActivityTypeStatusChange)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	statusEvents, err := s.statusEvents.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return BuildStatusHistory(activities, statusEvents), nil
}

// EmailHistory lists the emails recorded against a ticket. Employees only.
func (s *TicketService) EmailHistory(ctx context.Context, actor domain.Actor, ticketID string) ([]EmailHistoryEntry, error) {
	if !actor.IsEmployee() {
		return nil, apperrors.NewForbidden("email history is restricted to employees")
	}
	if _, _, err := s.loadVisible(ctx, actor, ticketID); err != nil {
		return nil, err
	}
	activities, err := s.activities.ListByTicket(ctx, ticketID, domain.ActivityTypeEmailSent)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return BuildEmailHistory(activities), nil
}

// loadLive fetches a non-deleted ticket with its policy.
func (s *TicketService) loadLive(ctx context.Context, ticketID string) (*domain.Ticket, *domain.ComplaintPolicy, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, apperrors.NotFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	if ticket.IsDeleted() {
		return nil, nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	var policy *domain.ComplaintPolicy
	if ticket.PolicyID != nil {
		policy, err = s.policies.GetByID(ctx, *ticket.PolicyID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.MapError(err)
		}
	}
	return ticket, policy, nil
}

func (s *TicketService) loadVisible(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, *domain.ComplaintPolicy, error) {
	ticket, policy, err := s.loadLive(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if err := authorizeView(actor, ticket, policy); err != nil {
		return nil, nil, err
	}
	return ticket, policy, nil
}

// validateClassification checks that every provided reference ID exists.
func (s *TicketService) validateClassification(ctx context.Context, complaintID, channelID, terminalID *int64) error {
	if complaintID != nil {
		if _, err := s.references.GetComplaint(ctx, *complaintID); err != nil {
			return referenceError(err, "complaint_id")
		}
	}
	if channelID != nil {
		if _, err := s.references.GetChannel(ctx, *channelID); err != nil {
			return referenceError(err, "issue_channel_id")
		}
	}
	if terminalID != nil {
		if _, err := s.references.GetTerminal(ctx, *terminalID); err != nil {
			return referenceError(err, "terminal_id")
		}
	}
	return nil
}

// resolvePriority validates the requested priority or falls back to the configured default code.
func (s *TicketService) resolvePriority(ctx context.Context, priorityID *int64) (int64, error) {
	if priorityID != nil {
		if _, err := s.references.GetPriority(ctx, *priorityID); err != nil {
			return 0, referenceError(err, "priority_id")
		}
		return *priorityID, nil
	}
	priority, err := s.references.GetPriorityByCode(ctx, s.cfg.DefaultPriorityCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.NewValidationError("priority_id is required", map[string]any{"field": "priority_id"})
		}
		return 0, apperrors.MapError(err)
	}
	return priority.ID, nil
}

func (s *TicketService) slaDuration(policy *domain.ComplaintPolicy) time.Duration {
	if policy != nil && policy.SLADays > 0 {
		return policy.SLADuration()
	}
	return time.Duration(s.cfg.DefaultSLADays) * 24 * time.Hour
}

func (s *TicketService) details(ticket *domain.Ticket, policy *domain.ComplaintPolicy) *TicketDetails {
	now := s.nowFn().UTC()
	info := SLAInfo{
		PolicyID:       ticket.PolicyID,
		SLADays:        s.cfg.DefaultSLADays,
		CommittedDueAt: ticket.CommittedDueAt,
		IsOverdue:      ticket.IsOverdue(now),
	}
	if policy != nil {
		info.SLADays = policy.SLADays
		info.UICID = policy.UICID
	}
	if ticket.ClosedTime == nil {
		info.HoursRemaining = roundHours(ticket.CommittedDueAt.Sub(now))
	}
	return &TicketDetails{Ticket: ticket, Policy: policy, SLA: info}
}

func (s *TicketService) appendNote(ticket *domain.Ticket, actor domain.Actor, note *string, now time.Time) {
	if note == nil {
		return
	}
	ticket.DivisionNotes = append(ticket.DivisionNotes, newDivisionNote(actor, *note, now))
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.nowFn().UTC()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func newDivisionNote(actor domain.Actor, note string, now time.Time) domain.DivisionNote {
	return domain.DivisionNote{EmployeeID: actor.ID, DivisionID: actor.DivisionID, Note: note, CreatedAt: now}
}

func intakeSourceOf(actor domain.Actor) domain.IntakeSource {
	if actor.IsEmployee() {
		return domain.IntakeSourceEmployee
	}
	return domain.IntakeSourceCustomer
}

// commandToValidation converts a domain.CommandError into a 400.
func commandToValidation(err error) error {
	var cmdErr *domain.CommandError
	if errors.As(err, &cmdErr) {
		var details map[string]any
		if len(cmdErr.Fields) > 0 {
			details = map[string]any{"fields": cmdErr.Fields}
		}
		return apperrors.NewValidationError(cmdErr.Message, details)
	}
	return apperrors.MapError(err)
}

// referenceError turns a missing reference row into a 400 on field.
func referenceError(err error, field string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewValidationError(fmt.Sprintf("unknown %s", field), map[string]any{"field": field})
	}
	return apperrors.MapError(err)
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func roundHours(d time.Duration) float64 {
	return float64(int64(d.Hours()*100)) / 100
}
