package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/service"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// TicketsHandler manages ticket endpoints for customers and employees.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /v1/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	details, err := h.service.Create(c.UserContext(), actor, service.CreateTicketInput{
		Action:          req.Action,
		CustomerID:      req.CustomerID,
		ComplaintID:     req.ComplaintID,
		IssueChannelID:  req.IssueChannelID,
		PriorityID:      req.PriorityID,
		TerminalID:      req.TerminalID,
		Description:     req.Description,
		Record:          req.Record,
		Solution:        req.Solution,
		DivisionNote:    req.DivisionNote,
		TransactionDate: req.TransactionDate,
		Amount:          req.Amount,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(details, actor)})
}

// UpdateTicket PATCH /v1/tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	details, err := h.service.Update(c.UserContext(), actor, c.Params("id"), service.UpdateTicketInput{
		Action: req.Action,
		Patch: domain.TicketPatch{
			ComplaintID:    req.ComplaintID,
			IssueChannelID: req.IssueChannelID,
			PriorityID:     req.PriorityID,
			TerminalID:     req.TerminalID,
			Record:         req.Record,
			Reason:         req.Reason,
			Solution:       req.Solution,
			DivisionNote:   req.DivisionNote,
		},
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(details, actor)})
}

// DeleteTicket DELETE /v1/tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": c.Params("id"), "deleted": true}})
}

// ListTickets GET /v1/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	input, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.List(c.UserContext(), actor, input)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i], actor))
	}
	return c.JSON(fiber.Map{"data": items, "meta": fiber.Map{"limit": input.Limit, "offset": input.Offset}})
}

// GetTicket GET /v1/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	details, err := h.service.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(details, actor)})
}

// ListActivities GET /v1/tickets/:id/activities.
func (h *TicketsHandler) ListActivities(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	activities, err := h.service.ListActivities(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.ActivityResponse, 0, len(activities))
	for i := range activities {
		items = append(items, activityResponse(&activities[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AddActivity POST /v1/tickets/:id/activities.
func (h *TicketsHandler) AddActivity(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateActivityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	req.ActivityType = strings.ToUpper(strings.TrimSpace(req.ActivityType))
	if err := dto.Validate(req); err != nil {
		return err
	}
	activity, err := h.service.AddActivity(c.UserContext(), actor, c.Params("id"), service.AddActivityInput{
		Type:      domain.ActivityType(req.ActivityType),
		Content:   req.Content,
		FileNames: req.FileNames,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": activityResponse(activity)})
}

// StatusHistory GET /v1/tickets/:id/status-history.
func (h *TicketsHandler) StatusHistory(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	entries, err := h.service.StatusHistory(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.StatusHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, statusHistoryResponse(entry, actor))
	}
	return c.JSON(fiber.Map{"data": items})
}

// EmailHistory GET /v1/tickets/:id/email-history.
func (h *TicketsHandler) EmailHistory(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	entries, err := h.service.EmailHistory(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.EmailHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.EmailHistoryResponse{
			ActivityID:     entry.ActivityID,
			SenderType:     entry.SenderType,
			SenderID:       entry.SenderID,
			Content:        entry.Content,
			RecipientCount: entry.RecipientCount,
			SentAt:         entry.SentAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func requireActor(c *fiber.Ctx) (domain.Actor, error) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return domain.Actor{}, apperrors.NewUnauthorized("authentication required")
	}
	return actor, nil
}

func parseTicketQuery(c *fiber.Ctx) (service.ListTicketsInput, error) {
	input := service.ListTicketsInput{}
	for _, part := range splitCSV(c.Query("customer_status")) {
		input.CustomerStatuses = append(input.CustomerStatuses, domain.CustomerStatus(strings.ToUpper(part)))
	}
	for _, part := range splitCSV(c.Query("employee_status")) {
		input.EmployeeStatuses = append(input.EmployeeStatuses, domain.EmployeeStatus(strings.ToUpper(part)))
	}
	var err error
	if input.ComplaintID, err = parseOptionalID(c.Query("complaint_id"), "complaint_id"); err != nil {
		return input, err
	}
	if input.PriorityID, err = parseOptionalID(c.Query("priority_id"), "priority_id"); err != nil {
		return input, err
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		input.SearchTerm = &search
	}
	input.CreatedFrom = parseTime(c.Query("created_from"))
	input.CreatedTo = parseTime(c.Query("created_to"))

	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	input.Offset = (page - 1) * pageSize
	input.Limit = pageSize
	return input, nil
}

func splitCSV(val string) []string {
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseOptionalID(val, field string) (*int64, error) {
	if val == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil || id <= 0 {
		return nil, apperrors.NewValidationError("invalid "+field, map[string]any{"field": field})
	}
	return &id, nil
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
