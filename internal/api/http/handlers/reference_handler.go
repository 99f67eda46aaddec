package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/service"
)

// ReferenceHandler serves lookup tables.
type ReferenceHandler struct {
	service *service.ReferenceService
}

// NewReferenceHandler constructs handler.
func NewReferenceHandler(referenceService *service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{service: referenceService}
}

func (h *ReferenceHandler) Channels(c *fiber.Ctx) error {
	items, err := h.service.Channels(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.ReferenceItem, 0, len(items))
	for _, item := range items {
		out = append(out, dto.ReferenceItem{ID: item.ID, Code: item.Code, Name: item.Name})
	}
	return c.JSON(fiber.Map{"data": out})
}

func (h *ReferenceHandler) Complaints(c *fiber.Ctx) error {
	items, err := h.service.Complaints(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.ReferenceItem, 0, len(items))
	for _, item := range items {
		out = append(out, dto.ReferenceItem{ID: item.ID, Code: item.Code, Name: item.Name})
	}
	return c.JSON(fiber.Map{"data": out})
}

func (h *ReferenceHandler) Priorities(c *fiber.Ctx) error {
	items, err := h.service.Priorities(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.ReferenceItem, 0, len(items))
	for _, item := range items {
		out = append(out, dto.ReferenceItem{ID: item.ID, Code: item.Code, Name: item.Name})
	}
	return c.JSON(fiber.Map{"data": out})
}

func (h *ReferenceHandler) Sources(c *fiber.Ctx) error {
	items, err := h.service.Sources(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.ReferenceItem, 0, len(items))
	for _, item := range items {
		out = append(out, dto.ReferenceItem{ID: item.ID, Code: item.Code, Name: item.Name})
	}
	return c.JSON(fiber.Map{"data": out})
}

func (h *ReferenceHandler) Divisions(c *fiber.Ctx) error {
	items, err := h.service.Divisions(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.DivisionResponse, 0, len(items))
	for _, item := range items {
		out = append(out, dto.DivisionResponse{ID: item.ID, Code: item.Code, Name: item.Name, IsActive: item.IsActive})
	}
	return c.JSON(fiber.Map{"data": out})
}

func (h *ReferenceHandler) Terminals(c *fiber.Ctx) error {
	items, err := h.service.Terminals(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.TerminalResponse, 0, len(items))
	for _, item := range items {
		out = append(out, dto.TerminalResponse{ID: item.ID, Code: item.Code, Location: item.Location})
	}
	return c.JSON(fiber.Map{"data": out})
}

// Policies GET /v1/reference/policies?complaint_id=.
func (h *ReferenceHandler) Policies(c *fiber.Ctx) error {
	complaintID, err := parseOptionalID(c.Query("complaint_id"), "complaint_id")
	if err != nil {
		return err
	}
	items, err := h.service.Policies(c.UserContext(), complaintID)
	if err != nil {
		return err
	}
	out := make([]dto.PolicyResponse, 0, len(items))
	for _, p := range items {
		out = append(out, dto.PolicyResponse{
			ID:          p.ID,
			ComplaintID: p.ComplaintID,
			ChannelID:   p.ChannelID,
			SLADays:     p.SLADays,
			UICID:       p.UICID,
			Description: p.Description,
			CreatedAt:   p.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": out})
}
