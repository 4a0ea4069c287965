package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/fleet-service/internal/api/dto"
	"github.com/spec-kit/fleet-service/internal/auth"
	"github.com/spec-kit/fleet-service/internal/domain"
	"github.com/spec-kit/fleet-service/internal/service"
)

// ShipmentsHandler exposes cargo order endpoints.
type ShipmentsHandler struct {
	shipments *service.ShipmentService
}

// NewShipmentsHandler constructs the handler.
func NewShipmentsHandler(shipments *service.ShipmentService) *ShipmentsHandler {
	return &ShipmentsHandler{shipments: shipments}
}

// Create handles POST /shipments.
func (h *ShipmentsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	var req dto.ShipmentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	shipment := &domain.Shipment{
		Origin:      req.Origin,
		Destination: req.Destination,
		WeightKG:    req.WeightKG,
		CreatedBy:   principal.User.ID,
	}
	if err := h.shipments.Create(c.Context(), shipment); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": shipment})
}

// ChangeStatus handles POST /shipments/:id/status.
func (h *ShipmentsHandler) ChangeStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req dto.ShipmentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	shipment, err := h.shipments.ChangeStatus(c.Context(), id, domain.ShipmentStatus(req.Status), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": shipment})
}

// Get handles GET /shipments/:id.
func (h *ShipmentsHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	shipment, err := h.shipments.Get(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": shipment})
}

// List handles GET /shipments.
func (h *ShipmentsHandler) List(c *fiber.Ctx) error {
	var status *domain.ShipmentStatus
	if raw := c.Query("status"); raw != "" {
		s := domain.ShipmentStatus(raw)
		status = &s
	}
	shipments, err := h.shipments.List(c.Context(), status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": shipments})
}
