package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/fleet-service/internal/api/dto"
	"github.com/spec-kit/fleet-service/internal/auth"
	"github.com/spec-kit/fleet-service/internal/domain"
	"github.com/spec-kit/fleet-service/internal/service"
)

// InspectionsHandler exposes vehicle checklist endpoints.
type InspectionsHandler struct {
	inspections *service.InspectionService
}

// NewInspectionsHandler constructs the handler.
func NewInspectionsHandler(inspections *service.InspectionService) *InspectionsHandler {
	return &InspectionsHandler{inspections: inspections}
}

// Create handles POST /inspections.
func (h *InspectionsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	var req dto.InspectionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	inspection := &domain.Inspection{
		VehicleID:   req.VehicleID,
		InspectorID: principal.User.ID,
		Items:       req.Items,
		Result:      domain.InspectionResult(req.Result),
		Notes:       req.Notes,
	}
	if err := h.inspections.Create(c.Context(), inspection); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": inspection})
}

// ListByVehicle handles GET /vehicles/:id/inspections.
func (h *InspectionsHandler) ListByVehicle(c *fiber.Ctx) error {
	vehicleID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	inspections, err := h.inspections.ListByVehicle(c.Context(), vehicleID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": inspections})
}
