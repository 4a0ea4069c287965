package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/fleet-service/internal/api/dto"
	"github.com/spec-kit/fleet-service/internal/auth"
	"github.com/spec-kit/fleet-service/internal/service"
)

// TripsHandler exposes trip assignment endpoints.
type TripsHandler struct {
	trips *service.TripService
}

// NewTripsHandler constructs the handler.
func NewTripsHandler(trips *service.TripService) *TripsHandler {
	return &TripsHandler{trips: trips}
}

// Assign handles POST /trips.
func (h *TripsHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	var req dto.TripAssignRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.DriverID <= 0 || req.VehicleID <= 0 || req.ShipmentID <= 0 {
		return fiber.NewError(http.StatusBadRequest, "driver_id, vehicle_id, shipment_id required")
	}

	trip, err := h.trips.Assign(c.Context(), req.DriverID, req.VehicleID, req.ShipmentID, principal.User.ID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": trip})
}

// Start handles POST /trips/:id/start.
func (h *TripsHandler) Start(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	trip, err := h.trips.Start(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": trip})
}

// Complete handles POST /trips/:id/complete.
func (h *TripsHandler) Complete(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	trip, err := h.trips.Complete(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": trip})
}

// Mine handles GET /trips/mine.
func (h *TripsHandler) Mine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}
	trips, err := h.trips.ListByDriver(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": trips})
}
