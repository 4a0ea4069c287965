package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/fleet-service/internal/api/dto"
	"github.com/spec-kit/fleet-service/internal/domain"
	"github.com/spec-kit/fleet-service/internal/service"
)

// VehiclesHandler exposes fleet unit endpoints.
type VehiclesHandler struct {
	vehicles *service.VehicleService
}

// NewVehiclesHandler constructs the handler.
func NewVehiclesHandler(vehicles *service.VehicleService) *VehiclesHandler {
	return &VehiclesHandler{vehicles: vehicles}
}

// Create handles POST /vehicles.
func (h *VehiclesHandler) Create(c *fiber.Ctx) error {
	var req dto.VehicleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	vehicle := &domain.Vehicle{
		Plate:      req.Plate,
		Model:      req.Model,
		Year:       req.Year,
		Status:     domain.VehicleStatus(req.Status),
		OdometerKM: req.OdometerKM,
	}
	if err := h.vehicles.Create(c.Context(), vehicle); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": vehicle})
}

// Update handles PUT /vehicles/:id.
func (h *VehiclesHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req dto.VehicleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	vehicle := &domain.Vehicle{
		ID:         id,
		Plate:      req.Plate,
		Model:      req.Model,
		Year:       req.Year,
		Status:     domain.VehicleStatus(req.Status),
		OdometerKM: req.OdometerKM,
	}
	if err := h.vehicles.Update(c.Context(), vehicle); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": vehicle})
}

// Get handles GET /vehicles/:id.
func (h *VehiclesHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	vehicle, err := h.vehicles.Get(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": vehicle})
}

// List handles GET /vehicles.
func (h *VehiclesHandler) List(c *fiber.Ctx) error {
	vehicles, err := h.vehicles.List(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": vehicles})
}

// pathID parses a numeric path parameter.
func pathID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}
