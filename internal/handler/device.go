package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/appiumctl/api/internal/model"
	"github.com/appiumctl/api/internal/service"
	"github.com/appiumctl/api/pkg/response"
)

type DeviceHandler struct {
	service   *service.DeviceService
	validator *validator.Validate
}

func NewDeviceHandler(svc *service.DeviceService, v *validator.Validate) *DeviceHandler {
	return &DeviceHandler{
		service:   svc,
		validator: v,
	}
}

// List handles GET /api/devices
func (h *DeviceHandler) List(c *fiber.Ctx) error {
	return response.OK(c, fiber.Map{"devices": h.service.List(c.Context())})
}

// Create handles POST /api/devices
func (h *DeviceHandler) Create(c *fiber.Ctx) error {
	var req model.CreateDeviceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	device, err := h.service.Add(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrDeviceExists) {
			return response.Conflict(c, "Device already exists")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.Created(c, device)
}

// Update handles PUT /api/devices/:deviceId
func (h *DeviceHandler) Update(c *fiber.Ctx) error {
	deviceID := c.Params("deviceId")
	if deviceID == "" {
		return response.ValidationError(c, "Device ID is required", nil)
	}

	var req model.UpdateDeviceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	device, err := h.service.Update(c.Context(), deviceID, &req)
	if err != nil {
		if errors.Is(err, service.ErrDeviceNotFound) {
			return response.NotFound(c, "Device not found")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, device)
}

// Delete handles DELETE /api/devices/:deviceId
func (h *DeviceHandler) Delete(c *fiber.Ctx) error {
	deviceID := c.Params("deviceId")
	if deviceID == "" {
		return response.ValidationError(c, "Device ID is required", nil)
	}

	if err := h.service.Remove(c.Context(), deviceID); err != nil {
		if errors.Is(err, service.ErrDeviceNotFound) {
			return response.NotFound(c, "Device not found")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.NoContent(c)
}
