package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/appiumctl/api/internal/service"
	"github.com/appiumctl/api/pkg/response"
)

type ModelHandler struct {
	service *service.ModelService
}

func NewModelHandler(svc *service.ModelService) *ModelHandler {
	return &ModelHandler{service: svc}
}

// List handles GET /api/models
func (h *ModelHandler) List(c *fiber.Ctx) error {
	return response.OK(c, fiber.Map{"models": h.service.List(c.Context())})
}

// Get handles GET /api/models/:modelId
func (h *ModelHandler) Get(c *fiber.Ctx) error {
	result, err := h.service.Get(c.Context(), c.Params("modelId"))
	if err != nil {
		if errors.Is(err, service.ErrModelNotFound) {
			return response.NotFound(c, "Model not found")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, result)
}
