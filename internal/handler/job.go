package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/appiumctl/api/internal/engine"
	"github.com/appiumctl/api/internal/model"
	"github.com/appiumctl/api/internal/service"
	"github.com/appiumctl/api/pkg/response"
)

type JobHandler struct {
	service   *service.JobService
	validator *validator.Validate
}

func NewJobHandler(svc *service.JobService, v *validator.Validate) *JobHandler {
	return &JobHandler{
		service:   svc,
		validator: v,
	}
}

// Create handles POST /api/jobs
func (h *JobHandler) Create(c *fiber.Ctx) error {
	var req model.CreateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	job, err := h.service.Create(c.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrModelNotFound):
			return response.ValidationError(c, "Unknown model", fiber.Map{"modelId": req.ModelID})
		case errors.Is(err, service.ErrDeviceNotFound):
			return response.ValidationError(c, "Unknown device", fiber.Map{"deviceId": req.Profile.DeviceID})
		case errors.Is(err, engine.ErrNoContext):
			return response.ValidationError(c, "City and state are required", nil)
		}
		return response.ServiceError(c, err.Error())
	}

	return response.Created(c, job)
}

// List handles GET /api/jobs
func (h *JobHandler) List(c *fiber.Ctx) error {
	return response.OK(c, h.service.List(c.Context()))
}

// Get handles GET /api/jobs/:jobId
func (h *JobHandler) Get(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	job, err := h.service.Get(c.Context(), jobID)
	if err != nil {
		return jobError(c, err)
	}

	return response.OK(c, job)
}

// Logs handles GET /api/jobs/:jobId/logs?step=<label>
func (h *JobHandler) Logs(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.Logs(c.Context(), jobID, c.Query("step"))
	if err != nil {
		if errors.Is(err, service.ErrUnknownStep) {
			return response.ValidationError(c, "Unknown step", fiber.Map{"step": c.Query("step")})
		}
		return jobError(c, err)
	}

	return response.OK(c, result)
}

// Play handles POST /api/jobs/:jobId/play
func (h *JobHandler) Play(c *fiber.Ctx) error {
	return h.control(c, h.service.Play)
}

// Pause handles POST /api/jobs/:jobId/pause
func (h *JobHandler) Pause(c *fiber.Ctx) error {
	return h.control(c, h.service.Pause)
}

// Stop handles POST /api/jobs/:jobId/stop
func (h *JobHandler) Stop(c *fiber.Ctx) error {
	return h.control(c, h.service.Stop)
}

func (h *JobHandler) control(c *fiber.Ctx, op func(context.Context, string) (*model.Job, error)) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	job, err := op(c.Context(), jobID)
	if err != nil {
		return jobError(c, err)
	}

	return response.OK(c, job)
}

func jobError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, engine.ErrJobNotFound):
		return response.NotFound(c, "Job not found")
	case errors.Is(err, engine.ErrClosed):
		return response.Error(c, fiber.StatusServiceUnavailable, response.CodeServiceError, "Engine is shutting down", nil)
	}
	return response.ServiceError(c, err.Error())
}
