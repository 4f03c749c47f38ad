package handler

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	ws "github.com/appiumctl/api/internal/websocket"
)

// Handlers groups everything mounted by Register
type Handlers struct {
	Jobs      *JobHandler
	Devices   *DeviceHandler
	Models    *ModelHandler
	Dashboard *DashboardHandler
}

// Register mounts the health check, the REST API and the live job streams.
// createLimit guards job creation and may be nil.
func Register(app *fiber.App, h *Handlers, hub *ws.Hub, createLimit fiber.Handler) {
	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	api.Get("/catalog", h.Dashboard.Catalog)
	api.Get("/stats", h.Dashboard.Stats)

	// Model routes
	api.Get("/models", h.Models.List)
	api.Get("/models/:modelId", h.Models.Get)

	// Device routes
	devices := api.Group("/devices")
	devices.Get("/", h.Devices.List)
	devices.Post("/", h.Devices.Create)
	devices.Put("/:deviceId", h.Devices.Update)
	devices.Delete("/:deviceId", h.Devices.Delete)

	// Job routes
	jobs := api.Group("/jobs")
	create := []fiber.Handler{h.Jobs.Create}
	if createLimit != nil {
		create = append([]fiber.Handler{createLimit}, create...)
	}
	jobs.Post("/", create...)
	jobs.Get("/", h.Jobs.List)
	jobs.Get("/:jobId", h.Jobs.Get)
	jobs.Get("/:jobId/logs", h.Jobs.Logs)
	jobs.Post("/:jobId/play", h.Jobs.Play)
	jobs.Post("/:jobId/pause", h.Jobs.Pause)
	jobs.Post("/:jobId/stop", h.Jobs.Stop)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/jobs", websocket.New(func(c *websocket.Conn) {
		hub.HandleConnection(c, ws.AllJobs)
	}))

	app.Get("/ws/jobs/:jobId", websocket.New(func(c *websocket.Conn) {
		hub.HandleConnection(c, c.Params("jobId"))
	}))
}
