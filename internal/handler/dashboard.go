package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/appiumctl/api/internal/catalog"
	"github.com/appiumctl/api/internal/service"
	"github.com/appiumctl/api/pkg/response"
)

// DashboardHandler serves the read-only catalog and counters
type DashboardHandler struct {
	catalog *catalog.Catalog
	stats   *service.StatsService
}

func NewDashboardHandler(cat *catalog.Catalog, stats *service.StatsService) *DashboardHandler {
	return &DashboardHandler{catalog: cat, stats: stats}
}

// Catalog handles GET /api/catalog
func (h *DashboardHandler) Catalog(c *fiber.Ctx) error {
	return response.OK(c, fiber.Map{"steps": h.catalog})
}

// Stats handles GET /api/stats
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	return response.OK(c, h.stats.Get(c.Context()))
}
