package service

import (
	"context"
	"time"

	"github.com/appiumctl/api/internal/engine"
	"github.com/appiumctl/api/internal/model"
)

// StatsService aggregates the dashboard counters
type StatsService struct {
	registry *engine.Registry
	devices  *DeviceService
	now      func() time.Time
}

func NewStatsService(reg *engine.Registry, devices *DeviceService) *StatsService {
	return &StatsService{registry: reg, devices: devices, now: time.Now}
}

// Get returns the current device and job counts
func (s *StatsService) Get(ctx context.Context) *model.StatsResponse {
	online, total := s.devices.Counts(ctx)
	return &model.StatsResponse{
		DevicesOnline: online,
		DevicesTotal:  total,
		ActiveJobs:    s.registry.CountByStatus(model.StatusInProgress),
		TotalJobs:     s.registry.Len(),
		GeneratedAt:   s.now(),
	}
}
