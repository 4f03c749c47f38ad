package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/appiumctl/api/internal/model"
)

var (
	ErrDeviceNotFound = errors.New("device not found")
	ErrDeviceExists   = errors.New("device already exists")
)

// DeviceService keeps the in-memory device table in insertion order
type DeviceService struct {
	mu      sync.RWMutex
	devices []model.Device
}

func NewDeviceService(devices ...model.Device) *DeviceService {
	s := &DeviceService{}
	s.devices = append(s.devices, devices...)
	return s
}

// DefaultDevices returns the device table a fresh server starts with
func DefaultDevices() []model.Device {
	return []model.Device{
		{ID: "device-201", Status: model.DeviceOnline, CurrentJob: model.DeviceIdle},
		{ID: "device-114", Status: model.DeviceOffline, CurrentJob: model.DeviceIdle},
		{ID: "device-305", Status: model.DeviceOnline, CurrentJob: "job-1024"},
	}
}

// List returns a copy of the device table
func (s *DeviceService) List(ctx context.Context) []model.Device {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Device, len(s.devices))
	copy(out, s.devices)
	return out
}

// Get returns the device with the given id
func (s *DeviceService) Get(ctx context.Context, deviceID string) (*model.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(deviceID)
	if i < 0 {
		return nil, ErrDeviceNotFound
	}
	d := s.devices[i]
	return &d, nil
}

// Add appends a device, defaulting to online and idle
func (s *DeviceService) Add(ctx context.Context, req *model.CreateDeviceRequest) (*model.Device, error) {
	d := model.Device{
		ID:         req.ID,
		Status:     req.Status,
		CurrentJob: req.CurrentJob,
	}
	if d.Status == "" {
		d.Status = model.DeviceOnline
	}
	if d.CurrentJob == "" {
		d.CurrentJob = model.DeviceIdle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(d.ID) >= 0 {
		return nil, fmt.Errorf("add %s: %w", d.ID, ErrDeviceExists)
	}
	s.devices = append(s.devices, d)
	return &d, nil
}

// Update changes the status and/or current job of a device
func (s *DeviceService) Update(ctx context.Context, deviceID string, req *model.UpdateDeviceRequest) (*model.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(deviceID)
	if i < 0 {
		return nil, fmt.Errorf("update %s: %w", deviceID, ErrDeviceNotFound)
	}
	if req.Status != nil {
		s.devices[i].Status = *req.Status
	}
	if req.CurrentJob != nil {
		s.devices[i].CurrentJob = *req.CurrentJob
		if s.devices[i].CurrentJob == "" {
			s.devices[i].CurrentJob = model.DeviceIdle
		}
	}
	d := s.devices[i]
	return &d, nil
}

// Remove deletes a device from the table
func (s *DeviceService) Remove(ctx context.Context, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(deviceID)
	if i < 0 {
		return fmt.Errorf("remove %s: %w", deviceID, ErrDeviceNotFound)
	}
	s.devices = append(s.devices[:i], s.devices[i+1:]...)
	return nil
}

// Counts returns the number of online devices and the table size
func (s *DeviceService) Counts(ctx context.Context) (online, total int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, d := range s.devices {
		if d.Status == model.DeviceOnline {
			online++
		}
	}
	return online, len(s.devices)
}

func (s *DeviceService) indexOf(deviceID string) int {
	for i, d := range s.devices {
		if d.ID == deviceID {
			return i
		}
	}
	return -1
}
