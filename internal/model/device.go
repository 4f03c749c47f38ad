package model

// Device is a phone in the device table. Jobs only reference devices by id.
type Device struct {
	ID         string       `json:"id"`
	Status     DeviceStatus `json:"status"`
	CurrentJob string       `json:"currentJob"`
}

// CreateDeviceRequest represents the request to add a device
type CreateDeviceRequest struct {
	ID         string       `json:"id" validate:"required,max=64"`
	Status     DeviceStatus `json:"status" validate:"omitempty,oneof=online offline"`
	CurrentJob string       `json:"currentJob" validate:"max=64"`
}

// UpdateDeviceRequest represents a partial device update
type UpdateDeviceRequest struct {
	Status     *DeviceStatus `json:"status" validate:"omitempty,oneof=online offline"`
	CurrentJob *string       `json:"currentJob" validate:"omitempty,max=64"`
}
