package model

import (
	"time"

	"github.com/appiumctl/api/internal/ledger"
)

// CreateJobRequest represents the request to launch a job
type CreateJobRequest struct {
	ModelID string  `json:"modelId" validate:"required"`
	Profile Profile `json:"profile" validate:"required"`
}

// JobListResponse represents the job listing, most recent first
type JobListResponse struct {
	Jobs  []JobSummary `json:"jobs"`
	Total int          `json:"total"`
}

// JobLogsResponse represents a job's log ledger, optionally narrowed to one step
type JobLogsResponse struct {
	JobID string         `json:"jobId"`
	Step  string         `json:"step,omitempty"`
	Logs  []ledger.Entry `json:"logs"`
}

// ModelResponse represents a model with resolved photo URLs
type ModelResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	PhotoURLs []string `json:"photoUrls"`
}

// StatsResponse represents the dashboard counters
type StatsResponse struct {
	DevicesOnline int       `json:"devicesOnline"`
	DevicesTotal  int       `json:"devicesTotal"`
	ActiveJobs    int       `json:"activeJobs"`
	TotalJobs     int       `json:"totalJobs"`
	GeneratedAt   time.Time `json:"generatedAt"`
}
