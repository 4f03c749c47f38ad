package model

import "github.com/appiumctl/api/internal/ledger"

// WebSocket message types
const (
	WSMessageTypeJob   = "job"
	WSMessageTypeLog   = "log"
	WSMessageTypeError = "error"
	WSMessageTypePing  = "ping"
	WSMessageTypePong  = "pong"
)

// WSMessage represents a generic WebSocket message
type WSMessage struct {
	Type string `json:"type"`
}

// WSJobMessage carries the job state after a transition
type WSJobMessage struct {
	Type  string       `json:"type"`
	Event JobEventType `json:"event"`
	JobID string       `json:"jobId"`
	Job   Job          `json:"job"`
}

// WSLogMessage carries a freshly appended log entry
type WSLogMessage struct {
	Type  string       `json:"type"`
	JobID string       `json:"jobId"`
	Entry ledger.Entry `json:"entry"`
}

// WSErrorMessage represents an error
type WSErrorMessage struct {
	Type  string  `json:"type"`
	JobID string  `json:"jobId,omitempty"`
	Error WSError `json:"error"`
}

// WSError represents error details
type WSError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
