package model

import (
	"time"

	"github.com/appiumctl/api/internal/ledger"
)

// Job is the full state of one simulated account-creation job.
type Job struct {
	ID            string        `json:"id"`
	ModelID       string        `json:"modelId"`
	Model         string        `json:"model"`
	Status        Status        `json:"status"`
	Playback      Playback      `json:"playback"`
	ProgressIndex int           `json:"progressIndex"`
	Steps         []StepState   `json:"steps"`
	Logs          ledger.Ledger `json:"logs"`
	Snapshot      Profile       `json:"snapshot"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// StepState is a catalog step's progress within one job.
type StepState struct {
	Label  string `json:"label"`
	Status Status `json:"status"`
}

// Clone returns a deep copy safe to hand to readers.
func (j *Job) Clone() Job {
	out := *j
	out.Steps = make([]StepState, len(j.Steps))
	copy(out.Steps, j.Steps)
	out.Logs = j.Logs.Clone()
	return out
}

// CurrentStep returns the step in progress, or the last step when none is.
func (j *Job) CurrentStep() (StepState, bool) {
	if len(j.Steps) == 0 {
		return StepState{}, false
	}
	for _, s := range j.Steps {
		if s.Status == StatusInProgress {
			return s, true
		}
	}
	return j.Steps[len(j.Steps)-1], true
}

// Summary returns the list view of the job.
func (j *Job) Summary() JobSummary {
	s := JobSummary{
		ID:            j.ID,
		Model:         j.Model,
		Status:        j.Status,
		Playback:      j.Playback,
		ProgressIndex: j.ProgressIndex,
		StepCount:     len(j.Steps),
		DeviceID:      j.Snapshot.DeviceID,
		CreatedAt:     j.CreatedAt,
	}
	if step, ok := j.CurrentStep(); ok {
		s.CurrentStep = step.Label
	}
	return s
}

// JobSummary is a compact row for job listings
type JobSummary struct {
	ID            string    `json:"id"`
	Model         string    `json:"model"`
	Status        Status    `json:"status"`
	Playback      Playback  `json:"playback"`
	ProgressIndex int       `json:"progressIndex"`
	StepCount     int       `json:"stepCount"`
	CurrentStep   string    `json:"currentStep,omitempty"`
	DeviceID      string    `json:"deviceId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// JobEvent is emitted for every state transition of a job.
type JobEvent struct {
	Type  JobEventType  `json:"type"`
	Job   Job           `json:"job"`
	Entry *ledger.Entry `json:"entry,omitempty"`
}
