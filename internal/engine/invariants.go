package engine

import (
	"fmt"

	"github.com/appiumctl/api/internal/model"
)

// CheckInvariants reports the first way job violates the record invariants
// for a catalog of n steps, or nil.
func CheckInvariants(job model.Job, n int) error {
	if len(job.Steps) != n {
		return fmt.Errorf("job %s: %d steps, catalog has %d", job.ID, len(job.Steps), n)
	}
	if job.ProgressIndex < -1 || job.ProgressIndex > n-1 {
		return fmt.Errorf("job %s: progress index %d out of range", job.ID, job.ProgressIndex)
	}

	for i, step := range job.Steps {
		want := model.StatusPending
		switch {
		case job.Status == model.StatusDone:
			want = model.StatusDone
		case i < job.ProgressIndex:
			want = model.StatusDone
		case i == job.ProgressIndex:
			want = model.StatusInProgress
		}
		if step.Status != want {
			return fmt.Errorf("job %s: step %d (%s) is %s, want %s", job.ID, i, step.Label, step.Status, want)
		}
	}
	return nil
}
