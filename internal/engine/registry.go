package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/appiumctl/api/internal/catalog"
	"github.com/appiumctl/api/internal/ledger"
	"github.com/appiumctl/api/internal/model"
)

// ErrJobNotFound is returned for ids the registry has never issued.
var ErrJobNotFound = errors.New("job not found")

// createdLayout formats the creation time in the first ledger entry.
const createdLayout = "15:04"

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithIDGenerator overrides how job ids are allocated.
func WithIDGenerator(fn func() string) RegistryOption {
	return func(r *Registry) { r.newID = fn }
}

// WithNow overrides the wall clock used for creation timestamps.
func WithNow(fn func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = fn }
}

// Registry owns every job record for the life of the process.
// Records are created here and mutated only through apply; readers always
// get copies.
type Registry struct {
	mu      sync.RWMutex
	catalog *catalog.Catalog
	jobs    map[string]*model.Job
	order   []string // creation order, oldest first
	newID   func() string
	now     func() time.Time
}

func NewRegistry(cat *catalog.Catalog, opts ...RegistryOption) *Registry {
	r := &Registry{
		catalog: cat,
		jobs:    make(map[string]*model.Job),
		newID:   func() string { return "job-" + uuid.New().String() },
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Catalog returns the step catalog every job is built from.
func (r *Registry) Catalog() *catalog.Catalog { return r.catalog }

// Create builds a fresh job in (in-progress, play) with every step pending
// and a single creation entry, and returns a copy of it.
func (r *Registry) Create(modelID, modelName string, snapshot model.Profile) model.Job {
	now := r.now()
	job := &model.Job{
		ModelID:       modelID,
		Model:         modelName,
		Status:        model.StatusInProgress,
		Playback:      model.PlaybackPlay,
		ProgressIndex: -1,
		Steps:         pendingSteps(r.catalog),
		Snapshot:      snapshot,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	job.Logs.Append("Job created at "+now.Format(createdLayout), ledger.SystemLabel, now)

	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.newID()
	for r.jobs[id] != nil {
		id = r.newID()
	}
	job.ID = id
	r.jobs[id] = job
	r.order = append(r.order, id)
	return job.Clone()
}

// Get returns a copy of the job with the given id.
func (r *Registry) Get(id string) (model.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return model.Job{}, ErrJobNotFound
	}
	return job.Clone(), nil
}

// List returns copies of all jobs, most recently created first.
func (r *Registry) List() []model.Job {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Job, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		out = append(out, r.jobs[r.order[i]].Clone())
	}
	return out
}

// Len returns the number of jobs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// CountByStatus returns how many jobs currently have the given status.
func (r *Registry) CountByStatus(status model.Status) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, job := range r.jobs {
		if job.Status == status {
			n++
		}
	}
	return n
}

// apply mutates the live record under the write lock and returns a copy.
func (r *Registry) apply(id string, fn func(j *model.Job)) (model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return model.Job{}, ErrJobNotFound
	}
	fn(job)
	job.UpdatedAt = r.now()
	return job.Clone(), nil
}

func pendingSteps(cat *catalog.Catalog) []model.StepState {
	steps := make([]model.StepState, cat.Len())
	for i, label := range cat.Labels() {
		steps[i] = model.StepState{Label: label, Status: model.StatusPending}
	}
	return steps
}
