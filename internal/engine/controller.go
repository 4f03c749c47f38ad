// Package engine runs the job lifecycle: a registry of job records and the
// playback controller that advances them through the step catalog on a timer.
package engine

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/appiumctl/api/internal/catalog"
	"github.com/appiumctl/api/internal/ledger"
	"github.com/appiumctl/api/internal/logger"
	"github.com/appiumctl/api/internal/model"
	"github.com/appiumctl/api/internal/scheduler"
)

var (
	// ErrClosed is returned by controls issued after Close.
	ErrClosed = errors.New("controller closed")
	// ErrNoContext rejects a launch whose snapshot has no city or state.
	ErrNoContext = errors.New("no location selected")
)

// Log messages for lifecycle transitions.
const (
	MessageComplete  = "Job complete"
	MessageStopped   = "Job stopped"
	MessageRestarted = "Job restarted"
)

// Notifier receives every transition in the order it was applied.
// Notify is called with the controller lock held and must not block.
type Notifier interface {
	Notify(ev model.JobEvent)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ev model.JobEvent)

func (f NotifierFunc) Notify(ev model.JobEvent) { f(ev) }

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier adds a transition subscriber.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifiers = append(c.notifiers, n) }
}

// WithLogger sets the controller's logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// Controller is the playback state machine. It is the only writer of job
// records after creation and exclusively owns the per-job timers.
//
// Every operation, including timer callbacks, runs under one mutex, so the
// transitions of a job are applied in invocation order. A timer callback
// re-validates its token and the job's playback before acting.
type Controller struct {
	mu        sync.Mutex
	registry  *Registry
	catalog   *catalog.Catalog
	timers    *scheduler.Scheduler
	notifiers []Notifier
	log       *logger.Logger
	closed    bool
}

func NewController(reg *Registry, timers *scheduler.Scheduler, opts ...Option) *Controller {
	c := &Controller{
		registry: reg,
		catalog:  reg.Catalog(),
		timers:   timers,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Launch creates a job and starts it. A snapshot without a city or state
// creates nothing and returns ErrNoContext.
func (c *Controller) Launch(modelID, modelName string, snapshot model.Profile) (model.Job, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return model.Job{}, ErrClosed
	}
	if strings.TrimSpace(snapshot.City) == "" || strings.TrimSpace(snapshot.State) == "" {
		return model.Job{}, ErrNoContext
	}
	job := c.registry.Create(modelID, modelName, snapshot)
	entry, _ := job.Logs.Last()
	c.emit(model.JobEventCreated, job, &entry)
	c.log.Info("job created", "job_id", job.ID, "model", modelName, "device_id", snapshot.DeviceID)

	return c.start(job), nil
}

// Start schedules the first step of a freshly created job. It does nothing
// once the job has progressed, left play, or already has a timer pending.
func (c *Controller) Start(id string) (model.Job, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	job, err := c.lookup(id)
	if err != nil {
		return model.Job{}, err
	}
	return c.start(job), nil
}

func (c *Controller) start(job model.Job) model.Job {
	if job.ProgressIndex != -1 || job.Playback != model.PlaybackPlay || c.timers.Pending(job.ID) {
		return job
	}
	c.schedule(job.ID, 0)
	return job
}

// Pause freezes a playing job in place. Paused, stopped and finished jobs
// are left untouched.
func (c *Controller) Pause(id string) (model.Job, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	job, err := c.lookup(id)
	if err != nil {
		return model.Job{}, err
	}
	if job.Playback != model.PlaybackPlay {
		return job, nil
	}

	c.timers.Cancel(id)
	job, err = c.registry.apply(id, func(j *model.Job) {
		j.Playback = model.PlaybackPause
	})
	if err != nil {
		return model.Job{}, err
	}
	c.emit(model.JobEventPaused, job, nil)
	c.log.Debug("job paused", "job_id", id, "progress_index", job.ProgressIndex)
	return job, nil
}

// Stop cancels any pending step and resets the job to the start, keeping
// its log history. Stopping an already stopped job does nothing.
func (c *Controller) Stop(id string) (model.Job, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	job, err := c.lookup(id)
	if err != nil {
		return model.Job{}, err
	}
	if job.Playback == model.PlaybackStop && job.Status == model.StatusPending {
		return job, nil
	}

	c.timers.Cancel(id)
	var entry ledger.Entry
	now := c.now()
	job, err = c.registry.apply(id, func(j *model.Job) {
		resetSteps(j)
		j.Status = model.StatusPending
		j.Playback = model.PlaybackStop
		entry = j.Logs.Append(MessageStopped, ledger.SystemLabel, now)
	})
	if err != nil {
		return model.Job{}, err
	}
	c.emit(model.JobEventStopped, job, &entry)
	c.log.Debug("job stopped", "job_id", id)
	return job, nil
}

// Play resumes a paused job at the step after the one it froze on, or
// restarts a stopped (or never advanced) job from the first step.
// Playing a job that is already playing does nothing.
func (c *Controller) Play(id string) (model.Job, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	job, err := c.lookup(id)
	if err != nil {
		return model.Job{}, err
	}
	if job.Playback == model.PlaybackPlay {
		return job, nil
	}

	if job.Playback == model.PlaybackStop || job.ProgressIndex == -1 {
		var entry ledger.Entry
		now := c.now()
		job, err = c.registry.apply(id, func(j *model.Job) {
			if j.Status == model.StatusDone {
				resetSteps(j)
				j.Status = model.StatusPending
			}
			j.Playback = model.PlaybackPlay
			entry = j.Logs.Append(MessageRestarted, ledger.SystemLabel, now)
		})
		if err != nil {
			return model.Job{}, err
		}
		c.schedule(id, 0)
		c.emit(model.JobEventRestarted, job, &entry)
		c.log.Debug("job restarted", "job_id", id)
		return job, nil
	}

	next := job.ProgressIndex + 1
	job, err = c.registry.apply(id, func(j *model.Job) {
		j.Playback = model.PlaybackPlay
	})
	if err != nil {
		return model.Job{}, err
	}
	c.schedule(id, next)
	c.emit(model.JobEventResumed, job, nil)
	c.log.Debug("job resumed", "job_id", id, "next_index", next)
	return job, nil
}

// Close cancels every outstanding timer. Later controls return ErrClosed and
// timers that were already firing are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.timers.Close()
	c.log.Info("playback controller closed")
}

// advance is the timer callback moving a job to step index, or to
// completion past the last step.
func (c *Controller) advance(id string, index int, tok scheduler.Token) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || !c.timers.Release(id, tok) {
		c.log.Debug("stale advance ignored", "job_id", id, "index", index)
		return
	}
	job, err := c.registry.Get(id)
	if err != nil || job.Playback != model.PlaybackPlay {
		c.log.Debug("advance skipped", "job_id", id, "index", index)
		return
	}

	now := c.now()
	var entry ledger.Entry

	if index >= c.catalog.Len() {
		job, _ = c.registry.apply(id, func(j *model.Job) {
			for i := range j.Steps {
				j.Steps[i].Status = model.StatusDone
			}
			j.ProgressIndex = len(j.Steps) - 1
			j.Status = model.StatusDone
			j.Playback = model.PlaybackStop
			entry = j.Logs.Append(MessageComplete, ledger.SystemLabel, now)
		})
		c.emit(model.JobEventCompleted, job, &entry)
		c.log.Info("job complete", "job_id", id)
		return
	}

	step, _ := c.catalog.At(index)
	message := step.Render(templateValues(job))
	job, _ = c.registry.apply(id, func(j *model.Job) {
		for i := range j.Steps {
			switch {
			case i < index:
				j.Steps[i].Status = model.StatusDone
			case i == index:
				j.Steps[i].Status = model.StatusInProgress
			default:
				j.Steps[i].Status = model.StatusPending
			}
		}
		j.ProgressIndex = index
		j.Status = model.StatusInProgress
		entry = j.Logs.Append(message, step.Label, now)
	})
	c.schedule(id, index+1)
	c.emit(model.JobEventAdvanced, job, &entry)
	c.log.Debug("job advanced", "job_id", id, "index", index, "step", step.Label)
}

func (c *Controller) schedule(id string, index int) {
	c.timers.Schedule(id, func(tok scheduler.Token) {
		c.advance(id, index, tok)
	})
}

func (c *Controller) lookup(id string) (model.Job, error) {
	if c.closed {
		return model.Job{}, ErrClosed
	}
	return c.registry.Get(id)
}

func (c *Controller) now() time.Time {
	return c.timers.Clock().Now()
}

func (c *Controller) emit(typ model.JobEventType, job model.Job, entry *ledger.Entry) {
	ev := model.JobEvent{Type: typ, Job: job, Entry: entry}
	for _, n := range c.notifiers {
		n.Notify(ev)
	}
}

func resetSteps(j *model.Job) {
	for i := range j.Steps {
		j.Steps[i].Status = model.StatusPending
	}
	j.ProgressIndex = -1
}

// templateValues exposes the job's snapshot to step message templates.
func templateValues(j model.Job) map[string]string {
	return map[string]string{
		catalog.FieldLocation: j.Snapshot.Location(),
		catalog.FieldCity:     j.Snapshot.City,
		catalog.FieldState:    j.Snapshot.State,
		catalog.FieldModel:    j.Model,
		catalog.FieldDevice:   j.Snapshot.DeviceID,
	}
}
