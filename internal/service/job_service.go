package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/appiumctl/api/internal/engine"
	"github.com/appiumctl/api/internal/ledger"
	"github.com/appiumctl/api/internal/model"
)

var ErrUnknownStep = errors.New("unknown step")

// JobService launches jobs and routes playback controls to the engine
type JobService struct {
	registry   *engine.Registry
	controller *engine.Controller
	models     *ModelService
	devices    *DeviceService
}

func NewJobService(reg *engine.Registry, ctrl *engine.Controller, models *ModelService, devices *DeviceService) *JobService {
	return &JobService{
		registry:   reg,
		controller: ctrl,
		models:     models,
		devices:    devices,
	}
}

// Create validates the model and device references, then creates and starts a job
func (s *JobService) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	m, err := s.models.find(req.ModelID)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	if req.Profile.DeviceID != "" {
		if _, err := s.devices.Get(ctx, req.Profile.DeviceID); err != nil {
			return nil, fmt.Errorf("create job: %w", err)
		}
	}

	job, err := s.controller.Launch(m.ID, m.Name, req.Profile)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return &job, nil
}

// Get returns the full job record
func (s *JobService) Get(ctx context.Context, jobID string) (*model.Job, error) {
	job, err := s.registry.Get(jobID)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// List returns job summaries, most recent first
func (s *JobService) List(ctx context.Context) *model.JobListResponse {
	jobs := s.registry.List()
	out := make([]model.JobSummary, len(jobs))
	for i := range jobs {
		out[i] = jobs[i].Summary()
	}
	return &model.JobListResponse{Jobs: out, Total: len(out)}
}

// Logs returns the job's ledger, narrowed to one step label when step is set
func (s *JobService) Logs(ctx context.Context, jobID, step string) (*model.JobLogsResponse, error) {
	if step != "" && step != ledger.SystemLabel {
		if _, _, ok := s.registry.Catalog().Lookup(step); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStep, step)
		}
	}

	job, err := s.registry.Get(jobID)
	if err != nil {
		return nil, err
	}

	resp := &model.JobLogsResponse{JobID: job.ID, Step: step}
	if step == "" {
		resp.Logs = job.Logs.Entries()
	} else {
		resp.Logs = job.Logs.ForStep(step)
	}
	return resp, nil
}

// Play resumes or restarts the job
func (s *JobService) Play(ctx context.Context, jobID string) (*model.Job, error) {
	return s.control(jobID, s.controller.Play)
}

// Pause freezes the job on its current step
func (s *JobService) Pause(ctx context.Context, jobID string) (*model.Job, error) {
	return s.control(jobID, s.controller.Pause)
}

// Stop resets the job to the beginning
func (s *JobService) Stop(ctx context.Context, jobID string) (*model.Job, error) {
	return s.control(jobID, s.controller.Stop)
}

func (s *JobService) control(jobID string, op func(string) (model.Job, error)) (*model.Job, error) {
	job, err := op(jobID)
	if err != nil {
		return nil, err
	}
	return &job, nil
}
