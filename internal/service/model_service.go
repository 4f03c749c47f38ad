package service

import (
	"context"
	"errors"

	"github.com/appiumctl/api/internal/model"
)

var ErrModelNotFound = errors.New("model not found")

// ModelService serves the fixed set of creator personas jobs are launched for
type ModelService struct {
	models []model.ModelProfile
}

func NewModelService(models ...model.ModelProfile) *ModelService {
	if len(models) == 0 {
		models = DefaultModels()
	}
	return &ModelService{models: models}
}

// List returns every model with resolved photo URLs
func (s *ModelService) List(ctx context.Context) []model.ModelResponse {
	out := make([]model.ModelResponse, 0, len(s.models))
	for _, m := range s.models {
		out = append(out, toModelResponse(m))
	}
	return out
}

// Get returns a single model by id
func (s *ModelService) Get(ctx context.Context, modelID string) (*model.ModelResponse, error) {
	m, err := s.find(modelID)
	if err != nil {
		return nil, err
	}
	resp := toModelResponse(m)
	return &resp, nil
}

func (s *ModelService) find(modelID string) (model.ModelProfile, error) {
	for _, m := range s.models {
		if m.ID == modelID {
			return m, nil
		}
	}
	return model.ModelProfile{}, ErrModelNotFound
}

func toModelResponse(m model.ModelProfile) model.ModelResponse {
	urls := make([]string, len(m.Photos))
	for i, p := range m.Photos {
		urls[i] = m.PhotoURL(p)
	}
	return model.ModelResponse{ID: m.ID, Name: m.Name, PhotoURLs: urls}
}

// DefaultModels returns the built-in personas
func DefaultModels() []model.ModelProfile {
	return []model.ModelProfile{
		{
			ID:     "model-sara",
			Name:   "Sara",
			Folder: "Sara",
			Photos: []string{
				"photo_2026-01-31_16-40-45.jpg",
				"photo_2026-01-31_16-40-49.jpg",
				"photo_2026-01-31_16-40-52.jpg",
				"photo_2026-01-31_16-40-56.jpg",
				"photo_2026-01-31_16-41-01.jpg",
				"photo_2026-01-31_16-41-06.jpg",
				"photo_2026-01-31_16-41-10.jpg",
				"photo_2026-01-31_16-41-14.jpg",
				"photo_2026-01-31_16-41-17.jpg",
				"photo_2026-01-31_16-42-47.jpg",
				"photo_2026-01-31_16-42-50.jpg",
				"photo_2026-01-31_16-42-54.jpg",
				"photo_2026-01-31_17-04-30.jpg",
			},
		},
		{
			ID:     "model-chloe",
			Name:   "Chloe",
			Folder: "Chloe",
			Photos: []string{
				"photo_2026-01-31_17-06-41.jpg",
				"photo_2026-01-31_17-06-48.jpg",
				"photo_2026-01-31_17-06-51.jpg",
				"photo_2026-01-31_17-06-53.jpg",
				"photo_2026-01-31_17-06-55.jpg",
				"photo_2026-01-31_17-06-58.jpg",
				"photo_2026-01-31_17-07-01.jpg",
				"photo_2026-01-31_17-07-03.jpg",
				"photo_2026-01-31_17-07-05.jpg",
				"photo_2026-01-31_17-07-08.jpg",
			},
		},
		{
			ID:     "model-hailey",
			Name:   "Hailey",
			Folder: "Hailey",
			Photos: []string{
				"photo_2026-01-31_17-08-48.jpg",
				"photo_2026-01-31_17-08-57.jpg",
				"photo_2026-01-31_17-09-00.jpg",
				"photo_2026-01-31_17-09-02.jpg",
				"photo_2026-01-31_17-09-04.jpg",
				"photo_2026-01-31_17-09-07.jpg",
				"photo_2026-01-31_17-09-10.jpg",
				"photo_2026-01-31_17-09-12.jpg",
				"photo_2026-01-31_17-09-14.jpg",
				"photo_2026-01-31_17-09-15.jpg",
			},
		},
	}
}
