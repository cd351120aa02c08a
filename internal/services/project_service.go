package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/harry7799/heng-studio/internal/database"
	"github.com/harry7799/heng-studio/internal/logging"
	"github.com/harry7799/heng-studio/internal/models"
	"github.com/harry7799/heng-studio/internal/realtime"
	"github.com/harry7799/heng-studio/internal/validation"
)

// ProjectService validates project payloads and turns each mutation into a
// full-list rewrite through the store. Authorization happens in the HTTP
// layer before any of these methods run.
type ProjectService struct {
	store     database.ProjectStore
	validator *validation.ProjectValidator
	publisher *realtime.Publisher
	newID     func() string
}

func NewProjectService(store database.ProjectStore, validator *validation.ProjectValidator, publisher *realtime.Publisher) *ProjectService {
	return &ProjectService{
		store:     store,
		validator: validator,
		publisher: publisher,
		newID:     uuid.NewString,
	}
}

func (s *ProjectService) List(ctx context.Context) ([]models.Project, error) {
	return s.store.ReadAll(ctx)
}

func (s *ProjectService) Get(ctx context.Context, id string) (models.Project, error) {
	return s.store.ReadOne(ctx, id)
}

// Create prepends a new project so the list stays newest first.
func (s *ProjectService) Create(ctx context.Context, body []byte) (models.Project, error) {
	draft, err := s.validator.ValidateCreate(body)
	if err != nil {
		return models.Project{}, err
	}

	created := draft.WithID(s.newID())
	err = s.store.Update(ctx, func(current []models.Project) ([]models.Project, error) {
		next := make([]models.Project, 0, len(current)+1)
		next = append(next, created)
		return append(next, current...), nil
	})
	if err != nil {
		return models.Project{}, err
	}

	s.publish(ctx, realtime.EventProjectCreated, realtime.ProjectCreatedPayload(created.ID))
	return created.Clone(), nil
}

// Replace overwrites every field of an existing project except its id.
func (s *ProjectService) Replace(ctx context.Context, id string, body []byte) (models.Project, error) {
	draft, err := s.validator.ValidateCreate(body)
	if err != nil {
		return models.Project{}, err
	}

	var updated models.Project
	err = s.store.Update(ctx, func(current []models.Project) ([]models.Project, error) {
		idx := indexOf(current, id)
		if idx < 0 {
			return nil, models.ErrNotFound
		}
		updated = draft.WithID(id)
		current[idx] = updated
		return current, nil
	})
	if err != nil {
		return models.Project{}, err
	}

	s.publish(ctx, realtime.EventProjectUpdated, realtime.ProjectUpdatedPayload(id))
	return updated.Clone(), nil
}

// Patch merges only the provided fields. Metadata is replaced as a whole
// when present and kept otherwise.
func (s *ProjectService) Patch(ctx context.Context, id string, body []byte) (models.Project, error) {
	patch, err := s.validator.ValidateUpdate(body)
	if err != nil {
		return models.Project{}, err
	}

	var updated models.Project
	err = s.store.Update(ctx, func(current []models.Project) ([]models.Project, error) {
		idx := indexOf(current, id)
		if idx < 0 {
			return nil, models.ErrNotFound
		}
		updated = patch.Apply(current[idx])
		current[idx] = updated
		return current, nil
	})
	if err != nil {
		return models.Project{}, err
	}

	s.publish(ctx, realtime.EventProjectUpdated, realtime.ProjectUpdatedPayload(id))
	return updated.Clone(), nil
}

// Remove deletes a project and returns the record as it was.
func (s *ProjectService) Remove(ctx context.Context, id string) (models.Project, error) {
	var removed models.Project
	err := s.store.Update(ctx, func(current []models.Project) ([]models.Project, error) {
		idx := indexOf(current, id)
		if idx < 0 {
			return nil, models.ErrNotFound
		}
		removed = current[idx]
		next := make([]models.Project, 0, len(current)-1)
		next = append(next, current[:idx]...)
		return append(next, current[idx+1:]...), nil
	})
	if err != nil {
		return models.Project{}, err
	}

	s.publish(ctx, realtime.EventProjectDeleted, realtime.ProjectDeletedPayload(id))
	return removed, nil
}

func (s *ProjectService) publish(ctx context.Context, event string, payload map[string]interface{}) {
	if err := s.publisher.PublishEvent(ctx, realtime.ProjectsChannel, event, payload); err != nil {
		logging.NewLogger(ctx).LogWarnf("publish_event", "event=%s error=%v", event, err)
	}
}

func indexOf(projects []models.Project, id string) int {
	for i, p := range projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}
