package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"freelancehub/internal/cache"
	"freelancehub/internal/errors"
	"freelancehub/internal/model"
	"freelancehub/internal/repository"
)

const (
	projectListCacheKey = "projects:recent"
	projectListCacheTTL = time.Minute

	// DefaultListLimit caps unpaged listings, matching the API contract.
	DefaultListLimit = 100
)

// CreateProjectInput carries the fields a user supplies when posting a project.
type CreateProjectInput struct {
	Title       string
	Description string
	Budget      int
	TechStack   []string
}

// UpdateProjectInput is a partial update; nil fields are left untouched.
type UpdateProjectInput struct {
	Title       *string
	Description *string
	Budget      *int
	TechStack   *[]string
}

// ProjectService handles marketplace project operations.
type ProjectService interface {
	List(ctx context.Context, filter repository.ProjectFilter) ([]model.Project, error)
	Get(ctx context.Context, id string) (*model.Project, error)
	Create(ctx context.Context, userID uuid.UUID, input CreateProjectInput) (*model.Project, error)
	Update(ctx context.Context, userID uuid.UUID, id string, input UpdateProjectInput) (*model.Project, error)
	Complete(ctx context.Context, userID uuid.UUID, id string) (*model.Project, error)
	Delete(ctx context.Context, userID uuid.UUID, id string) error
}

type projectService struct {
	repo  repository.ProjectRepository
	cache *cache.Client
}

// NewProjectService creates a new project service.
func NewProjectService(repo repository.ProjectRepository, cache *cache.Client) ProjectService {
	return &projectService{
		repo:  repo,
		cache: cache,
	}
}

// List returns projects newest first. The unfiltered first page is served from
// cache when possible since it backs the marketplace landing view.
func (s *projectService) List(ctx context.Context, filter repository.ProjectFilter) ([]model.Project, error) {
	if filter.Limit <= 0 || filter.Limit > DefaultListLimit {
		filter.Limit = DefaultListLimit
	}

	cacheable := filter.Status == "" && filter.Skip == 0 && filter.Limit == DefaultListLimit
	if cacheable {
		if data, _ := s.cache.Get(ctx, projectListCacheKey); data != nil {
			var cached []model.Project
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	projects, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	if cacheable {
		if payload, err := json.Marshal(projects); err == nil {
			_ = s.cache.Set(ctx, projectListCacheKey, payload, projectListCacheTTL)
		}
	}

	return projects, nil
}

// Get retrieves a single project by ID. A malformed ID reads as not found, the
// same way an unknown one does.
func (s *projectService) Get(ctx context.Context, id string) (*model.Project, error) {
	projectID, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.ErrProjectNotFound
	}

	project, err := s.repo.FindByID(ctx, projectID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrProjectNotFound
		}
		return nil, err
	}
	return project, nil
}

// Create posts a new project owned by the given user.
func (s *projectService) Create(ctx context.Context, userID uuid.UUID, input CreateProjectInput) (*model.Project, error) {
	project := &model.Project{
		Title:       input.Title,
		Description: input.Description,
		Budget:      input.Budget,
		TechStack:   input.TechStack,
		Status:      model.ProjectOpen,
		CreatedBy:   userID,
	}

	if err := s.repo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	_ = s.cache.Delete(ctx, projectListCacheKey)
	return project, nil
}

// Update applies the non-nil fields of input to a project owned by userID.
func (s *projectService) Update(ctx context.Context, userID uuid.UUID, id string, input UpdateProjectInput) (*model.Project, error) {
	project, err := s.ownedProject(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if input.Title != nil {
		fields["title"] = *input.Title
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.Budget != nil {
		fields["budget"] = *input.Budget
	}
	if input.TechStack != nil {
		fields["tech_stack"] = *input.TechStack
	}

	if len(fields) == 0 {
		return project, nil
	}

	if err := s.repo.UpdateFields(ctx, project.ID, fields); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}

	_ = s.cache.Delete(ctx, projectListCacheKey)
	return s.repo.FindByID(ctx, project.ID)
}

// Complete marks a project COMPLETED. Completion is global: every viewer sees
// the new status.
func (s *projectService) Complete(ctx context.Context, userID uuid.UUID, id string) (*model.Project, error) {
	project, err := s.ownedProject(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if project.Status == model.ProjectCompleted {
		return nil, errors.ErrProjectCompleted
	}

	if err := s.repo.UpdateFields(ctx, project.ID, map[string]interface{}{
		"status": model.ProjectCompleted,
	}); err != nil {
		return nil, fmt.Errorf("complete project: %w", err)
	}

	_ = s.cache.Delete(ctx, projectListCacheKey)
	project.Status = model.ProjectCompleted
	return project, nil
}

// Delete removes a project owned by userID.
func (s *projectService) Delete(ctx context.Context, userID uuid.UUID, id string) error {
	project, err := s.ownedProject(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, project.ID); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	_ = s.cache.Delete(ctx, projectListCacheKey)
	return nil
}

func (s *projectService) ownedProject(ctx context.Context, userID uuid.UUID, id string) (*model.Project, error) {
	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.CreatedBy != userID {
		return nil, errors.ErrNotProjectOwner
	}
	return project, nil
}
