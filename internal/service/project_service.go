package service

import (
	"context"
	"strings"

	"github.com/tsystem/tracker/internal/domain"
	"github.com/tsystem/tracker/internal/repository"
	"github.com/tsystem/tracker/pkg/errorutil"
)

// ProjectService manages owner-scoped project CRUD.
type ProjectService struct {
	guard    *OwnershipGuard
	projects repository.ProjectRepository
}

// NewProjectService constructs the service.
func NewProjectService(guard *OwnershipGuard, projects repository.ProjectRepository) *ProjectService {
	return &ProjectService{guard: guard, projects: projects}
}

// ProjectCreateInput describes the creation payload.
type ProjectCreateInput struct {
	Name        string
	Description string
}

// ProjectUpdateInput carries the mutable project fields.
type ProjectUpdateInput struct {
	Name        string
	Description string
	Status      domain.ProjectStatus
}

// Create persists a project owned by the caller, active by default.
func (s *ProjectService) Create(ctx context.Context, input ProjectCreateInput, actor domain.Principal) (*domain.Project, error) {
	project := &domain.Project{
		OwnerID:     actor.UserID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Status:      domain.ProjectStatusActive,
	}
	if err := validateProjectName(project.Name); err != nil {
		return nil, err
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// ListMine returns the caller's projects, newest first.
func (s *ProjectService) ListMine(ctx context.Context, actor domain.Principal) ([]domain.Project, error) {
	return s.projects.ListByOwner(ctx, actor.UserID)
}

// Get loads a project the caller owns.
func (s *ProjectService) Get(ctx context.Context, projectID string, actor domain.Principal) (*domain.Project, error) {
	return s.guard.Authorize(ctx, projectID, actor)
}

// Update overwrites name, description and status.
func (s *ProjectService) Update(ctx context.Context, projectID string, input ProjectUpdateInput, actor domain.Principal) (*domain.Project, error) {
	project, err := s.guard.Authorize(ctx, projectID, actor)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if err := validateProjectName(name); err != nil {
		return nil, err
	}
	if !input.Status.Valid() {
		return nil, errorutil.NewValidationError("status", "status must be one of active, archived")
	}
	project.Name = name
	project.Description = input.Description
	project.Status = input.Status
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Delete removes the project. Tickets, their history and comments go
// with it via the schema cascade.
func (s *ProjectService) Delete(ctx context.Context, projectID string, actor domain.Principal) error {
	if _, err := s.guard.Authorize(ctx, projectID, actor); err != nil {
		return err
	}
	return s.projects.Delete(ctx, projectID)
}

func validateProjectName(name string) error {
	if name == "" {
		return errorutil.NewValidationError("name", "name is required")
	}
	if len(name) > domain.ProjectNameMaxLen {
		return errorutil.NewValidationError("name", "name exceeds 120 characters")
	}
	return nil
}
