package dto

import (
	"time"

	"github.com/tsystem/tracker/internal/domain"
)

// CreateProjectRequest payload.
type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=10000"`
}

// UpdateProjectRequest payload. A full replacement of the mutable fields.
type UpdateProjectRequest struct {
	Name        string               `json:"name" validate:"required,max=120"`
	Description string               `json:"description" validate:"max=10000"`
	Status      domain.ProjectStatus `json:"status" validate:"required,oneof=active archived"`
}

// ProjectResponse is the public view of a project.
type ProjectResponse struct {
	ID          string               `json:"id"`
	OwnerID     string               `json:"owner_id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      domain.ProjectStatus `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
}

// NewProjectResponse maps a domain project.
func NewProjectResponse(project *domain.Project) ProjectResponse {
	return ProjectResponse{
		ID:          project.ID,
		OwnerID:     project.OwnerID,
		Name:        project.Name,
		Description: project.Description,
		Status:      project.Status,
		CreatedAt:   project.CreatedAt,
	}
}

// NewProjectResponses maps a slice of domain projects.
func NewProjectResponses(projects []domain.Project) []ProjectResponse {
	items := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		items = append(items, NewProjectResponse(&projects[i]))
	}
	return items
}
