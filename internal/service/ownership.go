package service

import (
	"context"
	"errors"

	"github.com/tsystem/tracker/internal/domain"
	"github.com/tsystem/tracker/internal/repository"
	"github.com/tsystem/tracker/pkg/errorutil"
)

// OwnershipGuard binds every ticket and comment operation to the
// project's owning user. It is a pure read-then-decide check with no
// side effects; callers must short-circuit on its error before touching
// storage.
type OwnershipGuard struct {
	projects repository.ProjectRepository
}

// NewOwnershipGuard constructs the guard.
func NewOwnershipGuard(projects repository.ProjectRepository) *OwnershipGuard {
	return &OwnershipGuard{projects: projects}
}

// Authorize loads the project and confirms the caller owns it. A missing
// project yields NOT_FOUND, an owner mismatch FORBIDDEN; the two are kept
// distinct here — collapsing them to hide existence is a transport-layer
// choice.
func (g *OwnershipGuard) Authorize(ctx context.Context, projectID string, actor domain.Principal) (*domain.Project, error) {
	project, err := g.projects.GetByID(ctx, projectID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errorutil.NewNotFound("project")
	}
	if err != nil {
		return nil, err
	}
	if project.OwnerID != actor.UserID {
		return nil, errorutil.NewForbidden("project belongs to another user")
	}
	return project, nil
}
