package domain

import "time"

// ProjectStatus enumerates project lifecycle states.
type ProjectStatus string

const (
	ProjectStatusActive   ProjectStatus = "active"
	ProjectStatusArchived ProjectStatus = "archived"
)

// Valid reports whether the status is a member of the closed enum.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusActive, ProjectStatusArchived:
		return true
	}
	return false
}

// ProjectNameMaxLen bounds project names.
const ProjectNameMaxLen = 120

// Project groups tickets under a single owning user. OwnerID is immutable;
// deleting a project cascades to its tickets, their history and comments.
type Project struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	Status      ProjectStatus
	CreatedAt   time.Time
}
