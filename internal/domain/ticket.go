package domain

import "time"

// TicketState enumerates ticket lifecycle states.
type TicketState string

const (
	TicketStateOpen       TicketState = "open"
	TicketStateInProgress TicketState = "in_progress"
	TicketStateDone       TicketState = "done"
)

// Valid reports whether the state is a member of the closed enum.
func (s TicketState) Valid() bool {
	switch s {
	case TicketStateOpen, TicketStateInProgress, TicketStateDone:
		return true
	}
	return false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow  TicketPriority = "low"
	TicketPriorityMed  TicketPriority = "med"
	TicketPriorityHigh TicketPriority = "high"
)

// Valid reports whether the priority is a member of the closed enum.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMed, TicketPriorityHigh:
		return true
	}
	return false
}

// TicketType classifies the kind of work a ticket represents.
type TicketType string

const (
	TicketTypeBug     TicketType = "bug"
	TicketTypeTask    TicketType = "task"
	TicketTypeFeature TicketType = "feature"
)

// Valid reports whether the type is a member of the closed enum.
func (t TicketType) Valid() bool {
	switch t {
	case TicketTypeBug, TicketTypeTask, TicketTypeFeature:
		return true
	}
	return false
}

// Field length limits enforced before any storage interaction.
const (
	TicketNameMaxLen        = 160
	TicketDescriptionMaxLen = 10000
)

// Ticket is the aggregate for a unit of work inside a project.
// ProjectID and CreatorID are immutable after creation.
type Ticket struct {
	ID          string
	ProjectID   string
	CreatorID   string
	AssigneeID  *string
	Name        string
	Description string
	Type        TicketType
	Priority    TicketPriority
	State       TicketState
	CreatedAt   time.Time
}
