package dto

import (
	"time"

	"github.com/tsystem/tracker/internal/domain"
)

// CreateTicketRequest payload. State and priority fall back to their
// defaults (open, med) when omitted.
type CreateTicketRequest struct {
	Name        string                `json:"name" validate:"required,max=160"`
	Description string                `json:"description" validate:"max=10000"`
	Type        domain.TicketType     `json:"type" validate:"required,oneof=bug task feature"`
	Priority    domain.TicketPriority `json:"priority" validate:"omitempty,oneof=low med high"`
	State       domain.TicketState    `json:"state" validate:"omitempty,oneof=open in_progress done"`
	AssigneeID  *string               `json:"assignee_id" validate:"omitempty,uuid"`
}

// ReplaceTicketRequest payload. Every mutable field is applied as given;
// a missing assignee_id clears the assignment.
type ReplaceTicketRequest struct {
	Name        string                `json:"name" validate:"required,max=160"`
	Description string                `json:"description" validate:"max=10000"`
	Type        domain.TicketType     `json:"type" validate:"required,oneof=bug task feature"`
	Priority    domain.TicketPriority `json:"priority" validate:"required,oneof=low med high"`
	State       domain.TicketState    `json:"state" validate:"required,oneof=open in_progress done"`
	AssigneeID  *string               `json:"assignee_id" validate:"omitempty,uuid"`
}

// PatchTicketRequest payload. Only fields present in the body are applied.
type PatchTicketRequest struct {
	Name        *string                `json:"name" validate:"omitempty,max=160"`
	Description *string                `json:"description" validate:"omitempty,max=10000"`
	Type        *domain.TicketType     `json:"type" validate:"omitempty,oneof=bug task feature"`
	Priority    *domain.TicketPriority `json:"priority" validate:"omitempty,oneof=low med high"`
	State       *domain.TicketState    `json:"state" validate:"omitempty,oneof=open in_progress done"`
	AssigneeID  *string                `json:"assignee_id" validate:"omitempty,uuid"`
}

// AssignTicketRequest payload. A null assignee unassigns the ticket.
type AssignTicketRequest struct {
	AssigneeID *string `json:"assignee_id" validate:"omitempty,uuid"`
}

// TicketResponse is the public view of a ticket.
type TicketResponse struct {
	ID          string                `json:"id"`
	ProjectID   string                `json:"project_id"`
	CreatorID   string                `json:"creator_id"`
	AssigneeID  *string               `json:"assignee_id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Type        domain.TicketType     `json:"type"`
	Priority    domain.TicketPriority `json:"priority"`
	State       domain.TicketState    `json:"state"`
	CreatedAt   time.Time             `json:"created_at"`
}

// TicketHistoryResponse is one audit trail entry. Old values are null on
// the creation baseline.
type TicketHistoryResponse struct {
	ID            string                 `json:"id"`
	TicketID      string                 `json:"ticket_id"`
	ChangedByID   string                 `json:"changed_by_id"`
	OldState      *domain.TicketState    `json:"old_state"`
	NewState      domain.TicketState     `json:"new_state"`
	OldPriority   *domain.TicketPriority `json:"old_priority"`
	NewPriority   domain.TicketPriority  `json:"new_priority"`
	OldAssigneeID *string                `json:"old_assignee_id"`
	NewAssigneeID *string                `json:"new_assignee_id"`
	ChangedAt     time.Time              `json:"changed_at"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:          ticket.ID,
		ProjectID:   ticket.ProjectID,
		CreatorID:   ticket.CreatorID,
		AssigneeID:  ticket.AssigneeID,
		Name:        ticket.Name,
		Description: ticket.Description,
		Type:        ticket.Type,
		Priority:    ticket.Priority,
		State:       ticket.State,
		CreatedAt:   ticket.CreatedAt,
	}
}

// NewTicketResponses maps a slice of domain tickets.
func NewTicketResponses(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketResponse(&tickets[i]))
	}
	return items
}

// NewTicketHistoryResponses maps the audit trail.
func NewTicketHistoryResponses(entries []domain.TicketHistory) []TicketHistoryResponse {
	items := make([]TicketHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, TicketHistoryResponse{
			ID:            entry.ID,
			TicketID:      entry.TicketID,
			ChangedByID:   entry.ChangedByID,
			OldState:      entry.OldState,
			NewState:      entry.NewState,
			OldPriority:   entry.OldPriority,
			NewPriority:   entry.NewPriority,
			OldAssigneeID: entry.OldAssigneeID,
			NewAssigneeID: entry.NewAssigneeID,
			ChangedAt:     entry.ChangedAt,
		})
	}
	return items
}
