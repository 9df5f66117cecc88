package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tsystem/tracker/internal/domain"
	"github.com/tsystem/tracker/internal/repository"
	"github.com/tsystem/tracker/pkg/errorutil"
)

// TicketService is the ticket mutation engine. Every operation authorizes
// through the OwnershipGuard first, and every mutation of the tracked
// fields (state, priority, assignee) is recorded in the append-only
// history ledger via the shared diff-and-log step.
type TicketService struct {
	guard   *OwnershipGuard
	tickets repository.TicketRepository
	users   repository.UserRepository
	history repository.TicketHistoryRepository
	tx      repository.TxManager
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Guard       *OwnershipGuard
	TicketRepo  repository.TicketRepository
	UserRepo    repository.UserRepository
	HistoryRepo repository.TicketHistoryRepository
	Tx          repository.TxManager
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		guard:   deps.Guard,
		tickets: deps.TicketRepo,
		users:   deps.UserRepo,
		history: deps.HistoryRepo,
		tx:      deps.Tx,
	}
}

// TicketCreateInput describes the creation payload. State defaults to
// open and priority to med when unset.
type TicketCreateInput struct {
	Name        string
	Description string
	Type        domain.TicketType
	Priority    domain.TicketPriority
	State       domain.TicketState
	AssigneeID  *string
}

// TicketReplaceInput carries the full mutable field set. A replace
// overwrites every mutable field; an omitted assignee clears the field.
type TicketReplaceInput struct {
	Name        string
	Description string
	Type        domain.TicketType
	Priority    domain.TicketPriority
	State       domain.TicketState
	AssigneeID  *string
}

// TicketPatchInput applies only the fields explicitly supplied; nil
// pointers leave the current value untouched.
type TicketPatchInput struct {
	Name        *string
	Description *string
	Type        *domain.TicketType
	Priority    *domain.TicketPriority
	State       *domain.TicketState
	AssigneeID  *string
}

// trackedFields is the snapshot compared by the diff-and-log step.
type trackedFields struct {
	state      domain.TicketState
	priority   domain.TicketPriority
	assigneeID *string
}

func capture(t *domain.Ticket) trackedFields {
	return trackedFields{state: t.State, priority: t.Priority, assigneeID: t.AssigneeID}
}

func (f trackedFields) equal(other trackedFields) bool {
	if f.state != other.state || f.priority != other.priority {
		return false
	}
	if f.assigneeID == nil || other.assigneeID == nil {
		return f.assigneeID == nil && other.assigneeID == nil
	}
	return *f.assigneeID == *other.assigneeID
}

// List returns the project's tickets, newest first.
func (s *TicketService) List(ctx context.Context, projectID string, actor domain.Principal) ([]domain.Ticket, error) {
	if _, err := s.guard.Authorize(ctx, projectID, actor); err != nil {
		return nil, err
	}
	return s.tickets.ListByProject(ctx, projectID)
}

// ListAssigned returns tickets assigned to the caller across projects.
func (s *TicketService) ListAssigned(ctx context.Context, actor domain.Principal) ([]domain.Ticket, error) {
	return s.tickets.ListByAssignee(ctx, actor.UserID)
}

// Get loads a single ticket within the project.
func (s *TicketService) Get(ctx context.Context, projectID, ticketID string, actor domain.Principal) (*domain.Ticket, error) {
	if _, err := s.guard.Authorize(ctx, projectID, actor); err != nil {
		return nil, err
	}
	return s.load(ctx, projectID, ticketID)
}

// Create builds and persists a new ticket, then unconditionally appends
// a baseline history entry with nil old values. The baseline seeds the
// audit trail so listHistory is never empty for an existing ticket.
func (s *TicketService) Create(ctx context.Context, projectID string, input TicketCreateInput, actor domain.Principal) (*domain.Ticket, error) {
	if _, err := s.guard.Authorize(ctx, projectID, actor); err != nil {
		return nil, err
	}

	if input.State == "" {
		input.State = domain.TicketStateOpen
	}
	if input.Priority == "" {
		input.Priority = domain.TicketPriorityMed
	}

	ticket := &domain.Ticket{
		ProjectID:   projectID,
		CreatorID:   actor.UserID,
		AssigneeID:  input.AssigneeID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Type:        input.Type,
		Priority:    input.Priority,
		State:       input.State,
	}
	if err := validateTicketFields(ticket); err != nil {
		return nil, err
	}
	if err := s.checkAssignee(ctx, ticket.AssigneeID); err != nil {
		return nil, err
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.tickets.Create(ctx, ticket); err != nil {
			return err
		}
		return s.history.Append(ctx, &domain.TicketHistory{
			TicketID:      ticket.ID,
			ChangedByID:   actor.UserID,
			NewState:      ticket.State,
			NewPriority:   ticket.Priority,
			NewAssigneeID: ticket.AssigneeID,
			ChangedAt:     time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// Replace overwrites every mutable field from the payload, then runs the
// diff-and-log step. Unlike Patch, absent values are applied as given —
// an empty assignee unassigns the ticket.
func (s *TicketService) Replace(ctx context.Context, projectID, ticketID string, input TicketReplaceInput, actor domain.Principal) (*domain.Ticket, error) {
	if _, err := s.guard.Authorize(ctx, projectID, actor); err != nil {
		return nil, err
	}
	ticket, err := s.load(ctx, projectID, ticketID)
	if err != nil {
		return nil, err
	}

	old := capture(ticket)
	ticket.Name = strings.TrimSpace(input.Name)
	ticket.Description = input.Description
	ticket.Type = input.Type
	ticket.Priority = input.Priority
	ticket.State = input.State
	ticket.AssigneeID = input.AssigneeID

	if err := validateTicketFields(ticket); err != nil {
		return nil, err
	}
	if err := s.checkAssignee(ctx, ticket.AssigneeID); err != nil {
		return nil, err
	}
	if err := s.persistAndLog(ctx, ticket, old, actor); err != nil {
		return nil, err
	}
	return ticket, nil
}

// Patch applies only the supplied fields; omitted fields keep their prior
// value. A patch cannot clear the assignee — use Assign for that.
func (s *TicketService) Patch(ctx context.Context, projectID, ticketID string, input TicketPatchInput, actor domain.Principal) (*domain.Ticket, error) {
	if _, err := s.guard.Authorize(ctx, projectID, actor); err != nil {
		return nil, err
	}
	ticket, err := s.load(ctx, projectID, ticketID)
	if err != nil {
		return nil, err
	}

	old := capture(ticket)
	if input.Name != nil {
		ticket.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		ticket.Description = *input.Description
	}
	if input.Type != nil {
		ticket.Type = *input.Type
	}
	if input.Priority != nil {
		ticket.Priority = *input.Priority
	}
	if input.State != nil {
		ticket.State = *input.State
	}
	if input.AssigneeID != nil {
		ticket.AssigneeID = input.AssigneeID
	}

	if err := validateTicketFields(ticket); err != nil {
		return nil, err
	}
	if input.AssigneeID != nil {
		if err := s.checkAssignee(ctx, input.AssigneeID); err != nil {
			return nil, err
		}
	}
	if err := s.persistAndLog(ctx, ticket, old, actor); err != nil {
		return nil, err
	}
	return ticket, nil
}

// Assign is a restricted partial update touching only the assignee.
// A nil assignee clears the field. The assignee may be any existing user;
// membership in the project is deliberately not required.
func (s *TicketService) Assign(ctx context.Context, projectID, ticketID string, assigneeID *string, actor domain.Principal) (*domain.Ticket, error) {
	if _, err := s.guard.Authorize(ctx, projectID, actor); err != nil {
		return nil, err
	}
	ticket, err := s.load(ctx, projectID, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.checkAssignee(ctx, assigneeID); err != nil {
		return nil, err
	}

	old := capture(ticket)
	ticket.AssigneeID = assigneeID
	if err := s.persistAndLog(ctx, ticket, old, actor); err != nil {
		return nil, err
	}
	return ticket, nil
}

// Delete removes the ticket; its history and comments go with it via the
// schema cascade.
func (s *TicketService) Delete(ctx context.Context, projectID, ticketID string, actor domain.Principal) error {
	if _, err := s.guard.Authorize(ctx, projectID, actor); err != nil {
		return err
	}
	if _, err := s.load(ctx, projectID, ticketID); err != nil {
		return err
	}
	return s.tickets.Delete(ctx, ticketID)
}

// History returns the ticket's audit trail ascending by change time.
func (s *TicketService) History(ctx context.Context, projectID, ticketID string, actor domain.Principal) ([]domain.TicketHistory, error) {
	if _, err := s.guard.Authorize(ctx, projectID, actor); err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, projectID, ticketID); err != nil {
		return nil, err
	}
	return s.history.ListByTicket(ctx, ticketID)
}

// persistAndLog is the shared diff-and-log step: the ticket write and the
// conditional history append commit or roll back together. One entry
// snapshots all three tracked fields even when only one changed; a no-op
// mutation appends nothing.
func (s *TicketService) persistAndLog(ctx context.Context, ticket *domain.Ticket, old trackedFields, actor domain.Principal) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return err
		}
		now := capture(ticket)
		if old.equal(now) {
			return nil
		}
		return s.history.Append(ctx, &domain.TicketHistory{
			TicketID:      ticket.ID,
			ChangedByID:   actor.UserID,
			OldState:      &old.state,
			NewState:      now.state,
			OldPriority:   &old.priority,
			NewPriority:   now.priority,
			OldAssigneeID: old.assigneeID,
			NewAssigneeID: now.assigneeID,
			ChangedAt:     time.Now(),
		})
	})
}

func (s *TicketService) load(ctx context.Context, projectID, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByProject(ctx, ticketID, projectID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errorutil.NewNotFound("ticket")
	}
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// checkAssignee validates that a non-nil assignee refers to an existing
// user. Any user qualifies, not just project members.
func (s *TicketService) checkAssignee(ctx context.Context, assigneeID *string) error {
	if assigneeID == nil {
		return nil
	}
	if _, err := s.users.GetByID(ctx, *assigneeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errorutil.NewNotFound("assignee")
		}
		return err
	}
	return nil
}

func validateTicketFields(t *domain.Ticket) error {
	if t.Name == "" {
		return errorutil.NewValidationError("name", "name is required")
	}
	if len(t.Name) > domain.TicketNameMaxLen {
		return errorutil.NewValidationError("name", "name exceeds 160 characters")
	}
	if len(t.Description) > domain.TicketDescriptionMaxLen {
		return errorutil.NewValidationError("description", "description exceeds 10000 characters")
	}
	if !t.Type.Valid() {
		return errorutil.NewValidationError("type", "type must be one of bug, task, feature")
	}
	if !t.Priority.Valid() {
		return errorutil.NewValidationError("priority", "priority must be one of low, med, high")
	}
	if !t.State.Valid() {
		return errorutil.NewValidationError("state", "state must be one of open, in_progress, done")
	}
	return nil
}
