package service

import (
	"context"
	"errors"
	"strings"

	"github.com/tsystem/tracker/internal/domain"
	"github.com/tsystem/tracker/internal/repository"
	"github.com/tsystem/tracker/pkg/errorutil"
)

// CommentService manages ticket comments. Reads and creation are gated
// by project ownership; update and delete additionally require the
// caller to be the comment's author.
type CommentService struct {
	guard    *OwnershipGuard
	tickets  repository.TicketRepository
	comments repository.TicketCommentRepository
}

// CommentDependencies bundles collaborators for the comment service.
type CommentDependencies struct {
	Guard       *OwnershipGuard
	TicketRepo  repository.TicketRepository
	CommentRepo repository.TicketCommentRepository
}

// NewCommentService constructs the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	return &CommentService{
		guard:    deps.Guard,
		tickets:  deps.TicketRepo,
		comments: deps.CommentRepo,
	}
}

// List returns the ticket's comments ascending by creation time.
func (s *CommentService) List(ctx context.Context, projectID, ticketID string, actor domain.Principal) ([]domain.TicketComment, error) {
	if err := s.checkTicket(ctx, projectID, ticketID, actor); err != nil {
		return nil, err
	}
	return s.comments.ListByTicket(ctx, ticketID)
}

// Add creates a comment authored by the caller.
func (s *CommentService) Add(ctx context.Context, projectID, ticketID, body string, actor domain.Principal) (*domain.TicketComment, error) {
	if err := s.checkTicket(ctx, projectID, ticketID, actor); err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, errorutil.NewValidationError("body", "body is required")
	}
	comment := &domain.TicketComment{
		TicketID: ticketID,
		AuthorID: actor.UserID,
		Body:     body,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Update replaces the comment body. Only the author may do this.
func (s *CommentService) Update(ctx context.Context, projectID, ticketID, commentID, body string, actor domain.Principal) (*domain.TicketComment, error) {
	comment, err := s.loadOwned(ctx, projectID, ticketID, commentID, actor)
	if err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, errorutil.NewValidationError("body", "body is required")
	}
	comment.Body = body
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Delete removes the comment. Only the author may do this.
func (s *CommentService) Delete(ctx context.Context, projectID, ticketID, commentID string, actor domain.Principal) error {
	if _, err := s.loadOwned(ctx, projectID, ticketID, commentID, actor); err != nil {
		return err
	}
	return s.comments.Delete(ctx, commentID)
}

func (s *CommentService) checkTicket(ctx context.Context, projectID, ticketID string, actor domain.Principal) error {
	if _, err := s.guard.Authorize(ctx, projectID, actor); err != nil {
		return err
	}
	if _, err := s.tickets.GetByProject(ctx, ticketID, projectID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errorutil.NewNotFound("ticket")
		}
		return err
	}
	return nil
}

func (s *CommentService) loadOwned(ctx context.Context, projectID, ticketID, commentID string, actor domain.Principal) (*domain.TicketComment, error) {
	if err := s.checkTicket(ctx, projectID, ticketID, actor); err != nil {
		return nil, err
	}
	comment, err := s.comments.GetByID(ctx, commentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errorutil.NewNotFound("comment")
	}
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != actor.UserID {
		return nil, errorutil.NewForbidden("comment belongs to another author")
	}
	return comment, nil
}
