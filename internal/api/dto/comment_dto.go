package dto

import (
	"time"

	"github.com/tsystem/tracker/internal/domain"
)

// CommentRequest payload for both creation and update.
type CommentRequest struct {
	Body string `json:"body" validate:"required,max=10000"`
}

// CommentResponse is the public view of a ticket comment.
type CommentResponse struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCommentResponse maps a domain comment.
func NewCommentResponse(comment *domain.TicketComment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		TicketID:  comment.TicketID,
		AuthorID:  comment.AuthorID,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt,
	}
}

// NewCommentResponses maps a slice of domain comments.
func NewCommentResponses(comments []domain.TicketComment) []CommentResponse {
	items := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, NewCommentResponse(&comments[i]))
	}
	return items
}
