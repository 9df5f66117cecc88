package domain

import "time"

// TicketComment is a free-form note on a ticket. Only the author may
// update or delete it.
type TicketComment struct {
	ID        string
	TicketID  string
	AuthorID  string
	Body      string
	CreatedAt time.Time
}
