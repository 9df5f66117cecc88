package domain

import "time"

// TicketHistory is an immutable audit entry recording one ticket mutation.
// A single entry snapshots all three tracked fields (state, priority,
// assignee) before and after the mutation, even when only one of them
// changed. Entries are append-only and never edited or deleted.
//
// Old values are nil on the creation baseline entry.
type TicketHistory struct {
	ID            string
	TicketID      string
	ChangedByID   string
	OldState      *TicketState
	NewState      TicketState
	OldPriority   *TicketPriority
	NewPriority   TicketPriority
	OldAssigneeID *string
	NewAssigneeID *string
	ChangedAt     time.Time
}
