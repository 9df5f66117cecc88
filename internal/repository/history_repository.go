package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tsystem/tracker/internal/domain"
)

// TicketHistoryRepository stores the append-only audit trail. There are
// no update or delete operations; entries vanish only when their ticket
// is deleted and the schema cascade removes them.
type TicketHistoryRepository interface {
	Append(ctx context.Context, entry *domain.TicketHistory) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error)
	ListAll(ctx context.Context) ([]domain.TicketHistory, error)
}

type ticketHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewTicketHistoryRepository instantiates the repository.
func NewTicketHistoryRepository(pool *pgxpool.Pool) TicketHistoryRepository {
	return &ticketHistoryRepository{pool: pool}
}

const historyColumns = `id, ticket_id, changed_by_id, old_state, new_state, old_priority, new_priority, old_assignee_id, new_assignee_id, changed_at`

func (r *ticketHistoryRepository) Append(ctx context.Context, entry *domain.TicketHistory) error {
	const query = `
        INSERT INTO ticket_history (ticket_id, changed_by_id, old_state, new_state, old_priority, new_priority, old_assignee_id, new_assignee_id, changed_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id`
	return querierFrom(ctx, r.pool).QueryRow(ctx, query,
		entry.TicketID,
		entry.ChangedByID,
		entry.OldState,
		entry.NewState,
		entry.OldPriority,
		entry.NewPriority,
		entry.OldAssigneeID,
		entry.NewAssigneeID,
		entry.ChangedAt,
	).Scan(&entry.ID)
}

// ListByTicket returns entries ascending by change time; the seq column
// breaks ties in insertion order.
func (r *ticketHistoryRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	const query = `SELECT ` + historyColumns + ` FROM ticket_history WHERE ticket_id=$1 ORDER BY changed_at ASC, seq ASC`
	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHistory(rows)
}

func (r *ticketHistoryRepository) ListAll(ctx context.Context) ([]domain.TicketHistory, error) {
	const query = `SELECT ` + historyColumns + ` FROM ticket_history ORDER BY changed_at ASC, seq ASC`
	rows, err := querierFrom(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHistory(rows)
}

func scanHistory(rows pgx.Rows) ([]domain.TicketHistory, error) {
	var result []domain.TicketHistory
	for rows.Next() {
		var entry domain.TicketHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.ChangedByID,
			&entry.OldState,
			&entry.NewState,
			&entry.OldPriority,
			&entry.NewPriority,
			&entry.OldAssigneeID,
			&entry.NewAssigneeID,
			&entry.ChangedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
