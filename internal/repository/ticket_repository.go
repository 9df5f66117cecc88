package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tsystem/tracker/internal/domain"
)

// TicketRepository encapsulates ticket persistence. Tickets are always
// addressed together with their project id so a ticket can never be
// reached through a project it does not belong to.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByProject(ctx context.Context, ticketID, projectID string) (*domain.Ticket, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.Ticket, error)
	ListByAssignee(ctx context.Context, assigneeID string) ([]domain.Ticket, error)
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, project_id, creator_id, assignee_id, name, description, type, priority, state, created_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (project_id, creator_id, assignee_id, name, description, type, priority, state)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`
	return querierFrom(ctx, r.pool).QueryRow(ctx, query,
		ticket.ProjectID,
		ticket.CreatorID,
		ticket.AssigneeID,
		ticket.Name,
		ticket.Description,
		ticket.Type,
		ticket.Priority,
		ticket.State,
	).Scan(&ticket.ID, &ticket.CreatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET assignee_id=$1, name=$2, description=$3, type=$4, priority=$5, state=$6
        WHERE id=$7`
	cmd, err := querierFrom(ctx, r.pool).Exec(ctx, query,
		ticket.AssigneeID,
		ticket.Name,
		ticket.Description,
		ticket.Type,
		ticket.Priority,
		ticket.State,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketRepository) GetByProject(ctx context.Context, ticketID, projectID string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1 AND project_id=$2`
	var ticket domain.Ticket
	err := querierFrom(ctx, r.pool).QueryRow(ctx, query, ticketID, projectID).Scan(
		&ticket.ID,
		&ticket.ProjectID,
		&ticket.CreatorID,
		&ticket.AssigneeID,
		&ticket.Name,
		&ticket.Description,
		&ticket.Type,
		&ticket.Priority,
		&ticket.State,
		&ticket.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListByProject(ctx context.Context, projectID string) ([]domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE project_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, query, projectID)
}

func (r *ticketRepository) ListByAssignee(ctx context.Context, assigneeID string) ([]domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE assignee_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, query, assigneeID)
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := querierFrom(ctx, r.pool).Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketRepository) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	return r.list(ctx, `SELECT `+ticketColumns+` FROM tickets ORDER BY created_at ASC`)
}

func (r *ticketRepository) list(ctx context.Context, query string, args ...any) ([]domain.Ticket, error) {
	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.ProjectID,
			&ticket.CreatorID,
			&ticket.AssigneeID,
			&ticket.Name,
			&ticket.Description,
			&ticket.Type,
			&ticket.Priority,
			&ticket.State,
			&ticket.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
