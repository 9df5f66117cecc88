package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tsystem/tracker/internal/domain"
)

// ProjectRepository encapsulates project persistence. Deleting a project
// cascades to its tickets, history and comments at the schema level.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Project, error)
	Update(ctx context.Context, project *domain.Project) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]domain.Project, error)
}

type projectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository instantiates the repository.
func NewProjectRepository(pool *pgxpool.Pool) ProjectRepository {
	return &projectRepository{pool: pool}
}

const projectColumns = `id, owner_id, name, description, status, created_at`

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) error {
	const query = `
        INSERT INTO projects (owner_id, name, description, status)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return querierFrom(ctx, r.pool).QueryRow(ctx, query,
		project.OwnerID,
		project.Name,
		project.Description,
		project.Status,
	).Scan(&project.ID, &project.CreatedAt)
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	var project domain.Project
	err := querierFrom(ctx, r.pool).QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id=$1`, id).Scan(
		&project.ID,
		&project.OwnerID,
		&project.Name,
		&project.Description,
		&project.Status,
		&project.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Project, error) {
	const query = `SELECT ` + projectColumns + ` FROM projects WHERE owner_id=$1 ORDER BY created_at DESC`
	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProjects(rows)
}

func (r *projectRepository) Update(ctx context.Context, project *domain.Project) error {
	const query = `UPDATE projects SET name=$1, description=$2, status=$3 WHERE id=$4`
	cmd, err := querierFrom(ctx, r.pool).Exec(ctx, query,
		project.Name,
		project.Description,
		project.Status,
		project.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *projectRepository) Delete(ctx context.Context, id string) error {
	cmd, err := querierFrom(ctx, r.pool).Exec(ctx, `DELETE FROM projects WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *projectRepository) ListAll(ctx context.Context) ([]domain.Project, error) {
	rows, err := querierFrom(ctx, r.pool).Query(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProjects(rows)
}

func scanProjects(rows pgx.Rows) ([]domain.Project, error) {
	var result []domain.Project
	for rows.Next() {
		var project domain.Project
		if err := rows.Scan(
			&project.ID,
			&project.OwnerID,
			&project.Name,
			&project.Description,
			&project.Status,
			&project.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, project)
	}
	return result, rows.Err()
}
