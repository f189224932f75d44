package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Hydarhafiz/vibe-coding-ai/internal/models"
)

type ProjectRepo struct {
	pool *pgxpool.Pool
}

func NewProjectRepo(pool *pgxpool.Pool) *ProjectRepo {
	return &ProjectRepo{pool: pool}
}

func (r *ProjectRepo) Create(ctx context.Context, p *models.Project) error {
	query := `INSERT INTO projects (user_id, project_name, programming_language)
		VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		p.UserID, p.ProjectName, p.ProgrammingLanguage,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *ProjectRepo) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	p := &models.Project{}
	query := `SELECT id, user_id, project_name, programming_language, created_at, updated_at
		FROM projects WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.UserID, &p.ProjectName, &p.ProgrammingLanguage, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

// ListByUser returns the user's projects, most recently updated first.
func (r *ProjectRepo) ListByUser(ctx context.Context, userID string) ([]*models.Project, error) {
	query := `SELECT id, user_id, project_name, programming_language, created_at, updated_at
		FROM projects WHERE user_id = $1 ORDER BY updated_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []*models.Project{}
	for rows.Next() {
		p := &models.Project{}
		if err := rows.Scan(&p.ID, &p.UserID, &p.ProjectName, &p.ProgrammingLanguage, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}

	return projects, rows.Err()
}

// Delete removes the project; its messages go with it through the
// ON DELETE CASCADE foreign key.
func (r *ProjectRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM projects WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
