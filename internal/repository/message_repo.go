package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Hydarhafiz/vibe-coding-ai/internal/models"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

// Create appends m to its project and bumps the project's updated_at in the
// same statement. ErrNotFound means the project does not exist.
func (r *MessageRepo) Create(ctx context.Context, m *models.Message) error {
	query := `WITH touched AS (
			UPDATE projects SET updated_at = NOW() WHERE id = $1 RETURNING id
		)
		INSERT INTO messages (project_id, role, content)
		SELECT id, $2, $3 FROM touched
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query, m.ProjectID, m.Role, m.Content).Scan(&m.ID, &m.CreatedAt)
	return notFound(err)
}

// ListByProject returns the project's messages in the order they were created.
func (r *MessageRepo) ListByProject(ctx context.Context, projectID int64) ([]*models.Message, error) {
	query := `SELECT id, project_id, role, content, created_at
		FROM messages WHERE project_id = $1 ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []*models.Message{}
	for rows.Next() {
		m := &models.Message{}
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}
