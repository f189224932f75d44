package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Hydarhafiz/vibe-coding-ai/internal/models"
)

// SQLiteProjectRepo is the SQLite counterpart of ProjectRepo, used for
// local development and tests.
type SQLiteProjectRepo struct {
	db *sql.DB
}

func NewSQLiteProjectRepo(db *sql.DB) *SQLiteProjectRepo {
	return &SQLiteProjectRepo{db: db}
}

func (r *SQLiteProjectRepo) Create(ctx context.Context, p *models.Project) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (user_id, project_name, programming_language, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		p.UserID, p.ProjectName, p.ProgrammingLanguage, now, now,
	)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

func (r *SQLiteProjectRepo) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	p := &models.Project{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, project_name, programming_language, created_at, updated_at
		FROM projects WHERE id = ?`, id,
	).Scan(&p.ID, &p.UserID, &p.ProjectName, &p.ProgrammingLanguage, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (r *SQLiteProjectRepo) ListByUser(ctx context.Context, userID string) ([]*models.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, project_name, programming_language, created_at, updated_at
		FROM projects WHERE user_id = ? ORDER BY updated_at DESC, id DESC`, userID,
	)
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

func (r *SQLiteProjectRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type SQLiteMessageRepo struct {
	db *sql.DB
}

func NewSQLiteMessageRepo(db *sql.DB) *SQLiteMessageRepo {
	return &SQLiteMessageRepo{db: db}
}

func (r *SQLiteMessageRepo) Create(ctx context.Context, m *models.Message) error {
	now := time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "UPDATE projects SET updated_at = ? WHERE id = ?", now, m.ProjectID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	res, err = tx.ExecContext(ctx,
		"INSERT INTO messages (project_id, role, content, created_at) VALUES (?, ?, ?, ?)",
		m.ProjectID, m.Role, m.Content, now,
	)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit message: %w", err)
	}

	m.ID = id
	m.CreatedAt = now
	return nil
}

func (r *SQLiteMessageRepo) ListByProject(ctx context.Context, projectID int64) ([]*models.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, project_id, role, content, created_at
		FROM messages WHERE project_id = ? ORDER BY created_at ASC, id ASC`, projectID,
	)
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
