package repository

import (
	"context"

	"github.com/Hydarhafiz/vibe-coding-ai/internal/models"
)

// ProjectStore is implemented by ProjectRepo and SQLiteProjectRepo.
type ProjectStore interface {
	Create(ctx context.Context, p *models.Project) error
	GetByID(ctx context.Context, id int64) (*models.Project, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Project, error)
	Delete(ctx context.Context, id int64) error
}

// MessageStore is implemented by MessageRepo and SQLiteMessageRepo.
type MessageStore interface {
	Create(ctx context.Context, m *models.Message) error
	ListByProject(ctx context.Context, projectID int64) ([]*models.Message, error)
}

var (
	_ ProjectStore = (*ProjectRepo)(nil)
	_ ProjectStore = (*SQLiteProjectRepo)(nil)
	_ MessageStore = (*MessageRepo)(nil)
	_ MessageStore = (*SQLiteMessageRepo)(nil)
)
