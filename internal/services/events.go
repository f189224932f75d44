package services

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Hydarhafiz/vibe-coding-ai/internal/models"
)

// EventPublisher announces newly persisted messages on the project's Redis
// channel. A publisher without a Redis client does nothing.
type EventPublisher struct {
	redis  *redis.Client
	logger zerolog.Logger
}

func NewEventPublisher(redisClient *redis.Client, logger zerolog.Logger) *EventPublisher {
	return &EventPublisher{redis: redisClient, logger: logger}
}

// Enabled reports whether events actually leave the process.
func (p *EventPublisher) Enabled() bool {
	return p != nil && p.redis != nil
}

func (p *EventPublisher) PublishMessage(ctx context.Context, m *models.Message) {
	if !p.Enabled() {
		return
	}

	data, err := json.Marshal(models.WSMessage{Type: models.WSMessageCreated, Payload: m})
	if err != nil {
		p.logger.Error().Err(err).Int64("message_id", m.ID).Msg("failed to encode message event")
		return
	}

	if err := p.redis.Publish(ctx, models.ProjectChannel(m.ProjectID), string(data)).Err(); err != nil {
		p.logger.Warn().Err(err).Int64("project_id", m.ProjectID).Msg("failed to publish message event")
	}
}
