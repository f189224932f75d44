package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Hydarhafiz/vibe-coding-ai/internal/models"
)

type chatService interface {
	Handle(ctx context.Context, req models.ChatRequest) ([]*models.Message, error)
}

type ChatHandler struct {
	chatService chatService
	logger      zerolog.Logger
}

func NewChatHandler(chatService chatService, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// Chat runs one chat turn and returns every message it created, oldest
// first.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	messages, err := h.chatService.Handle(r.Context(), req)
	if err != nil {
		h.logger.Warn().Err(err).Int64("project_id", req.ProjectID).Msg("chat request rejected")
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messages)
}
