package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Hydarhafiz/vibe-coding-ai/internal/metrics"
	"github.com/Hydarhafiz/vibe-coding-ai/internal/middleware"
	"github.com/Hydarhafiz/vibe-coding-ai/internal/models"
	"github.com/Hydarhafiz/vibe-coding-ai/internal/repository"
)

type projectRepository interface {
	Create(ctx context.Context, p *models.Project) error
	ListByUser(ctx context.Context, userID string) ([]*models.Project, error)
	GetByID(ctx context.Context, id int64) (*models.Project, error)
	Delete(ctx context.Context, id int64) error
}

type messageRepository interface {
	ListByProject(ctx context.Context, projectID int64) ([]*models.Message, error)
}

type ProjectHandler struct {
	projectRepo projectRepository
	messageRepo messageRepository
	logger      zerolog.Logger
}

func NewProjectHandler(projectRepo projectRepository, messageRepo messageRepository, logger zerolog.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectRepo: projectRepo,
		messageRepo: messageRepo,
		logger:      logger,
	}
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	fieldErrors := make(map[string]string)
	if strings.TrimSpace(req.ProjectName) == "" {
		fieldErrors["project_name"] = "Project name is required"
	}
	if strings.TrimSpace(req.ProgrammingLanguage) == "" {
		fieldErrors["programming_language"] = "Programming language is required"
	}
	if len(fieldErrors) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fieldErrors, r))
		return
	}

	project := &models.Project{
		UserID:              middleware.GetUserID(r.Context()),
		ProjectName:         strings.TrimSpace(req.ProjectName),
		ProgrammingLanguage: strings.TrimSpace(req.ProgrammingLanguage),
	}

	if err := h.projectRepo.Create(r.Context(), project); err != nil {
		h.logger.Error().Err(err).Msg("failed to create project")
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create project", r))
		return
	}
	metrics.ProjectsCreated.Inc()

	writeJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	projects, err := h.projectRepo.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("failed to list projects")
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch projects", r))
		return
	}

	writeJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	project, ok := h.loadProject(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}

	if err := h.projectRepo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Project not found", r))
			return
		}
		h.logger.Error().Err(err).Int64("project_id", id).Msg("failed to delete project")
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete project", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Project deleted"})
}

func (h *ProjectHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	project, ok := h.loadProject(w, r)
	if !ok {
		return
	}

	messages, err := h.messageRepo.ListByProject(r.Context(), project.ID)
	if err != nil {
		h.logger.Error().Err(err).Int64("project_id", project.ID).Msg("failed to list messages")
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch messages", r))
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

// loadProject resolves the {id} URL parameter, writing the error response
// itself when the id is malformed or unknown.
func (h *ProjectHandler) loadProject(w http.ResponseWriter, r *http.Request) (*models.Project, bool) {
	id, ok := projectID(w, r)
	if !ok {
		return nil, false
	}

	project, err := h.projectRepo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Project not found", r))
			return nil, false
		}
		h.logger.Error().Err(err).Int64("project_id", id).Msg("failed to load project")
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch project", r))
		return nil, false
	}

	return project, true
}

func projectID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid project ID", r))
		return 0, false
	}
	return id, true
}
