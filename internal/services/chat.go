package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Hydarhafiz/vibe-coding-ai/internal/metrics"
	"github.com/Hydarhafiz/vibe-coding-ai/internal/models"
	"github.com/Hydarhafiz/vibe-coding-ai/internal/prompts"
	"github.com/Hydarhafiz/vibe-coding-ai/internal/repository"
)

const noHistoryToSummarize = "No chat history available to summarize."

type projectReader interface {
	GetByID(ctx context.Context, id int64) (*models.Project, error)
}

type messageStore interface {
	Create(ctx context.Context, m *models.Message) error
	ListByProject(ctx context.Context, projectID int64) ([]*models.Message, error)
}

// ChatModel is a blocking call to a model server.
type ChatModel interface {
	Chat(ctx context.Context, model, systemPrompt string, history []models.ChatMessage, userMessage string) (string, error)
}

type messagePublisher interface {
	PublishMessage(ctx context.Context, m *models.Message)
}

// ModelNames selects which served model handles each task.
type ModelNames struct {
	CodeGen string
	Analyze string
	Summary string
}

// ChatService runs a chat request: it stores the user's turn, calls the
// models the action needs, and stores their replies.
type ChatService struct {
	projects projectReader
	messages messageStore
	model    ChatModel
	models   ModelNames
	events   messagePublisher
	logger   zerolog.Logger
}

func NewChatService(projects projectReader, messages messageStore, model ChatModel, names ModelNames, events messagePublisher, logger zerolog.Logger) *ChatService {
	return &ChatService{
		projects: projects,
		messages: messages,
		model:    model,
		models:   names,
		events:   events,
		logger:   logger,
	}
}

// Handle returns the messages it created, oldest first. Validation and
// lookup problems are returned as errors before anything is stored. Once the
// user's message is stored, model and storage failures are not returned:
// they are recorded as a single assistant message describing the failure.
func (s *ChatService) Handle(ctx context.Context, req models.ChatRequest) ([]*models.Message, error) {
	action := req.Action
	if action == "" {
		action = models.ActionGenerateAndAnalyze
	}

	fieldErrors := make(map[string]string)
	switch action {
	case models.ActionGenerateAndAnalyze, models.ActionAnalyzeCodeOnly, models.ActionSummarizeChat:
	default:
		fieldErrors["action"] = "Invalid action specified."
	}
	if req.ProjectID <= 0 {
		fieldErrors["project_id"] = "Project ID is required"
	}
	if strings.TrimSpace(req.MessageContent) == "" {
		fieldErrors["message_content"] = "Message is required"
	}
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Fields: fieldErrors}
	}

	project, err := s.projects.GetByID(ctx, req.ProjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Message: fmt.Sprintf("Project with ID %d not found.", req.ProjectID)}
		}
		return nil, fmt.Errorf("failed to load project %d: %w", req.ProjectID, err)
	}

	language := strings.TrimSpace(req.ProgrammingLanguage)
	if language == "" {
		language = project.ProgrammingLanguage
	}
	if language == "" && action != models.ActionSummarizeChat {
		return nil, &ValidationError{Fields: map[string]string{
			"programming_language": "Programming language is required for code generation and analysis.",
		}}
	}

	userMsg, err := s.save(ctx, project.ID, models.RoleUser, req.MessageContent)
	if err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}

	var replies []*models.Message
	switch action {
	case models.ActionGenerateAndAnalyze:
		replies, err = s.generateAndAnalyze(ctx, project.ID, language, req)
	case models.ActionAnalyzeCodeOnly:
		replies, err = s.analyzeOnly(ctx, project.ID, language, req)
	case models.ActionSummarizeChat:
		replies, err = s.summarize(ctx, project.ID, userMsg.ID, req)
	}

	if err != nil {
		s.logger.Error().Err(err).
			Int64("project_id", project.ID).
			Str("action", action).
			Msg("chat workflow failed")

		errMsg, saveErr := s.save(ctx, project.ID, models.RoleAssistant, "Error: "+err.Error())
		if saveErr != nil {
			return nil, fmt.Errorf("failed to save error message: %w", saveErr)
		}
		return []*models.Message{userMsg, errMsg}, nil
	}

	return append([]*models.Message{userMsg}, replies...), nil
}

// generateAndAnalyze asks the generation model for code, editing the
// editor's current code when there is some, then has the analysis model
// review the result. Both replies are stored only after both calls succeed.
func (s *ChatService) generateAndAnalyze(ctx context.Context, projectID int64, language string, req models.ChatRequest) ([]*models.Message, error) {
	userTurn := req.MessageContent
	if code := req.Code(); strings.TrimSpace(code) != "" {
		userTurn = prompts.ModifyCode(language, code, req.MessageContent)
	}

	generated, err := s.model.Chat(ctx, s.models.CodeGen, prompts.GenerateCode(language), req.ChatHistory, userTurn)
	if err != nil {
		return nil, fmt.Errorf("code generation failed: %w", err)
	}

	analysis, err := s.model.Chat(ctx, s.models.Analyze, prompts.AnalyzeCode(language), nil, generated)
	if err != nil {
		return nil, fmt.Errorf("code analysis failed: %w", err)
	}

	codeMsg, err := s.save(ctx, projectID, models.RoleAssistant, generated)
	if err != nil {
		return nil, err
	}
	analysisMsg, err := s.save(ctx, projectID, models.RoleAnalysis, analysis)
	if err != nil {
		return nil, err
	}

	return []*models.Message{codeMsg, analysisMsg}, nil
}

// analyzeOnly reviews the editor code, or the message itself when no code
// was sent.
func (s *ChatService) analyzeOnly(ctx context.Context, projectID int64, language string, req models.ChatRequest) ([]*models.Message, error) {
	code := req.Code()
	if strings.TrimSpace(code) == "" {
		code = req.MessageContent
	}

	analysis, err := s.model.Chat(ctx, s.models.Analyze, prompts.AnalyzeCode(language), nil, code)
	if err != nil {
		return nil, fmt.Errorf("code analysis failed: %w", err)
	}

	analysisMsg, err := s.save(ctx, projectID, models.RoleAnalysis, analysis)
	if err != nil {
		return nil, err
	}
	return []*models.Message{analysisMsg}, nil
}

// summarize condenses the supplied history, falling back to the stored
// conversation (minus the request that asked for the summary).
func (s *ChatService) summarize(ctx context.Context, projectID, requestMsgID int64, req models.ChatRequest) ([]*models.Message, error) {
	history := req.ChatHistory
	if len(history) == 0 {
		stored, err := s.messages.ListByProject(ctx, projectID)
		if err != nil {
			return nil, fmt.Errorf("failed to load conversation: %w", err)
		}
		for _, m := range stored {
			if m.ID == requestMsgID {
				continue
			}
			history = append(history, models.ChatMessage{Role: m.Role, Content: m.Content})
		}
	}

	summary := noHistoryToSummarize
	if transcript := prompts.Transcript(history); transcript != "" {
		var err error
		summary, err = s.model.Chat(ctx, s.models.Summary, prompts.SummarizeChat(), nil, transcript)
		if err != nil {
			return nil, fmt.Errorf("summarization failed: %w", err)
		}
	}

	summaryMsg, err := s.save(ctx, projectID, models.RoleSummary, summary)
	if err != nil {
		return nil, err
	}
	return []*models.Message{summaryMsg}, nil
}

func (s *ChatService) save(ctx context.Context, projectID int64, role, content string) (*models.Message, error) {
	m := &models.Message{ProjectID: projectID, Role: role, Content: content}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to save %s message: %w", role, err)
	}

	metrics.MessagesCreated.WithLabelValues(role).Inc()
	if s.events != nil {
		s.events.PublishMessage(ctx, m)
	}
	return m, nil
}
