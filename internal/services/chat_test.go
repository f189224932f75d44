package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Hydarhafiz/vibe-coding-ai/internal/llm"
	"github.com/Hydarhafiz/vibe-coding-ai/internal/models"
	"github.com/Hydarhafiz/vibe-coding-ai/internal/repository"
)

type stubProjects struct {
	projects map[int64]*models.Project
	err      error
}

func (s *stubProjects) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

type memoryMessages struct {
	stored    []*models.Message
	nextID    int64
	failRoles map[string]bool
}

func (m *memoryMessages) Create(ctx context.Context, msg *models.Message) error {
	if m.failRoles[msg.Role] {
		return errors.New("disk full")
	}
	m.nextID++
	msg.ID = m.nextID
	msg.CreatedAt = time.Now()
	m.stored = append(m.stored, msg)
	return nil
}

func (m *memoryMessages) ListByProject(ctx context.Context, projectID int64) ([]*models.Message, error) {
	var out []*models.Message
	for _, msg := range m.stored {
		if msg.ProjectID == projectID {
			out = append(out, msg)
		}
	}
	return out, nil
}

type modelCall struct {
	model        string
	systemPrompt string
	history      []models.ChatMessage
	userMessage  string
}

type scriptedModel struct {
	replies map[string]string
	errs    map[string]error
	calls   []modelCall
}

func (s *scriptedModel) Chat(ctx context.Context, model, systemPrompt string, history []models.ChatMessage, userMessage string) (string, error) {
	s.calls = append(s.calls, modelCall{model, systemPrompt, history, userMessage})
	if err := s.errs[model]; err != nil {
		return "", err
	}
	return s.replies[model], nil
}

type recordingPublisher struct {
	published []*models.Message
}

func (r *recordingPublisher) PublishMessage(ctx context.Context, m *models.Message) {
	r.published = append(r.published, m)
}

var testModels = ModelNames{CodeGen: "qwen:7b-chat", Analyze: "llama3:8b", Summary: "llama3:8b-summary"}

func newTestChatService(model *scriptedModel) (*ChatService, *memoryMessages, *recordingPublisher) {
	projects := &stubProjects{projects: map[int64]*models.Project{
		1: {ID: 1, UserID: "demo", ProjectName: "demo", ProgrammingLanguage: "Python"},
	}}
	messages := &memoryMessages{}
	events := &recordingPublisher{}
	return NewChatService(projects, messages, model, testModels, events, zerolog.Nop()), messages, events
}

func roles(msgs []*models.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Role
	}
	return out
}

func assertRoles(t *testing.T, msgs []*models.Message, want ...string) {
	t.Helper()
	got := roles(msgs)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected roles %v, got %v", want, got)
	}
}

func TestHandle_GenerateWithoutCurrentCode(t *testing.T) {
	model := &scriptedModel{replies: map[string]string{
		"qwen:7b-chat": "def add(a, b):\n    return a + b",
		"llama3:8b":    "- Nice and simple.",
	}}
	svc, stored, events := newTestChatService(model)

	history := []models.ChatMessage{{Role: "user", Content: "hello"}, {Role: "assistant", Content: "hi"}}
	out, err := svc.Handle(context.Background(), models.ChatRequest{
		ProjectID:           1,
		MessageContent:      "write a function",
		ProgrammingLanguage: "Python",
		ChatHistory:         history,
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	assertRoles(t, out, models.RoleUser, models.RoleAssistant, models.RoleAnalysis)
	if out[1].Content != "def add(a, b):\n    return a + b" {
		t.Errorf("unexpected generated content %q", out[1].Content)
	}
	assertRoles(t, stored.stored, models.RoleUser, models.RoleAssistant, models.RoleAnalysis)
	if len(events.published) != 3 {
		t.Errorf("expected 3 published events, got %d", len(events.published))
	}

	if len(model.calls) != 2 {
		t.Fatalf("expected 2 model calls, got %d", len(model.calls))
	}
	gen, analyze := model.calls[0], model.calls[1]
	if gen.model != "qwen:7b-chat" || gen.userMessage != "write a function" || len(gen.history) != 2 {
		t.Errorf("unexpected generation call %+v", gen)
	}
	if !strings.Contains(gen.systemPrompt, "Python") {
		t.Errorf("expected language in generation prompt")
	}
	if analyze.model != "llama3:8b" || analyze.userMessage != out[1].Content || len(analyze.history) != 0 {
		t.Errorf("expected analysis of generated code without history, got %+v", analyze)
	}
}

func TestHandle_GenerateWithCurrentCode(t *testing.T) {
	model := &scriptedModel{replies: map[string]string{"qwen:7b-chat": "updated", "llama3:8b": "ok"}}
	svc, _, _ := newTestChatService(model)

	code := "print('hi')"
	_, err := svc.Handle(context.Background(), models.ChatRequest{
		ProjectID:      1,
		MessageContent: "add a loop",
		Action:         models.ActionGenerateAndAnalyze,
		CurrentCode:    &code,
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	gen := model.calls[0]
	if !strings.Contains(gen.userMessage, code) || !strings.Contains(gen.userMessage, "add a loop") {
		t.Errorf("expected generation prompt to embed code and request, got %q", gen.userMessage)
	}
	// Language falls back to the project's.
	if !strings.Contains(gen.systemPrompt, "Python") {
		t.Errorf("expected project language in prompt, got %q", gen.systemPrompt)
	}
}

func TestHandle_ModelFailureBecomesAssistantMessage(t *testing.T) {
	model := &scriptedModel{errs: map[string]error{
		"qwen:7b-chat": &llm.Error{StatusCode: http.StatusInternalServerError, Message: "Ollama request failed: connection refused"},
	}}
	svc, stored, _ := newTestChatService(model)

	out, err := svc.Handle(context.Background(), models.ChatRequest{
		ProjectID:      1,
		MessageContent: "write a function",
	})
	if err != nil {
		t.Fatalf("expected failure to be absorbed, got %v", err)
	}

	assertRoles(t, out, models.RoleUser, models.RoleAssistant)
	if !strings.Contains(out[1].Content, "connection refused") {
		t.Errorf("expected failure description, got %q", out[1].Content)
	}
	if len(stored.stored) != 2 {
		t.Errorf("expected exactly one message beyond the user's, got %d stored", len(stored.stored))
	}
}

func TestHandle_AnalysisFailureStoresNoPartialReplies(t *testing.T) {
	model := &scriptedModel{
		replies: map[string]string{"qwen:7b-chat": "code"},
		errs:    map[string]error{"llama3:8b": &llm.Error{StatusCode: http.StatusNotFound, Message: "Ollama API error: model not found"}},
	}
	svc, stored, _ := newTestChatService(model)

	out, err := svc.Handle(context.Background(), models.ChatRequest{ProjectID: 1, MessageContent: "write a function"})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	assertRoles(t, out, models.RoleUser, models.RoleAssistant)
	assertRoles(t, stored.stored, models.RoleUser, models.RoleAssistant)
	if !strings.Contains(out[1].Content, "model not found") {
		t.Errorf("unexpected error content %q", out[1].Content)
	}
}

func TestHandle_SaveFailureAfterGeneration(t *testing.T) {
	model := &scriptedModel{replies: map[string]string{"qwen:7b-chat": "code", "llama3:8b": "review"}}
	svc, stored, _ := newTestChatService(model)
	stored.failRoles = map[string]bool{models.RoleAnalysis: true}

	out, err := svc.Handle(context.Background(), models.ChatRequest{ProjectID: 1, MessageContent: "write"})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if out[len(out)-1].Role != models.RoleAssistant || !strings.Contains(out[len(out)-1].Content, "disk full") {
		t.Fatalf("expected trailing error message, got %+v", out[len(out)-1])
	}
}

func TestHandle_AnalyzeCodeOnly(t *testing.T) {
	model := &scriptedModel{replies: map[string]string{"llama3:8b": "- consider error handling"}}
	svc, _, _ := newTestChatService(model)

	code := "x = 1/0"
	out, err := svc.Handle(context.Background(), models.ChatRequest{
		ProjectID:      1,
		MessageContent: "review this",
		Action:         models.ActionAnalyzeCodeOnly,
		CurrentCode:    &code,
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	assertRoles(t, out, models.RoleUser, models.RoleAnalysis)
	if len(model.calls) != 1 || model.calls[0].userMessage != code {
		t.Fatalf("expected one analysis call on the editor code, got %+v", model.calls)
	}
}

func TestHandle_SummarizeUsesSuppliedHistory(t *testing.T) {
	model := &scriptedModel{replies: map[string]string{"llama3:8b-summary": "- built a parser"}}
	svc, _, _ := newTestChatService(model)

	out, err := svc.Handle(context.Background(), models.ChatRequest{
		ProjectID:      1,
		MessageContent: "summarize",
		Action:         models.ActionSummarizeChat,
		ChatHistory: []models.ChatMessage{
			{Role: "user", Content: "write a parser"},
			{Role: "assistant", Content: "func parse() {}"},
		},
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	assertRoles(t, out, models.RoleUser, models.RoleSummary)
	call := model.calls[0]
	if call.userMessage != "user: write a parser\nassistant: func parse() {}" || len(call.history) != 0 {
		t.Fatalf("expected transcript as the only turn, got %+v", call)
	}
}

func TestHandle_SummarizeFallsBackToStoredConversation(t *testing.T) {
	model := &scriptedModel{replies: map[string]string{"llama3:8b-summary": "- summary"}}
	svc, stored, _ := newTestChatService(model)
	stored.Create(context.Background(), &models.Message{ProjectID: 1, Role: models.RoleUser, Content: "write a parser"})
	stored.Create(context.Background(), &models.Message{ProjectID: 1, Role: models.RoleAssistant, Content: "done"})

	_, err := svc.Handle(context.Background(), models.ChatRequest{
		ProjectID:      1,
		MessageContent: "summarize please",
		Action:         models.ActionSummarizeChat,
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if got := model.calls[0].userMessage; got != "user: write a parser\nassistant: done" {
		t.Fatalf("unexpected transcript %q", got)
	}
}

func TestHandle_SummarizeEmptyConversation(t *testing.T) {
	model := &scriptedModel{}
	svc, _, _ := newTestChatService(model)

	out, err := svc.Handle(context.Background(), models.ChatRequest{
		ProjectID:      1,
		MessageContent: "summarize",
		Action:         models.ActionSummarizeChat,
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if len(model.calls) != 0 {
		t.Fatalf("expected no model call, got %d", len(model.calls))
	}
	if out[1].Role != models.RoleSummary || out[1].Content != noHistoryToSummarize {
		t.Fatalf("unexpected summary message %+v", out[1])
	}
}

func TestHandle_Validation(t *testing.T) {
	tests := []struct {
		name  string
		req   models.ChatRequest
		field string
	}{
		{"unknown action", models.ChatRequest{ProjectID: 1, MessageContent: "x", Action: "dance"}, "action"},
		{"missing message", models.ChatRequest{ProjectID: 1, MessageContent: "   "}, "message_content"},
		{"missing project", models.ChatRequest{MessageContent: "x"}, "project_id"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, stored, _ := newTestChatService(&scriptedModel{})

			_, err := svc.Handle(context.Background(), tc.req)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := vErr.Fields[tc.field]; !ok {
				t.Errorf("expected field %q in %v", tc.field, vErr.Fields)
			}
			if len(stored.stored) != 0 {
				t.Errorf("expected nothing stored, got %d", len(stored.stored))
			}
		})
	}
}

func TestHandle_LanguageRequiredWhenProjectHasNone(t *testing.T) {
	projects := &stubProjects{projects: map[int64]*models.Project{2: {ID: 2, ProjectName: "bare"}}}
	svc := NewChatService(projects, &memoryMessages{}, &scriptedModel{}, testModels, nil, zerolog.Nop())

	_, err := svc.Handle(context.Background(), models.ChatRequest{ProjectID: 2, MessageContent: "write"})
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Fields["programming_language"] == "" {
		t.Fatalf("expected programming_language validation error, got %v", err)
	}
}

func TestHandle_UnknownProject(t *testing.T) {
	svc, _, _ := newTestChatService(&scriptedModel{})

	_, err := svc.Handle(context.Background(), models.ChatRequest{ProjectID: 99, MessageContent: "x"})
	var nfErr *NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestHandle_UserMessageSaveFailureIsReturned(t *testing.T) {
	svc, stored, _ := newTestChatService(&scriptedModel{})
	stored.failRoles = map[string]bool{models.RoleUser: true}

	if _, err := svc.Handle(context.Background(), models.ChatRequest{ProjectID: 1, MessageContent: "x"}); err == nil {
		t.Fatal("expected error when the user message cannot be stored")
	}
}
