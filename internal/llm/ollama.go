// Package llm talks to the locally hosted Ollama server.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/Hydarhafiz/vibe-coding-ai/internal/metrics"
	"github.com/Hydarhafiz/vibe-coding-ai/internal/models"
)

// Error is the single failure shape of a model call. StatusCode is an
// HTTP status suitable for passing straight to a client.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string { return e.Message }

// OllamaClient sends non-streaming chat requests to Ollama's /api/chat.
type OllamaClient struct {
	client  *api.Client
	baseURL string
}

func NewOllamaClient(baseURL string, timeout time.Duration) (*OllamaClient, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama base URL %q: %w", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid Ollama base URL %q: scheme and host are required", baseURL)
	}

	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: statusTransport{base: http.DefaultTransport},
	}

	return &OllamaClient{
		client:  api.NewClient(base, httpClient),
		baseURL: base.String(),
	}, nil
}

// BuildMessages lays out a conversation for the model: the system prompt
// when non-empty, then history in order, then userMessage as the final turn.
// Stored roles the model does not know ("analysis", "summary") are sent as
// assistant turns.
func BuildMessages(systemPrompt string, history []models.ChatMessage, userMessage string) []api.Message {
	messages := make([]api.Message, 0, len(history)+2)
	if systemPrompt != "" {
		messages = append(messages, api.Message{Role: "system", Content: systemPrompt})
	}
	for _, msg := range history {
		role := msg.Role
		if role != "system" && role != models.RoleUser {
			role = models.RoleAssistant
		}
		messages = append(messages, api.Message{Role: role, Content: msg.Content})
	}
	messages = append(messages, api.Message{Role: "user", Content: userMessage})
	return messages
}

// Chat performs one blocking chat call and returns the assistant's reply.
// Every failure is returned as *Error.
func (c *OllamaClient) Chat(ctx context.Context, model, systemPrompt string, history []models.ChatMessage, userMessage string) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model:    model,
		Messages: BuildMessages(systemPrompt, history, userMessage),
		Stream:   &stream,
	}

	var status int
	ctx = context.WithValue(ctx, statusKey{}, &status)

	start := time.Now()
	var reply strings.Builder
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		reply.WriteString(resp.Message.Content)
		return nil
	})
	metrics.LLMRequestDuration.WithLabelValues(model).Observe(time.Since(start).Seconds())

	switch {
	case status >= http.StatusBadRequest:
		detail := http.StatusText(status)
		if err != nil {
			detail = err.Error()
		}
		err = &Error{StatusCode: status, Message: fmt.Sprintf("Ollama API error: %s", detail)}
	case status != 0 && err != nil:
		err = &Error{StatusCode: http.StatusInternalServerError, Message: fmt.Sprintf("Ollama returned a malformed response: %v", err)}
	case err == nil && reply.Len() == 0:
		err = &Error{StatusCode: http.StatusInternalServerError, Message: "Ollama response missing expected 'message.content'."}
	}
	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(model, "error").Inc()
		return "", c.translate(err)
	}

	metrics.LLMRequestsTotal.WithLabelValues(model, "ok").Inc()
	return reply.String(), nil
}

func (c *OllamaClient) translate(err error) error {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr
	}

	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return &Error{
			StatusCode: statusErr.StatusCode,
			Message:    fmt.Sprintf("Ollama API error: %s", statusErr.Error()),
		}
	}

	return &Error{
		StatusCode: http.StatusInternalServerError,
		Message:    fmt.Sprintf("Ollama request failed: %v - Is Ollama running and model pulled? Check OLLAMA_BASE_URL: %s", err, c.baseURL),
	}
}

type statusKey struct{}

// statusTransport records the response status into the *int stored under
// statusKey in the request context, so non-2xx replies keep their status
// whatever the client library makes of the body.
type statusTransport struct {
	base http.RoundTripper
}

func (t statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err == nil {
		if status, ok := req.Context().Value(statusKey{}).(*int); ok {
			*status = resp.StatusCode
		}
	}
	return resp, err
}
