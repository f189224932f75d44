package models

// Chat actions accepted by the chat endpoint. An empty action means
// ActionGenerateAndAnalyze.
const (
	ActionGenerateAndAnalyze = "generate_and_analyze"
	ActionAnalyzeCodeOnly    = "analyze_code_only"
	ActionSummarizeChat      = "summarize_chat"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	ProjectID           int64         `json:"project_id"`
	UserID              string        `json:"user_id"`
	MessageContent      string        `json:"message_content"`
	Action              string        `json:"action"`
	ProgrammingLanguage string        `json:"programming_language"`
	ChatHistory         []ChatMessage `json:"chat_history"`
	CurrentCode         *string       `json:"current_code"`
}

// Code returns the editor code sent with the request, or "" when absent.
func (r *ChatRequest) Code() string {
	if r.CurrentCode == nil {
		return ""
	}
	return *r.CurrentCode
}
