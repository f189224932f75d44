package models

import "fmt"

// WebSocket message types
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

const WSMessageCreated = "message_created"

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ProjectChannel is the pub/sub channel carrying a project's live updates.
func ProjectChannel(projectID int64) string {
	return fmt.Sprintf("project_updates:%d", projectID)
}
