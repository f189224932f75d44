package models

import "time"

// Message roles. Anything the models produce is stored under one of the
// last three so the frontend can render code, analysis and summaries apart.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleAnalysis  = "analysis"
	RoleSummary   = "summary"
)

// Message is one immutable turn of a project's conversation.
type Message struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// IsValidRole reports whether role is one of the stored message roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleUser, RoleAssistant, RoleAnalysis, RoleSummary:
		return true
	}
	return false
}
