// Package prompts holds the system prompts and prompt builders sent to the
// code generation, analysis and summarization models.
package prompts

import (
	"fmt"
	"strings"

	"github.com/Hydarhafiz/vibe-coding-ai/internal/models"
)

// GenerateCode is the system prompt for the code generation model.
func GenerateCode(language string) string {
	return fmt.Sprintf("You are a helpful coding assistant specializing in %[1]s. "+
		"Generate clean, well-commented, and functional code for the user's request. "+
		"Always provide runnable code blocks. If the user asks for a specific feature, provide the code for that feature directly. "+
		"Include necessary imports and assume a modern development environment for %[1]s.", language)
}

// ModifyCode is the user turn sent to the generation model when the editor
// already holds code: the request is applied to that code rather than
// answered from scratch.
func ModifyCode(language, currentCode, request string) string {
	return fmt.Sprintf("Here is the current %s code from the editor:\n\n```%s\n%s\n```\n\n"+
		"Apply the following request to this code and return the complete updated code:\n%s",
		language, strings.ToLower(language), strings.TrimRight(currentCode, "\n"), request)
}

// AnalyzeCode is the system prompt for the code analysis model.
func AnalyzeCode(language string) string {
	return fmt.Sprintf("You are a friendly and encouraging code analysis expert for %s. "+
		"Your role is to act as a virtual pair programmer. "+
		"Provide a concise, conversational analysis of the following code snippet. "+
		"Start with a positive comment about what's good about the code. "+
		"Then, suggest specific, actionable improvements for potential bugs, security concerns, or best practices. "+
		"Keep the response brief, focusing on the most important points. "+
		"Do not rewrite the code unless a simple, one-line change would be a significant improvement. "+
		"Format your response in a conversational tone, using bullet points for clarity.", language)
}

// SummarizeChat is the system prompt for the summarization model.
func SummarizeChat() string {
	return "You are a chat summarization expert. " +
		"Summarize the entire provided chat history (user and assistant messages) into a concise bullet-point list of key topics discussed, " +
		"decisions made, and code snippets generated. Focus on the core aspects of the coding task."
}

// Transcript flattens a conversation into "role: content" lines.
func Transcript(history []models.ChatMessage) string {
	lines := make([]string, 0, len(history))
	for _, msg := range history {
		lines = append(lines, msg.Role+": "+msg.Content)
	}
	return strings.Join(lines, "\n")
}
