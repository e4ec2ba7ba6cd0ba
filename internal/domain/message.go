// Package domain contains core domain types for the sales coach.
package domain

// Message roles mirror the chat-completion wire format.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged entry in a session transcript.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
