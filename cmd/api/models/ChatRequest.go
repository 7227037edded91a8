package models

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a validated conversation ready to be relayed
type ChatRequest struct {
	Messages  []Message `json:"messages"`
	Transport string    `json:"-"`
}
