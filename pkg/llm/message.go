package llm

// Role names who authored a message in a chat request.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a chat request or response.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
