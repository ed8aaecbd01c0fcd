package llm

// ChatRequest is the body of an Ollama-compatible /api/chat call.
type ChatRequest struct {
	Model    string    `json:"model"`            // Model name (e.g., "llama3")
	Messages []Message `json:"messages"`         // System persona followed by the user query
	Stream   *bool     `json:"stream,omitempty"` // Always false: one request, one response

	Options *Options `json:"options,omitempty"`
}

// NewChatRequest builds a non-streaming request.
func NewChatRequest(model string, messages []Message, opts *Options) *ChatRequest {
	streaming := false
	return &ChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   &streaming,
		Options:  opts,
	}
}
