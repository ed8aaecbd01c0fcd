// Package llm holds the wire representations exchanged with a local
// Ollama-compatible model server, plus the error body the HTTP surface returns.
package llm

// ErrorResponse is a JSON error body. Local model servers reply with it on
// failure and the ChatSphere web API uses the same shape.
type ErrorResponse struct {
	Error string `json:"error"`
}
