// Package prompt formats a raw user query into the two-message structure
// the model backends expect.
package prompt

import (
	"fmt"

	"github.com/papercomputeco/chatsphere/pkg/llm"
)

// DefaultPersona is the assistant name used in the system message.
const DefaultPersona = "ChatSphere"

const (
	systemFormat = "You are a helpful AI assistant. Your name is %s."
	userPrefix   = "User query: "
)

// Template is the fixed system persona + user query template.
type Template struct {
	persona string
}

// New returns a Template for the given persona name. An empty name falls
// back to DefaultPersona.
func New(persona string) Template {
	if persona == "" {
		persona = DefaultPersona
	}
	return Template{persona: persona}
}

// Persona returns the assistant name the template announces.
func (t Template) Persona() string {
	if t.persona == "" {
		return DefaultPersona
	}
	return t.persona
}

// Format embeds query verbatim after the constant system message.
func (t Template) Format(query string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: fmt.Sprintf(systemFormat, t.Persona())},
		{Role: llm.RoleUser, Content: userPrefix + query},
	}
}
