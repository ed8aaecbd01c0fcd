// Package conversation is the in-memory, ordered transcript of a chat session.
package conversation

import (
	"encoding/json"
	"fmt"
	"time"
)

// Sender identifies who produced an utterance.
type Sender int

const (
	User Sender = iota
	Assistant
)

// TimeLayout is how utterance timestamps are shown.
const TimeLayout = "15:04:05"

func (s Sender) String() string {
	switch s {
	case User:
		return "user"
	case Assistant:
		return "assistant"
	default:
		return fmt.Sprintf("sender(%d)", int(s))
	}
}

// Glyph is the icon displayed next to the sender's name.
func (s Sender) Glyph() string {
	if s == User {
		return "🧑"
	}
	return "🤖"
}

// MarshalJSON encodes the sender by name.
func (s Sender) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts the names produced by MarshalJSON.
func (s *Sender) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "user":
		*s = User
	case "assistant":
		*s = Assistant
	default:
		return fmt.Errorf("unknown sender %q", name)
	}
	return nil
}

// Utterance is one recorded message. It is never modified after creation.
type Utterance struct {
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewUtterance stamps text with the given time.
func NewUtterance(sender Sender, text string, at time.Time) Utterance {
	return Utterance{Sender: sender, Text: text, Timestamp: at}
}

// Clock returns the time-of-day label, e.g. "14:03:59".
func (u Utterance) Clock() string {
	return u.Timestamp.Format(TimeLayout)
}
