// Package session holds the per-session chat state that survives between
// UI events: the transcript, the pending input slot, the theme and the
// last inline notice.
package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/chatsphere/pkg/conversation"
)

// Theme is one of the two fixed visual themes.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ParseTheme accepts "dark" or "light" in any case.
func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeDark:
		return ThemeDark, nil
	case ThemeLight:
		return ThemeLight, nil
	default:
		return "", fmt.Errorf("unknown theme %q (valid: dark, light)", s)
	}
}

// Label is the theme's display name.
func (t Theme) Label() string {
	if t == ThemeLight {
		return "☀️ Light"
	}
	return "🌑 Dark"
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// NoticeLevel grades an inline notice.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient message shown next to the controls, never in the
// transcript.
type Notice struct {
	Level NoticeLevel `json:"level"`
	Text  string      `json:"text"`
}

// Session is the explicit context object a turn runs against.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	// Conversation is the transcript; it carries its own lock.
	Conversation *conversation.Log

	mu      sync.Mutex
	pending string
	theme   Theme
	notice  *Notice

	// turnMu serializes turns on this session.
	turnMu sync.Mutex
}

// New creates an empty session with the given theme.
func New(theme Theme) *Session {
	if theme == "" {
		theme = ThemeDark
	}
	return &Session{
		ID:           uuid.New(),
		CreatedAt:    time.Now(),
		Conversation: conversation.NewLog(),
		theme:        theme,
	}
}

// Pending returns the not-yet-submitted input.
func (s *Session) Pending() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// SetPending replaces the pending input.
func (s *Session) SetPending(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = text
}

// ClearPending empties the pending input.
func (s *Session) ClearPending() {
	s.SetPending("")
}

// Theme returns the current theme.
func (s *Session) Theme() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// SetTheme switches the theme.
func (s *Session) SetTheme(t Theme) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = t
}

// ToggleTheme flips between the two themes and returns the new one.
func (s *Session) ToggleTheme() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = s.theme.Toggle()
	return s.theme
}

// Notify sets the inline notice, replacing any previous one.
func (s *Session) Notify(level NoticeLevel, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = &Notice{Level: level, Text: text}
}

// Notice returns the current notice, if any.
func (s *Session) Notice() *Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notice == nil {
		return nil
	}
	n := *s.notice
	return &n
}

// TakeNotice returns the current notice and clears it, so it shows once.
func (s *Session) TakeNotice() *Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.notice
	s.notice = nil
	return n
}

// Reset clears the transcript.
func (s *Session) Reset() {
	s.Conversation.Reset()
}

// LockTurn blocks until no other turn is running on this session and
// returns the matching unlock.
func (s *Session) LockTurn() func() {
	s.turnMu.Lock()
	return s.turnMu.Unlock
}
