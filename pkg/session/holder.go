package session

import "sync"

// Holder owns the one active session of a process. The session is created
// lazily on first use and discarded by End.
type Holder struct {
	mu      sync.Mutex
	current *Session
	theme   Theme
}

// NewHolder returns a Holder whose sessions start with theme.
func NewHolder(theme Theme) *Holder {
	return &Holder{theme: theme}
}

// Get returns the active session, creating it if needed.
func (h *Holder) Get() *Session {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.current == nil {
		h.current = New(h.theme)
	}
	return h.current
}

// Active reports whether a session currently exists.
func (h *Holder) Active() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current != nil
}

// End tears the active session down. The next Get starts a fresh one.
func (h *Holder) End() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = nil
}
