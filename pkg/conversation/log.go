package conversation

import "sync"

// Log is an append-only list of utterances. Reset is the only way to
// remove entries. It is safe to read from a renderer while a turn appends.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{}
}

// Append records utterances in order.
func (l *Log) Append(us ...Utterance) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, u := range us {
		var parent *Entry
		if n := len(l.entries); n > 0 {
			parent = &l.entries[n-1]
		}
		l.entries = append(l.entries, newEntry(u, parent))
	}
}

// Len is the number of recorded utterances.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Utterances returns a snapshot in display order.
func (l *Log) Utterances() []Utterance {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Utterance, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.Utterance
	}
	return out
}

// Entries returns a snapshot including the digest chain.
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Head is the hash of the newest entry, or "" when the log is empty.
func (l *Log) Head() string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.entries) == 0 {
		return ""
	}
	return l.entries[len(l.entries)-1].Hash
}

// Reset empties the log.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}
