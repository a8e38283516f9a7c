package cognition

import (
	"sync"
	"time"
)

// StreamCap bounds the stream-of-consciousness log.
const StreamCap = 200

// StreamEntry is one line of the internal stream-of-consciousness log.
type StreamEntry struct {
	At   time.Time `json:"at"`
	Note string    `json:"note"`
}

// StreamLog is a bounded append-only log updated on every production cycle.
// Hosts read it to show what the agent is "thinking about".
type StreamLog struct {
	mu      sync.Mutex
	entries []StreamEntry
}

// NewStreamLog returns an empty log.
func NewStreamLog() *StreamLog {
	return &StreamLog{}
}

// Append adds a note, evicting the oldest past the cap.
func (s *StreamLog) Append(at time.Time, note string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, StreamEntry{At: at, Note: note})
	if len(s.entries) > StreamCap {
		s.entries = s.entries[len(s.entries)-StreamCap:]
	}
}

// Entries returns a copy, oldest first.
func (s *StreamLog) Entries() []StreamEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]StreamEntry, len(s.entries))
	copy(out, s.entries)
	return out
}
