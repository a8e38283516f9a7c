package cognition

import (
	"sync"
	"time"
)

// In-memory ring caps. Full history lives in durable storage; these rings
// only feed prompt context and the dedup similarity window.
const (
	ThoughtRingCap     = 100
	InteractionRingCap = 50
	SessionHistoryCap  = 20
)

// WorkingMemory holds the capped in-memory rings of recent thoughts and
// interactions plus the bounded session history. Safe for concurrent use.
type WorkingMemory struct {
	mu           sync.RWMutex
	thoughts     []ThoughtRecord
	interactions []InteractionRecord
	sessions     []ThinkingSession
}

// NewWorkingMemory returns empty rings.
func NewWorkingMemory() *WorkingMemory {
	return &WorkingMemory{}
}

// AddThought appends to the thought ring, evicting the oldest past the cap.
func (m *WorkingMemory) AddThought(t ThoughtRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.thoughts = append(m.thoughts, t)
	if len(m.thoughts) > ThoughtRingCap {
		m.thoughts = m.thoughts[len(m.thoughts)-ThoughtRingCap:]
	}
}

// AddInteraction appends to the interaction ring.
func (m *WorkingMemory) AddInteraction(r InteractionRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interactions = append(m.interactions, r)
	if len(m.interactions) > InteractionRingCap {
		m.interactions = m.interactions[len(m.interactions)-InteractionRingCap:]
	}
}

// RecentThoughts returns up to limit most recent thoughts, oldest first.
func (m *WorkingMemory) RecentThoughts(limit int) []ThoughtRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := len(m.thoughts)
	if limit > 0 && n > limit {
		n = limit
	}
	out := make([]ThoughtRecord, n)
	copy(out, m.thoughts[len(m.thoughts)-n:])
	return out
}

// RecentInteractionTexts returns interaction content+time pairs for the
// dedup similarity window.
func (m *WorkingMemory) RecentInteractionTexts() []TimedText {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]TimedText, 0, len(m.interactions))
	for _, r := range m.interactions {
		out = append(out, TimedText{Content: r.Content, At: r.CreatedAt})
	}
	return out
}

// Interactions returns a copy of the interaction ring, oldest first.
func (m *WorkingMemory) Interactions() []InteractionRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]InteractionRecord, len(m.interactions))
	copy(out, m.interactions)
	return out
}

// RespondToInteraction records the user's response on a pending interaction.
// The record is mutated exactly once; a second response is ignored.
func (m *WorkingMemory) RespondToInteraction(id, response string, at time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.interactions {
		if m.interactions[i].ID != id || m.interactions[i].RespondedTo {
			continue
		}
		m.interactions[i].RespondedTo = true
		m.interactions[i].UserResponse = response
		m.interactions[i].RespondedAt = at
		return true
	}
	return false
}

// AddSession appends a closed session to the bounded history.
func (m *WorkingMemory) AddSession(s ThinkingSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = append(m.sessions, s)
	if len(m.sessions) > SessionHistoryCap {
		m.sessions = m.sessions[len(m.sessions)-SessionHistoryCap:]
	}
}

// Sessions returns a copy of the session history, oldest first.
func (m *WorkingMemory) Sessions() []ThinkingSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ThinkingSession, len(m.sessions))
	copy(out, m.sessions)
	return out
}
