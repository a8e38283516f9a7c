package cognition

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// memStore is an in-memory GoalStore + ConversationStore used across the
// package tests.
type memStore struct {
	mu           sync.Mutex
	goals        map[string]Goal
	queue        []QueueItem
	thoughts     []ThoughtRecord
	interactions []InteractionRecord
	failSaves    int // fail this many SaveGoal calls, then succeed
}

func newMemStore() *memStore {
	return &memStore{goals: make(map[string]Goal)}
}

func (s *memStore) SaveGoal(g Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSaves > 0 {
		s.failSaves--
		return errors.New("simulated storage failure")
	}
	s.goals[g.ID] = g
	return nil
}

func (s *memStore) DeleteGoal(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.goals, id)
	return nil
}

func (s *memStore) GetGoal(id string) (Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok {
		return Goal{}, ErrGoalNotFound
	}
	return g, nil
}

func (s *memStore) ListActive(tier GoalTier) ([]Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Goal
	for _, g := range s.goals {
		if g.Status.Terminal() {
			continue
		}
		if tier != "" && g.Tier != tier {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (s *memStore) UpdatePriorityQueue(items []QueueItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append([]QueueItem(nil), items...)
	return nil
}

func (s *memStore) LoadPriorityQueue() ([]QueueItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]QueueItem(nil), s.queue...), nil
}

func (s *memStore) SaveThought(t ThoughtRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.thoughts = append(s.thoughts, t)
	return nil
}

func (s *memStore) SaveInteraction(r InteractionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interactions = append(s.interactions, r)
	return nil
}

func (s *memStore) RecentThoughtsByCategory(category ThoughtCategory, limit int) ([]ThoughtRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ThoughtRecord
	for i := len(s.thoughts) - 1; i >= 0; i-- {
		if category != "" && s.thoughts[i].Category != category {
			continue
		}
		out = append(out, s.thoughts[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *memStore) savedThoughts() []ThoughtRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ThoughtRecord(nil), s.thoughts...)
}

func (s *memStore) savedInteractions() []InteractionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]InteractionRecord(nil), s.interactions...)
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// fixedEmotion is a static emotion provider for producer tests.
type fixedEmotion struct {
	state EmotionState
}

func (f fixedEmotion) Current() EmotionState { return f.state }
