package storage

import (
	"cerebrum/internal/cognition"
)

func (s *Storage) getThoughts() ([]cognition.ThoughtRecord, error) {
	raw, exists := s.ds.Get(keyThoughts)
	if !exists {
		return nil, nil
	}
	var thoughts []cognition.ThoughtRecord
	if err := decode(raw, &thoughts); err != nil {
		return nil, err
	}
	return thoughts, nil
}

// SaveThought appends a thought, trimming history past the limit.
func (s *Storage) SaveThought(t cognition.ThoughtRecord) error {
	thoughts, err := s.getThoughts()
	if err != nil {
		return err
	}
	thoughts = append(thoughts, t)
	if len(thoughts) > thoughtHistoryLimit {
		thoughts = thoughts[len(thoughts)-thoughtHistoryLimit:]
	}
	s.ds.Add(keyThoughts, thoughts)
	return nil
}

// RecentThoughtsByCategory returns up to limit most recent thoughts of the
// category, newest first (empty category = all).
func (s *Storage) RecentThoughtsByCategory(category cognition.ThoughtCategory, limit int) ([]cognition.ThoughtRecord, error) {
	thoughts, err := s.getThoughts()
	if err != nil {
		return nil, err
	}
	var out []cognition.ThoughtRecord
	for i := len(thoughts) - 1; i >= 0; i-- {
		if category != "" && thoughts[i].Category != category {
			continue
		}
		out = append(out, thoughts[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// SaveInteraction appends a proactive interaction record. Responses update
// the record in place, keyed by id.
func (s *Storage) SaveInteraction(r cognition.InteractionRecord) error {
	raw, exists := s.ds.Get(keyInteractions)
	var interactions []cognition.InteractionRecord
	if exists {
		if err := decode(raw, &interactions); err != nil {
			return err
		}
	}
	replaced := false
	for i := range interactions {
		if interactions[i].ID == r.ID {
			interactions[i] = r
			replaced = true
			break
		}
	}
	if !replaced {
		interactions = append(interactions, r)
	}
	if len(interactions) > interactionHistoryLimit {
		interactions = interactions[len(interactions)-interactionHistoryLimit:]
	}
	s.ds.Add(keyInteractions, interactions)
	return nil
}
