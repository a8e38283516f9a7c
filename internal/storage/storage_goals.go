package storage

import (
	"sort"

	"cerebrum/internal/cognition"
)

// getGoalMap loads the id-keyed goal map, creating it on first use.
func (s *Storage) getGoalMap() (map[string]cognition.Goal, error) {
	raw, exists := s.ds.Get(keyGoals)
	if !exists {
		goals := map[string]cognition.Goal{}
		s.ds.Add(keyGoals, goals)
		return goals, nil
	}
	var goals map[string]cognition.Goal
	if err := decode(raw, &goals); err != nil {
		return nil, err
	}
	if goals == nil {
		goals = map[string]cognition.Goal{}
	}
	return goals, nil
}

// SaveGoal upserts one goal record.
func (s *Storage) SaveGoal(g cognition.Goal) error {
	goals, err := s.getGoalMap()
	if err != nil {
		return err
	}
	goals[g.ID] = g
	s.ds.Add(keyGoals, goals)
	return nil
}

// GetGoal fetches one goal by id.
func (s *Storage) GetGoal(id string) (cognition.Goal, error) {
	goals, err := s.getGoalMap()
	if err != nil {
		return cognition.Goal{}, err
	}
	g, exists := goals[id]
	if !exists {
		return cognition.Goal{}, cognition.ErrGoalNotFound
	}
	return g, nil
}

// DeleteGoal removes one goal record. Deleting an unknown id is a no-op.
func (s *Storage) DeleteGoal(id string) error {
	goals, err := s.getGoalMap()
	if err != nil {
		return err
	}
	if _, exists := goals[id]; !exists {
		return nil
	}
	delete(goals, id)
	s.ds.Add(keyGoals, goals)
	return nil
}

// ListActive returns non-terminal goals, optionally filtered by tier,
// ordered by creation time so reload is deterministic.
func (s *Storage) ListActive(tier cognition.GoalTier) ([]cognition.Goal, error) {
	goals, err := s.getGoalMap()
	if err != nil {
		return nil, err
	}
	var out []cognition.Goal
	for _, g := range goals {
		if g.Status.Terminal() {
			continue
		}
		if tier != "" && g.Tier != tier {
			continue
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// UpdatePriorityQueue replaces the persisted queue snapshot.
func (s *Storage) UpdatePriorityQueue(items []cognition.QueueItem) error {
	if items == nil {
		items = []cognition.QueueItem{}
	}
	s.ds.Add(keyQueue, items)
	return nil
}

// LoadPriorityQueue returns the persisted queue snapshot.
func (s *Storage) LoadPriorityQueue() ([]cognition.QueueItem, error) {
	raw, exists := s.ds.Get(keyQueue)
	if !exists {
		return nil, nil
	}
	var items []cognition.QueueItem
	if err := decode(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}
