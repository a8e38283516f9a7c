package cognition

// GoalStore is the durable goal collaborator. Implementations must be safe
// for concurrent use; the core only writes through the persistence queue.
type GoalStore interface {
	SaveGoal(g Goal) error
	GetGoal(id string) (Goal, error)
	DeleteGoal(id string) error
	// ListActive returns non-terminal goals, optionally filtered by tier
	// (empty tier = all tiers).
	ListActive(tier GoalTier) ([]Goal, error)
	UpdatePriorityQueue(items []QueueItem) error
	LoadPriorityQueue() ([]QueueItem, error)
}

// ConversationStore is the append-only durable record collaborator.
type ConversationStore interface {
	SaveThought(t ThoughtRecord) error
	SaveInteraction(r InteractionRecord) error
	RecentThoughtsByCategory(category ThoughtCategory, limit int) ([]ThoughtRecord, error)
}
