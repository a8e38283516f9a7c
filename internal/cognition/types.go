package cognition

import "time"

// ThoughtCategory classifies an internally generated thought.
type ThoughtCategory string

const (
	CategoryReflection   ThoughtCategory = "reflection"
	CategoryQuestion     ThoughtCategory = "question"
	CategoryGoalCreation ThoughtCategory = "goal_creation"
	CategoryPondering    ThoughtCategory = "pondering"
	CategoryAnalysis     ThoughtCategory = "analysis"
)

// ThoughtRecord is one internal thought. Immutable once created.
type ThoughtRecord struct {
	ID              string          `json:"id"`
	Category        ThoughtCategory `json:"category"`
	Content         string          `json:"content"`
	CreatedAt       time.Time       `json:"created_at"`
	Emotion         string          `json:"emotion"`
	Priority        int             `json:"priority"` // 1..9
	RelatedConcepts []string        `json:"related_concepts,omitempty"`
}

// InteractionKind classifies a proactive user-directed interaction.
type InteractionKind string

const (
	InteractionQuestion    InteractionKind = "question"
	InteractionObservation InteractionKind = "observation"
	InteractionSuggestion  InteractionKind = "suggestion"
	InteractionConcern     InteractionKind = "concern"
)

// InteractionRecord is a proactive interaction surfaced to the user.
// Mutated exactly once when a response arrives, never deleted.
type InteractionRecord struct {
	ID               string          `json:"id"`
	Kind             InteractionKind `json:"kind"`
	Content          string          `json:"content"`
	Emotion          string          `json:"emotion"`
	EmotionIntensity float64         `json:"emotion_intensity"`
	Priority         int             `json:"priority"` // 1..5
	RequiresResponse bool            `json:"requires_response"`
	RespondedTo      bool            `json:"responded_to"`
	UserResponse     string          `json:"user_response,omitempty"`
	RespondedAt      time.Time       `json:"responded_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// ThinkingSession covers one Idle->Thinking->Idle span. Immutable once closed.
type ThinkingSession struct {
	ID                string        `json:"id"`
	StartedAt         time.Time     `json:"started_at"`
	EndedAt           time.Time     `json:"ended_at,omitempty"`
	Duration          time.Duration `json:"duration"`
	ThoughtCount      int           `json:"thought_count"`
	GoalCount         int           `json:"goal_count"`
	InteractionCount  int           `json:"interaction_count"`
	AttemptCount      int           `json:"attempt_count"`
	Efficiency        float64       `json:"efficiency"` // produced / attempted
	EndReason         string        `json:"end_reason,omitempty"`
}

// GoalTier determines autonomy and approval policy.
type GoalTier string

const (
	TierUserDerived    GoalTier = "user_derived"
	TierInternalSystem GoalTier = "internal_system"
	TierAutonomous     GoalTier = "cerebrum_autonomous"
)

// GoalStatus is the goal lifecycle state. Completed and failed are terminal.
type GoalStatus string

const (
	GoalPending         GoalStatus = "pending"
	GoalWaitingApproval GoalStatus = "waiting_approval"
	GoalActive          GoalStatus = "active"
	GoalCompleted       GoalStatus = "completed"
	GoalFailed          GoalStatus = "failed"
)

// GoalOrigin records where a goal came from (pattern analysis, explicit request).
type GoalOrigin struct {
	Source     string   `json:"source"`
	Confidence float64  `json:"confidence"`
	Evidence   []string `json:"evidence,omitempty"`
}

// SuccessCriteria describes what "done" means for a goal.
type SuccessCriteria struct {
	Deliverables         []string `json:"deliverables,omitempty"`
	CompletionConditions []string `json:"completion_conditions,omitempty"`
}

// Goal is a long-running objective advanced by the lifecycle manager.
// Sub-goals link to their parent (tree, no cycles); the parent owns them
// for deletion but they are independently schedulable.
type Goal struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	Tier           GoalTier        `json:"tier"`
	Status         GoalStatus      `json:"status"`
	Priority       int             `json:"priority"`
	Progress       int             `json:"progress"` // 0..100, monotonic while active
	LastCheckpoint int             `json:"last_checkpoint"` // last 25% boundary reported
	ParentID       string          `json:"parent_id,omitempty"`
	SubGoalIDs     []string        `json:"sub_goal_ids,omitempty"`
	Origin         GoalOrigin      `json:"origin"`
	Criteria       SuccessCriteria `json:"criteria"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Terminal returns true for completed/failed.
func (s GoalStatus) Terminal() bool {
	return s == GoalCompleted || s == GoalFailed
}

// QueueItem orders a goal for processing. Total order: priority desc,
// enqueue time asc (longest-waiting wins ties, preventing starvation).
type QueueItem struct {
	GoalID     string    `json:"goal_id"`
	Priority   int       `json:"priority"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// EmotionState is the read-only snapshot from the emotion provider.
type EmotionState struct {
	Label     string  `json:"label"`
	Intensity float64 `json:"intensity"` // 0..1
}

// EmotionProvider exposes current mood. Synchronous, no side effects.
type EmotionProvider interface {
	Current() EmotionState
}
