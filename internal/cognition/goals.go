package cognition

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Goal lifecycle tuning. Progress steps are per processing tick; the
// checkpoint step drives proactive progress updates for user-derived goals.
const (
	GoalTickInterval       = 30 * time.Second
	DefaultApprovalTimeout = time.Minute
	ProgressCheckpointStep = 25
	ProgressStepUser       = 5
	ProgressStepInternal   = 10
	ProgressStepAutonomous = 8
	MinQueuePriority       = 1
)

// GoalPolicy configures the approval workflow. Auto-approval models an
// async approval channel with a liveness guarantee; hosts that want strict
// human approval disable it and call Approve/Reject themselves.
type GoalPolicy struct {
	ApprovalTimeout time.Duration
	AutoApprove     bool
}

// DefaultGoalPolicy auto-approves after one minute.
func DefaultGoalPolicy() GoalPolicy {
	return GoalPolicy{ApprovalTimeout: DefaultApprovalTimeout, AutoApprove: true}
}

// GoalLifecycleManager classifies goals into three tiers, advances each
// tier with tier-specific policy on its own tick, runs the approval
// workflow for autonomous goals and decomposes them into sub-goals. Goal
// records live in an id-keyed arena behind one mutex; the durable store is
// mirrored through the persistence queue.
type GoalLifecycleManager struct {
	mu           sync.Mutex
	goals        map[string]*Goal
	waitingSince map[string]time.Time

	store   GoalStore
	queue   *PriorityQueue
	persist *PersistQueue
	policy  GoalPolicy
	log     zerolog.Logger

	onProgressUpdate func(Goal)
}

// NewGoalLifecycleManager creates an empty manager. Call Load to rebuild
// state from the durable store.
func NewGoalLifecycleManager(store GoalStore, persist *PersistQueue, policy GoalPolicy, log zerolog.Logger) *GoalLifecycleManager {
	if policy.ApprovalTimeout <= 0 {
		policy.ApprovalTimeout = DefaultApprovalTimeout
	}
	return &GoalLifecycleManager{
		goals:        make(map[string]*Goal),
		waitingSince: make(map[string]time.Time),
		store:        store,
		queue:        NewPriorityQueue(),
		persist:      persist,
		policy:       policy,
		log:          log,
	}
}

// SetOnProgressUpdate registers the proactive progress-check callback
// (fired when a user-derived goal crosses a 25% boundary).
func (m *GoalLifecycleManager) SetOnProgressUpdate(f func(Goal)) {
	m.mu.Lock()
	m.onProgressUpdate = f
	m.mu.Unlock()
}

// Load rebuilds the arena and priority queue from durable storage. Queue
// entries are deduped by goal id keeping the most recent; every known
// non-terminal goal ends up queued exactly once.
func (m *GoalLifecycleManager) Load(now time.Time) error {
	goals, err := m.store.ListActive("")
	if err != nil {
		return fmt.Errorf("load goals: %w", err)
	}
	items, err := m.store.LoadPriorityQueue()
	if err != nil {
		return fmt.Errorf("load queue: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range goals {
		g := goals[i]
		m.goals[g.ID] = &g
		if g.Status == GoalWaitingApproval {
			m.waitingSince[g.ID] = now
		}
	}
	known := make(map[string]bool, len(items))
	kept := items[:0]
	for _, it := range items {
		if _, ok := m.goals[it.GoalID]; !ok {
			continue
		}
		kept = append(kept, it)
		known[it.GoalID] = true
	}
	for id, g := range m.goals {
		if !known[id] && !g.Status.Terminal() {
			kept = append(kept, QueueItem{GoalID: id, Priority: g.Priority, EnqueuedAt: now})
		}
	}
	m.queue.Rebuild(kept)
	m.log.Info().Str("action", "goals_load").Int("goals", len(m.goals)).Int("queued", m.queue.Len()).Msg("goal state rebuilt")
	return nil
}

// CreateGoal registers a new goal in pending state and enqueues it.
func (m *GoalLifecycleManager) CreateGoal(title, description string, tier GoalTier, priority int, origin GoalOrigin, criteria SuccessCriteria, now time.Time) (Goal, error) {
	switch tier {
	case TierUserDerived, TierInternalSystem, TierAutonomous:
	default:
		return Goal{}, fmt.Errorf("%w: unknown tier %q", ErrTierMismatch, tier)
	}
	if priority < MinQueuePriority {
		priority = MinQueuePriority
	}
	g := Goal{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Tier:        tier,
		Status:      GoalPending,
		Priority:    priority,
		Origin:      origin,
		Criteria:    criteria,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.mu.Lock()
	m.goals[g.ID] = &g
	m.mu.Unlock()
	m.queue.Enqueue(g.ID, g.Priority, now)
	m.persistGoal(g)
	m.log.Info().Str("action", "goal_create").Str("tier", string(tier)).Int("priority", g.Priority).Msg(previewForLog(title))
	return g, nil
}

// Goal returns a copy of the goal.
func (m *GoalLifecycleManager) Goal(id string) (Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.goals[id]
	if !ok {
		return Goal{}, ErrGoalNotFound
	}
	return *g, nil
}

// GoalsByTier returns copies of all non-terminal goals in the tier
// (empty tier = all).
func (m *GoalLifecycleManager) GoalsByTier(tier GoalTier) []Goal {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Goal
	for _, g := range m.goals {
		if g.Status.Terminal() {
			continue
		}
		if tier != "" && g.Tier != tier {
			continue
		}
		out = append(out, *g)
	}
	return out
}

// Approve moves a waiting_approval goal to active.
func (m *GoalLifecycleManager) Approve(id string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.goals[id]
	if !ok {
		return ErrGoalNotFound
	}
	if g.Status != GoalWaitingApproval {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, g.Status, GoalActive)
	}
	m.activateLocked(g, now)
	return nil
}

// Reject fails a waiting_approval goal.
func (m *GoalLifecycleManager) Reject(id string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.goals[id]
	if !ok {
		return ErrGoalNotFound
	}
	if g.Status != GoalWaitingApproval {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, g.Status, GoalFailed)
	}
	delete(m.waitingSince, id)
	g.Status = GoalFailed
	g.UpdatedAt = now
	m.queue.Remove(id)
	m.persistGoal(*g)
	m.log.Info().Str("action", "goal_reject").Msg(previewForLog(g.Title))
	return nil
}

// UpdateProgress sets progress on an active goal. Progress is monotonic;
// a regression is rejected with a typed error and the goal left untouched.
func (m *GoalLifecycleManager) UpdateProgress(id string, progress int, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.goals[id]
	if !ok {
		return ErrGoalNotFound
	}
	if g.Status != GoalActive {
		return fmt.Errorf("%w: progress on %s goal", ErrInvalidTransition, g.Status)
	}
	if progress < g.Progress {
		return fmt.Errorf("%w: %d -> %d", ErrProgressRegression, g.Progress, progress)
	}
	m.advanceLocked(g, progress, now)
	return nil
}

// MarkFailed fails an active goal.
func (m *GoalLifecycleManager) MarkFailed(id, reason string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.goals[id]
	if !ok {
		return ErrGoalNotFound
	}
	if g.Status != GoalActive {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, g.Status, GoalFailed)
	}
	g.Status = GoalFailed
	g.UpdatedAt = now
	m.queue.Remove(id)
	m.persistGoal(*g)
	m.log.Info().Str("action", "goal_fail").Str("reason", reason).Msg(previewForLog(g.Title))
	return nil
}

// DeleteGoal removes a goal and, because parents own their sub-goals for
// deletion, every descendant. Each removal is mirrored to durable storage.
func (m *GoalLifecycleManager) DeleteGoal(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.goals[id]
	if !ok {
		return ErrGoalNotFound
	}
	var drop func(*Goal)
	drop = func(g *Goal) {
		for _, cid := range g.SubGoalIDs {
			if child, ok := m.goals[cid]; ok {
				drop(child)
			}
		}
		delete(m.goals, g.ID)
		delete(m.waitingSince, g.ID)
		m.queue.Remove(g.ID)
		m.deleteGoalDurable(g.ID)
	}
	drop(g)
	return nil
}

// Tick is one processing pass: drain the queue in priority order, apply
// each goal's tier policy once, re-enqueue survivors and snapshot the
// queue to durable storage. Runs on its own cadence, independent of the
// thinking ticks.
func (m *GoalLifecycleManager) Tick(now time.Time) {
	processed := make(map[string]bool)
	var order []string
	for {
		it, ok := m.queue.Dequeue()
		if !ok {
			break
		}
		if processed[it.GoalID] {
			continue
		}
		processed[it.GoalID] = true
		order = append(order, it.GoalID)
	}

	m.mu.Lock()
	for _, id := range order {
		g, ok := m.goals[id]
		if !ok || g.Status.Terminal() {
			continue
		}
		m.applyPolicyLocked(g, now)
		if !g.Status.Terminal() {
			m.queue.Enqueue(g.ID, g.Priority, now)
		}
	}
	m.mu.Unlock()

	snapshot := m.queue.Snapshot()
	m.persist.Enqueue("queue", func() error { return m.store.UpdatePriorityQueue(snapshot) })
}

// applyPolicyLocked advances one goal according to its tier.
func (m *GoalLifecycleManager) applyPolicyLocked(g *Goal, now time.Time) {
	switch g.Status {
	case GoalPending:
		if g.Tier == TierAutonomous && !m.parentApprovedLocked(g) {
			g.Status = GoalWaitingApproval
			g.UpdatedAt = now
			m.waitingSince[g.ID] = now
			m.persistGoal(*g)
			m.log.Info().Str("action", "goal_await").Msg(previewForLog(g.Title))
			return
		}
		m.activateLocked(g, now)

	case GoalWaitingApproval:
		since, ok := m.waitingSince[g.ID]
		if !ok {
			m.waitingSince[g.ID] = now
			return
		}
		if m.policy.AutoApprove && now.Sub(since) >= m.policy.ApprovalTimeout {
			m.log.Info().Str("action", "goal_auto_approve").Msg(previewForLog(g.Title))
			m.activateLocked(g, now)
		}

	case GoalActive:
		switch g.Tier {
		case TierUserDerived:
			m.advanceLocked(g, g.Progress+ProgressStepUser, now)
		case TierInternalSystem:
			m.advanceLocked(g, g.Progress+ProgressStepInternal, now)
		case TierAutonomous:
			m.advanceLocked(g, g.Progress+ProgressStepAutonomous, now)
		}
	}
}

// activateLocked transitions a goal to active, enforcing the tier's
// approval requirement, and decomposes autonomous goals into sub-goals.
func (m *GoalLifecycleManager) activateLocked(g *Goal, now time.Time) {
	delete(m.waitingSince, g.ID)
	g.Status = GoalActive
	g.UpdatedAt = now
	m.persistGoal(*g)
	m.log.Info().Str("action", "goal_activate").Str("tier", string(g.Tier)).Msg(previewForLog(g.Title))
	if g.Tier == TierAutonomous && g.ParentID == "" {
		m.decomposeLocked(g, now)
	}
}

// parentApprovedLocked reports whether a sub-goal inherits approval from
// an already-approved parent. Top-level autonomous goals never do.
func (m *GoalLifecycleManager) parentApprovedLocked(g *Goal) bool {
	if g.ParentID == "" {
		return false
	}
	parent, ok := m.goals[g.ParentID]
	return ok && (parent.Status == GoalActive || parent.Status == GoalCompleted)
}

// advanceLocked applies a progress value, fires checkpoint notifications
// for user-derived goals and completes at 100.
func (m *GoalLifecycleManager) advanceLocked(g *Goal, progress int, now time.Time) {
	if progress > 100 {
		progress = 100
	}
	g.Progress = progress
	g.UpdatedAt = now

	if g.Tier == TierUserDerived {
		checkpoint := (g.Progress / ProgressCheckpointStep) * ProgressCheckpointStep
		if checkpoint > g.LastCheckpoint && g.Progress < 100 {
			g.LastCheckpoint = checkpoint
			if m.onProgressUpdate != nil {
				m.onProgressUpdate(*g)
			}
			m.log.Info().Str("action", "goal_checkpoint").Int("progress", g.Progress).Msg(previewForLog(g.Title))
		}
	}

	if g.Progress >= 100 {
		g.Status = GoalCompleted
		g.UpdatedAt = now
		m.queue.Remove(g.ID)
		m.log.Info().Str("action", "goal_complete").Msg(previewForLog(g.Title))
	}
	m.persistGoal(*g)
}

// Sub-goal decomposition: rule-based keyword matching against the goal
// title. No keyword match means zero children.
var subGoalRules = []struct {
	keywords []string
	children []string
}{
	{[]string{"research", "learn", "study"}, []string{"Collect sources", "Summarize findings"}},
	{[]string{"organize", "plan", "sort"}, []string{"List what needs organizing", "Draft a structure"}},
	{[]string{"write", "draft", "compose"}, []string{"Outline the piece", "Write a first pass"}},
	{[]string{"analyze", "review", "investigate"}, []string{"Gather inputs", "Note observed patterns"}},
}

// decomposeLocked spawns child goals for matched rules. Children are
// enqueued at parent priority minus one so parents stay scheduled first,
// and inherit the parent's approval.
func (m *GoalLifecycleManager) decomposeLocked(parent *Goal, now time.Time) {
	title := strings.ToLower(parent.Title)
	childPriority := parent.Priority - 1
	if childPriority < MinQueuePriority {
		childPriority = MinQueuePriority
	}
	for _, rule := range subGoalRules {
		matched := false
		for _, kw := range rule.keywords {
			if strings.Contains(title, kw) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		for _, childTitle := range rule.children {
			child := Goal{
				ID:          uuid.NewString(),
				Title:       childTitle,
				Description: fmt.Sprintf("%s (for: %s)", childTitle, parent.Title),
				Tier:        TierAutonomous,
				Status:      GoalPending,
				Priority:    childPriority,
				ParentID:    parent.ID,
				Origin:      GoalOrigin{Source: "decomposition", Confidence: parent.Origin.Confidence},
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			m.goals[child.ID] = &child
			parent.SubGoalIDs = append(parent.SubGoalIDs, child.ID)
			m.queue.Enqueue(child.ID, child.Priority, now)
			m.persistGoal(child)
		}
		m.log.Info().Str("action", "goal_decompose").Int("children", len(rule.children)).Msg(previewForLog(parent.Title))
		break
	}
	m.persistGoal(*parent)
}

// QueueLen returns the number of queued items (diagnostics).
func (m *GoalLifecycleManager) QueueLen() int {
	return m.queue.Len()
}

func (m *GoalLifecycleManager) persistGoal(g Goal) {
	if m.persist == nil || m.store == nil {
		return
	}
	m.persist.Enqueue("goal", func() error { return m.store.SaveGoal(g) })
}

func (m *GoalLifecycleManager) deleteGoalDurable(id string) {
	if m.persist == nil || m.store == nil {
		return
	}
	m.persist.Enqueue("goal_delete", func() error { return m.store.DeleteGoal(id) })
}
