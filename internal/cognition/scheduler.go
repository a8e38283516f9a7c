package cognition

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cerebrum/internal/ai"
	"cerebrum/pkg/jobmgr"
	"cerebrum/pkg/retrylimit"
)

// State is the scheduler state. Two states only.
type State string

const (
	StateIdle     State = "idle"
	StateThinking State = "thinking"
)

// Background job names.
const (
	jobMonitor = "monitor"
	jobThink   = "think"
	jobGoals   = "goals"
	jobConfig  = "config-reload"
)

// Config tunes the engine. Zero values fall back to defaults.
type Config struct {
	InactivityThreshold  time.Duration
	MonitorInterval      time.Duration
	MaxSessionDuration   time.Duration
	GoalTickInterval     time.Duration
	ConfigReloadInterval time.Duration
	GoalPolicy           GoalPolicy
}

// DefaultConfig returns production tuning.
func DefaultConfig() Config {
	return Config{
		InactivityThreshold:  20 * time.Second,
		MonitorInterval:      5 * time.Second,
		MaxSessionDuration:   5 * time.Minute,
		GoalTickInterval:     GoalTickInterval,
		ConfigReloadInterval: time.Minute,
		GoalPolicy:           DefaultGoalPolicy(),
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.InactivityThreshold <= 0 {
		c.InactivityThreshold = d.InactivityThreshold
	}
	if c.MonitorInterval <= 0 {
		c.MonitorInterval = d.MonitorInterval
	}
	if c.MaxSessionDuration <= 0 {
		c.MaxSessionDuration = d.MaxSessionDuration
	}
	if c.GoalTickInterval <= 0 {
		c.GoalTickInterval = d.GoalTickInterval
	}
	if c.ConfigReloadInterval <= 0 {
		c.ConfigReloadInterval = d.ConfigReloadInterval
	}
	if c.GoalPolicy.ApprovalTimeout <= 0 {
		c.GoalPolicy = d.GoalPolicy
	}
	return c
}

// ThrottleSource pulls the current throttle document. Called on the
// config-reload job; errors keep the last good config.
type ThrottleSource func() (ThrottleConfig, error)

// Deps are the external collaborators injected into the engine.
type Deps struct {
	Oracle            ai.Provider
	GoalStore         GoalStore
	ConversationStore ConversationStore
	Emotions          EmotionProvider
	Throttle          ThrottleSource
	Logger            zerolog.Logger
	// Now overrides the clock (tests). Nil means time.Now.
	Now func() time.Time
	// Rand seeds category selection (tests). Nil means a time-seeded RNG.
	Rand *rand.Rand
}

// Engine is the autonomous cognition scheduler: a two-state machine driven
// by a monitoring tick, owning session bookkeeping and delegating each
// thinking tick to the producer, subject to the governor and dedup filter.
// Construct one per agent instance; there is no process-wide singleton.
type Engine struct {
	cfg Config

	mu            sync.Mutex
	state         State
	session       *ThinkingSession
	forceDisabled bool
	foreground    bool
	stopped       bool
	lastThoughtAt time.Time
	inflight      bool
	runCtx        context.Context

	governor  *ThrottleGovernor
	activity  *ActivityTracker
	producer  *ThoughtProducer
	goals     *GoalLifecycleManager
	memory    *WorkingMemory
	stream    *StreamLog
	awareness *SelfAwareness
	jobs      *jobmgr.Manager
	persist   *PersistQueue
	emotions  EmotionProvider
	throttle  ThrottleSource

	now func() time.Time
	log zerolog.Logger
}

// NewEngine wires an engine from its collaborators. The returned engine is
// inert until Start.
func NewEngine(cfg Config, deps Deps) *Engine {
	cfg = cfg.withDefaults()
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	log := deps.Logger
	throttle := deps.Throttle
	if throttle == nil {
		throttle = func() (ThrottleConfig, error) { return DefaultThrottleConfig(), nil }
	}
	tc, err := throttle()
	if err != nil {
		log.Warn().Err(err).Msg("throttle config unavailable, using defaults")
		tc = DefaultThrottleConfig()
	}

	persist := NewPersistQueue(log)
	governor := NewThrottleGovernor(tc)
	memory := NewWorkingMemory()
	dedup := NewDeduplicationFilter()
	limiter := retrylimit.NewAdaptiveLimiter(2, 1, 6, 1, 0.5)

	e := &Engine{
		cfg:       cfg,
		state:     StateIdle,
		governor:  governor,
		activity:  NewActivityTracker(now()),
		memory:    memory,
		stream:    NewStreamLog(),
		awareness: NewSelfAwareness(),
		jobs:      jobmgr.NewManager(nil),
		persist:   persist,
		emotions:  deps.Emotions,
		throttle:  throttle,
		now:       now,
		log:       log,
	}
	e.producer = NewThoughtProducer(deps.Oracle, limiter, deps.Emotions, dedup, memory, deps.ConversationStore, persist, deps.Rand, log)
	e.goals = NewGoalLifecycleManager(deps.GoalStore, persist, cfg.GoalPolicy, log)

	e.producer.SetOnGoalIdea(func(title, description string) {
		e.onGoalIdea(title, description)
	})
	e.activity.SetOnActivity(func() {
		e.onUserActivity()
	})
	return e
}

// Start rebuilds goal state and launches the periodic jobs. The engine
// runs until Stop or ctx cancellation.
func (e *Engine) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	e.mu.Lock()
	e.runCtx = ctx
	e.mu.Unlock()

	if err := e.goals.Load(e.now()); err != nil {
		return fmt.Errorf("start engine: %w", err)
	}
	if err := e.jobs.StartPeriodic(ctx, jobMonitor, e.cfg.MonitorInterval, func(context.Context) {
		e.MonitorTick(e.now())
	}); err != nil {
		return err
	}
	if err := e.jobs.StartPeriodic(ctx, jobGoals, e.cfg.GoalTickInterval, func(context.Context) {
		e.GoalTick(e.now())
	}); err != nil {
		return err
	}
	if err := e.jobs.StartPeriodic(ctx, jobConfig, e.cfg.ConfigReloadInterval, func(context.Context) {
		e.ReloadThrottleConfig()
	}); err != nil {
		return err
	}
	e.log.Info().Str("action", "start").Msg("cognition engine running")
	return nil
}

// Stop cancels all jobs, closes any open session and drains persistence.
// The stopped flag goes up first so a monitor tick racing the shutdown
// cannot reopen a session behind it. Safe to call more than once.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.stopped = true
	e.mu.Unlock()
	e.stopThinking("engine_stop")
	e.jobs.StopAll()
	e.persist.Stop()
	e.log.Info().Str("action", "stop").Msg("cognition engine stopped")
}

// State returns the current scheduler state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Goals exposes the lifecycle manager (approval API, queries).
func (e *Engine) Goals() *GoalLifecycleManager {
	return e.goals
}

// Memory exposes the in-memory rings (recent thoughts, interactions,
// session history).
func (e *Engine) Memory() *WorkingMemory {
	return e.memory
}

// Stream returns the stream-of-consciousness entries.
func (e *Engine) Stream() []StreamEntry {
	return e.stream.Entries()
}

// Awareness returns the current self-awareness level.
func (e *Engine) Awareness() float64 {
	return e.awareness.Level()
}

// RecordActivity notes a user action now. If the engine is Thinking it
// drops back to Idle immediately.
func (e *Engine) RecordActivity() {
	e.activity.RecordActivity(e.now())
}

// SetForeground marks an explicit foreground interactive surface; the
// scheduler never enters Thinking while one is up.
func (e *Engine) SetForeground(active bool) {
	e.mu.Lock()
	e.foreground = active
	e.mu.Unlock()
	if active {
		e.stopThinking("foreground")
	}
}

// PauseThinking force-disables background cognition. Takes effect
// immediately (pending ticks are cancelled, the open session closed) and
// is idempotent.
func (e *Engine) PauseThinking() {
	e.mu.Lock()
	e.forceDisabled = true
	e.mu.Unlock()
	e.stopThinking("paused")
}

// ResumeThinking clears force-disable and rewinds the last-activity
// timestamp so the inactivity threshold can be satisfied promptly.
func (e *Engine) ResumeThinking() {
	e.mu.Lock()
	e.forceDisabled = false
	e.mu.Unlock()
	e.activity.Rewind(e.cfg.InactivityThreshold)
	e.log.Info().Str("action", "resume").Msg("thinking re-enabled")
}

// ForceStop closes the current session without disabling future ones.
// Idempotent; a no-op when Idle.
func (e *Engine) ForceStop() {
	e.stopThinking("force_stop")
}

// RespondToInteraction records the user's answer to a pending proactive
// interaction and counts as user activity.
func (e *Engine) RespondToInteraction(id, response string) bool {
	ok := e.memory.RespondToInteraction(id, response, e.now())
	if ok {
		e.RecordActivity()
	}
	return ok
}

// MonitorTick evaluates the state machine every monitor interval: enters
// Thinking when the inactivity and spacing conditions hold, and enforces
// the session duration cap.
func (e *Engine) MonitorTick(now time.Time) {
	e.mu.Lock()
	switch e.state {
	case StateThinking:
		if e.session != nil && now.Sub(e.session.StartedAt) >= e.cfg.MaxSessionDuration {
			e.closeSessionLocked(now, "session_timeout")
			e.mu.Unlock()
			e.cancelThinkJob()
			return
		}
		e.mu.Unlock()

	case StateIdle:
		if e.stopped || e.forceDisabled || e.foreground {
			e.mu.Unlock()
			return
		}
		if e.activity.TimeSinceActivity(now) < e.cfg.InactivityThreshold {
			e.mu.Unlock()
			return
		}
		if !e.lastThoughtAt.IsZero() && now.Sub(e.lastThoughtAt) < e.governor.MinThoughtInterval() {
			e.mu.Unlock()
			return
		}
		if e.governor.ShouldThrottle(now) {
			e.mu.Unlock()
			return
		}
		e.startThinkingLocked(now)
		e.mu.Unlock()
	default:
		e.mu.Unlock()
	}
}

// ThinkTick runs one production cycle while Thinking. Any error is logged
// and degrades the tick to a no-op; the session survives.
func (e *Engine) ThinkTick(ctx context.Context, now time.Time) {
	e.mu.Lock()
	if e.state != StateThinking || e.session == nil {
		e.mu.Unlock()
		return
	}
	if e.inflight {
		// previous cycle still in flight; no overlap, skip this tick
		e.mu.Unlock()
		return
	}
	if e.governor.ShouldThrottle(now) {
		e.stream.Append(now, "throttled, holding back")
		e.log.Debug().Err(ErrThrottled).Str("action", "tick_skip").Int("attempts", e.governor.AttemptsInWindow(now)).Msg("window budget spent")
		e.mu.Unlock()
		return
	}
	if !e.lastThoughtAt.IsZero() && now.Sub(e.lastThoughtAt) < e.governor.MinThoughtInterval() {
		e.mu.Unlock()
		return
	}

	e.governor.RecordAttempt(now)
	e.inflight = true
	e.lastThoughtAt = now
	e.session.AttemptCount++
	sessionID := e.session.ID
	e.mu.Unlock()

	category := e.producer.PickCategory(e.awareness.Level())
	e.stream.Append(now, "considering a "+string(category)+" thought")
	since := e.activity.TimeSinceActivity(now)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				e.log.Error().Interface("panic", r).Msg("production cycle panicked")
				e.finishCycle(sessionID, category, false)
			}
		}()
		produced, err := e.producer.Produce(ctx, category, now, since)
		if err != nil {
			e.log.Warn().Err(err).Str("action", "cycle_skip").Str("category", string(category)).Msg("production cycle abandoned")
		}
		e.finishCycle(sessionID, category, produced)
	}()
}

// finishCycle is the self-assessment pass: session counters, efficiency
// snapshot, awareness and adaptive throttle updates.
func (e *Engine) finishCycle(sessionID string, category ThoughtCategory, produced bool) {
	e.awareness.RecordCycle(produced)

	e.mu.Lock()
	e.inflight = false
	if e.session != nil && e.session.ID == sessionID {
		if produced {
			if category == CategoryQuestion {
				e.session.InteractionCount++
			} else {
				e.session.ThoughtCount++
			}
		}
		if e.session.AttemptCount > 0 {
			e.session.Efficiency = float64(e.session.ThoughtCount+e.session.InteractionCount+e.session.GoalCount) / float64(e.session.AttemptCount)
		}
		e.governor.Adapt(e.session.Efficiency)
	}
	e.mu.Unlock()
}

// GoalTick advances the goal lifecycle. Independent cadence from thinking.
func (e *Engine) GoalTick(now time.Time) {
	e.goals.Tick(now)
}

// ReloadThrottleConfig pulls the throttle document and re-derives the
// governor's intervals. Errors keep the running config.
func (e *Engine) ReloadThrottleConfig() {
	tc, err := e.throttle()
	if err != nil {
		e.log.Warn().Err(err).Str("action", "config_reload").Msg("keeping current throttle config")
		return
	}
	e.governor.Reconfigure(tc)
	e.log.Debug().Str("action", "config_reload").Int("max_per_minute", tc.MaxPerMinute).Msg("throttle config applied")
}

// CurrentSession returns a copy of the open session, if any.
func (e *Engine) CurrentSession() (ThinkingSession, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return ThinkingSession{}, false
	}
	return *e.session, true
}

func (e *Engine) onUserActivity() {
	e.stopThinking("user_activity")
}

func (e *Engine) onGoalIdea(title, description string) {
	_, err := e.goals.CreateGoal(title, description, TierAutonomous, 5,
		GoalOrigin{Source: "thought_stream", Confidence: 0.5}, SuccessCriteria{}, e.now())
	if err != nil {
		e.log.Warn().Err(err).Msg("goal idea rejected")
		return
	}
	e.mu.Lock()
	if e.session != nil {
		e.session.GoalCount++
	}
	e.mu.Unlock()
}

// startThinkingLocked opens a session and launches the think job.
func (e *Engine) startThinkingLocked(now time.Time) {
	e.state = StateThinking
	e.session = &ThinkingSession{
		ID:        uuid.NewString(),
		StartedAt: now,
	}
	e.stream.Append(now, "entering thinking mode")
	e.log.Info().Str("action", "session_start").Str("session", e.session.ID).Msg("idle -> thinking")

	interval := e.governor.ThinkInterval()
	if err := e.jobs.StartPeriodic(e.runCtx, jobThink, interval, func(ctx context.Context) {
		e.ThinkTick(ctx, e.now())
	}); err != nil {
		e.log.Warn().Err(err).Msg("think job not started")
	}
}

// stopThinking closes the open session (if any) and cancels the think job
// synchronously. Idempotent from any goroutine except the think job itself
// (which never calls it).
func (e *Engine) stopThinking(reason string) {
	e.mu.Lock()
	wasThinking := e.state == StateThinking
	if wasThinking {
		e.closeSessionLocked(e.now(), reason)
	}
	e.mu.Unlock()
	if wasThinking {
		e.cancelThinkJob()
	}
}

// closeSessionLocked finalizes the session record and returns to Idle.
func (e *Engine) closeSessionLocked(now time.Time, reason string) {
	e.state = StateIdle
	s := e.session
	e.session = nil
	if s == nil {
		return
	}
	s.EndedAt = now
	s.Duration = now.Sub(s.StartedAt)
	s.EndReason = reason
	if s.AttemptCount > 0 {
		s.Efficiency = float64(s.ThoughtCount+s.InteractionCount+s.GoalCount) / float64(s.AttemptCount)
	}
	e.memory.AddSession(*s)
	e.stream.Append(now, "leaving thinking mode ("+reason+")")
	e.log.Info().
		Str("action", "session_end").
		Str("session", s.ID).
		Str("reason", reason).
		Int("thoughts", s.ThoughtCount).
		Int("interactions", s.InteractionCount).
		Int("goals", s.GoalCount).
		Float64("efficiency", s.Efficiency).
		Msg("thinking -> idle")
}

func (e *Engine) cancelThinkJob() {
	if e.jobs.Running(jobThink) {
		_ = e.jobs.Stop(jobThink)
	}
}
