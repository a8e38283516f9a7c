package cognition

import "sync"

// Self-awareness tuning. The scalar moves in small clamped steps, the same
// discipline as any other evolvable trait: no single cycle may jump it.
const (
	AwarenessInitial  = 0.2
	AwarenessMaxDelta = 0.05
	AwarenessOnHit    = 0.01
	AwarenessOnMiss   = -0.005
)

// SelfAwareness is the scalar gating which thought categories the weighted
// selector can reach. Higher awareness unlocks more categories.
type SelfAwareness struct {
	mu    sync.Mutex
	level float64
}

// NewSelfAwareness starts at the initial level.
func NewSelfAwareness() *SelfAwareness {
	return &SelfAwareness{level: AwarenessInitial}
}

// Level returns the current scalar in [0,1].
func (a *SelfAwareness) Level() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.level
}

// Bump applies a clamped delta.
func (a *SelfAwareness) Bump(delta float64) {
	if delta > AwarenessMaxDelta {
		delta = AwarenessMaxDelta
	}
	if delta < -AwarenessMaxDelta {
		delta = -AwarenessMaxDelta
	}
	a.mu.Lock()
	a.level = clamp01(a.level + delta)
	a.mu.Unlock()
}

// RecordCycle folds one production cycle outcome into the scalar.
func (a *SelfAwareness) RecordCycle(produced bool) {
	if produced {
		a.Bump(AwarenessOnHit)
	} else {
		a.Bump(AwarenessOnMiss)
	}
}
